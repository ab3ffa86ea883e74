package rpc

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"store-service/pkg/ctxmanage"
	"store-service/pkg/logkey"
)

// TraceIdHeader is the metadata key carrying the caller's trace id.
const TraceIdHeader = "x-trace-id"

// NewServer builds a gRPC server with tracing, trace id propagation and the standard
// health service already registered as SERVING.
func NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(TraceServerInterceptor()),
	}, opts...)
	s := grpc.NewServer(opts...)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(CartItemServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)
	return s
}

// TraceServerInterceptor moves the incoming trace id into the context and logs the call.
func TraceServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		traceId := ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ids := md.Get(TraceIdHeader); len(ids) > 0 {
				traceId = ids[0]
			}
		}
		if traceId != "" {
			ctx = ctxmanage.WithTraceId(ctx, traceId)
		}

		start := time.Now()
		resp, err := handler(ctx, req)
		slog.Info("grpc call",
			slog.String(logkey.TraceID, ctxmanage.GetTraceId(ctx)),
			slog.String("method", info.FullMethod),
			slog.String("code", status.Code(err).String()),
			slog.Int64("latency_ms", time.Since(start).Milliseconds()))
		return resp, err
	}
}

// TraceClientInterceptor forwards the trace id found in ctx to the server.
func TraceClientInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		if traceId := ctxmanage.GetTraceId(ctx); traceId != "Unknown" {
			ctx = metadata.AppendToOutgoingContext(ctx, TraceIdHeader, traceId)
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// Dial opens a plaintext client connection with tracing and trace id propagation.
func Dial(addr string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		grpc.WithChainUnaryInterceptor(TraceClientInterceptor()),
	}, opts...)
	return grpc.NewClient(addr, opts...)
}
