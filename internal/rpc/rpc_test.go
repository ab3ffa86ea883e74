package rpc

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"store-service/pkg/ctxmanage"
)

type fakeCarts struct {
	gotTraceId string
}

func (f *fakeCarts) GetCartDetails(ctx context.Context, req *GetCartDetailsRequest) (*GetCartDetailsResponse, error) {
	f.gotTraceId = ctxmanage.GetTraceId(ctx)
	if req.CartID != "c1" {
		return nil, status.Errorf(codes.NotFound, "no cart with id %s", req.CartID)
	}
	return &GetCartDetailsResponse{
		CartID: "c1",
		CartItems: []CartItem{
			{ProductID: 1, Quantity: 2, UnitPrice: "10.00", ItemTotal: "20.00"},
		},
		TotalPrice: "20.00",
	}, nil
}

func startServer(t *testing.T, srv CartItemServiceServer) *grpc.ClientConn {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	s := NewServer()
	RegisterCartItemServiceServer(s, srv)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := Dial("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestGetCartDetails(t *testing.T) {
	srv := &fakeCarts{}
	client := NewCartItemServiceClient(startServer(t, srv))

	ctx := ctxmanage.WithTraceId(context.Background(), "trace-123")
	resp, err := client.GetCartDetails(ctx, &GetCartDetailsRequest{CartID: "c1"})
	require.NoError(t, err)
	assert.Equal(t, "20.00", resp.TotalPrice)
	require.Len(t, resp.CartItems, 1)
	assert.Equal(t, int64(1), resp.CartItems[0].ProductID)
	assert.Equal(t, "trace-123", srv.gotTraceId)
}

func TestGetCartDetailsPropagatesStatus(t *testing.T) {
	client := NewCartItemServiceClient(startServer(t, &fakeCarts{}))

	_, err := client.GetCartDetails(context.Background(), &GetCartDetailsRequest{CartID: "nope"})
	require.Error(t, err)
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestHealthService(t *testing.T) {
	conn := startServer(t, &fakeCarts{})

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(),
		&healthpb.HealthCheckRequest{Service: CartItemServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}
