package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"google.golang.org/grpc"

	"store-service/handlers"
	"store-service/internal/auth"
	"store-service/internal/cart"
	"store-service/internal/catalog"
	"store-service/internal/checkout"
	"store-service/internal/config"
	"store-service/internal/consul"
	"store-service/internal/customers"
	"store-service/internal/metrics"
	"store-service/internal/notify"
	"store-service/internal/orders"
	"store-service/internal/rpc"
	"store-service/internal/stores/kafka"
	"store-service/internal/stores/redis"
	"store-service/internal/telemetry"
)

const shutdownTimeout = 15 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "run the HTTP and gRPC servers",
		Action: func(c *cli.Context) error { return serve(c.Context) },
	}
}

func serve(parent context.Context) (err error) {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	telemetry.InitLogger(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Every cleanup registered below runs on the way out and its error is kept.
	var cleanups []func(context.Context) error
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		var result *multierror.Error
		if err != nil {
			result = multierror.Append(result, err)
		}
		for i := len(cleanups) - 1; i >= 0; i-- {
			if cerr := cleanups[i](shutdownCtx); cerr != nil {
				result = multierror.Append(result, cerr)
			}
		}
		err = result.ErrorOrNil()
	}()

	shutdownTracer, err := telemetry.SetupTracer(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	cleanups = append(cleanups, func(ctx context.Context) error { return shutdownTracer(ctx) })

	s, _, err := openStore(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	cleanups = append(cleanups, func(context.Context) error { return s.Close() })
	if err := s.Migrate(ctx); err != nil {
		return err
	}

	keys, err := auth.LoadKeys(cfg.JWTPublicKeyPath)
	if err != nil {
		return err
	}

	dispatcher, err := newDispatcher(cfg, &cleanups)
	if err != nil {
		return err
	}
	// Registered after the sinks, so the queue drains before they close.
	cleanups = append(cleanups, dispatcher.Close)

	sm := metrics.NewServerMetrics(prometheus.DefaultRegisterer, "http")

	cConf, err := cart.NewConf(s)
	if err != nil {
		return err
	}
	pConf, err := catalog.NewConf(s)
	if err != nil {
		return err
	}
	custConf, err := customers.NewConf(s)
	if err != nil {
		return err
	}
	policy := orders.Unrestricted
	if cfg.OrderStatusStrict {
		policy = orders.Strict
	}
	o, err := orders.NewConf(s, policy)
	if err != nil {
		return err
	}
	w, err := checkout.NewWorkflow(s, dispatcher, checkout.WithRecorder(sm))
	if err != nil {
		return err
	}

	router, err := handlers.API(cfg.EndpointPrefix, keys, sm,
		handlers.NewHandler(cConf, pConf, custConf, o, w, cfg.StripeWebhookSecret))
	if err != nil {
		return err
	}
	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	serverErrors := make(chan error, 2)
	go func() {
		slog.Info("http server listening", slog.String("addr", cfg.HTTPAddr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- fmt.Errorf("http server: %w", err)
		}
	}()
	cleanups = append(cleanups, httpSrv.Shutdown)

	if cfg.GRPCAddr != "" {
		grpcSrv, err := startGRPC(cfg.GRPCAddr, cConf, serverErrors)
		if err != nil {
			return err
		}
		cleanups = append(cleanups, func(ctx context.Context) error { return stopGRPC(ctx, grpcSrv) })
	}

	if cfg.ConsulAddr != "" {
		client, err := consul.NewClient(cfg.ConsulAddr)
		if err != nil {
			return err
		}
		id, err := consul.RegisterService(client, consul.Registration{
			Name:       cfg.ServiceName,
			HTTPAddr:   cfg.HTTPAddr,
			HealthPath: "/ping",
			Tags:       []string{"store", "http"},
		})
		if err != nil {
			return err
		}
		slog.Info("registered with consul", slog.String("service_id", id))
		cleanups = append(cleanups, func(context.Context) error { return consul.Deregister(client, id) })
	}

	if cfg.CartSweepInterval > 0 {
		go runJanitor(ctx, cConf, cfg.CartTTL, cfg.CartSweepInterval, sm)
	}

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
		return nil
	case err := <-serverErrors:
		return err
	}
}

// newDispatcher builds the OrderCreated dispatcher with every configured sink.
func newDispatcher(cfg config.Config, cleanups *[]func(context.Context) error) (*notify.Dispatcher, error) {
	sinks := []notify.Sink{notify.LogSink}
	if len(cfg.KafkaBrokers) > 0 {
		k, err := kafka.NewConf(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, err
		}
		*cleanups = append(*cleanups, func(context.Context) error { k.Close(); return nil })
		sinks = append(sinks, k)
	}
	if cfg.RedisAddr != "" {
		r := redis.NewConf(cfg.RedisAddr, cfg.RedisChannel)
		*cleanups = append(*cleanups, func(context.Context) error { return r.Close() })
		sinks = append(sinks, r)
	}
	return notify.NewDispatcher(cfg.NotifyQueueSize, sinks), nil
}

func startGRPC(addr string, cConf cart.Conf, serverErrors chan<- error) (*grpc.Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("grpc listen on %s: %w", addr, err)
	}
	srv := rpc.NewServer()
	rpc.RegisterCartItemServiceServer(srv, handlers.NewCartItemServiceHandler(cConf))
	go func() {
		slog.Info("grpc server listening", slog.String("addr", addr))
		if err := srv.Serve(lis); err != nil {
			serverErrors <- fmt.Errorf("grpc server: %w", err)
		}
	}()
	return srv, nil
}

// stopGRPC drains in-flight calls, falling back to a hard stop when ctx expires.
func stopGRPC(ctx context.Context, srv *grpc.Server) error {
	done := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		srv.Stop()
		return fmt.Errorf("grpc graceful stop: %w", ctx.Err())
	}
}

func runJanitor(ctx context.Context, cConf cart.Conf, ttl, every time.Duration, sm *metrics.ServerMetrics) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := cConf.SweepExpired(ctx, ttl)
			if err != nil {
				slog.Error("cart sweep failed", slog.String("error", err.Error()))
				continue
			}
			sm.CartsSwept.Add(float64(n))
			if n > 0 {
				slog.Info("expired carts swept", slog.Int64("count", n))
			}
		}
	}
}
