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

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/jcmexdev/storefront-api/internal/pkg/config"
	"github.com/jcmexdev/storefront-api/internal/pkg/interceptors"
	"github.com/jcmexdev/storefront-api/internal/pkg/metrics"
	"github.com/jcmexdev/storefront-api/internal/pkg/telemetry"
	"github.com/jcmexdev/storefront-api/internal/storefront/core/services"
	"github.com/jcmexdev/storefront-api/internal/storefront/infra/adapters/store/seed"
	"github.com/jcmexdev/storefront-api/internal/storefront/infra/httpx"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	telemetry.InitLogger(telemetry.LoggerOptions{
		Service: cfg.OTelServiceName,
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("storefront-api stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	shutdownTracer, err := telemetry.SetupTracer(ctx, telemetry.TracerOptions{
		ServiceName: cfg.OTelServiceName,
		Env:         cfg.AppEnv,
		Endpoint:    cfg.OTelEndpoint,
	})
	if err != nil {
		return err
	}
	defer closeWithTimeout(cfg.ShutdownTimeout, "tracer", shutdownTracer)

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeWithTimeout(cfg.ShutdownTimeout, "stores", st.close)

	n, err := seed.Load(ctx, st.catalog, cfg.ProductsSeedFile)
	if err != nil {
		return err
	}
	slog.Info("store ready", "backend", cfg.StoreBackend, "seeded_products", n)

	sagas, err := openSagaLog(cfg)
	if err != nil {
		return err
	}
	defer closeQuietly("saga log", sagas.Close)

	idem := openCache(ctx, cfg)
	defer closeQuietly("cache", idem.Close)

	notifier := openNotifier(cfg)
	defer closeQuietly("notifier", notifier.Close)

	reg := metrics.New("storefront")
	carts := services.NewCartService(st.carts)
	orders := services.NewOrderService(st.orders, services.NewTimestampIDGenerator())
	checkout := services.NewCheckoutService(carts, orders, sagas, idem, cfg.IdempotencyTTL, reg)

	if fixed, err := checkout.ReconcilePending(ctx); err != nil {
		slog.Error("startup cart reconciliation incomplete", "reconciled", fixed, "error", err)
	} else if fixed > 0 {
		slog.Info("reconciled carts of degraded checkouts", "reconciled", fixed)
	}

	handler := httpx.NewHandler(httpx.Services{
		Carts:      carts,
		Orders:     orders,
		Checkout:   checkout,
		Complaints: services.NewComplaintService(st.complaints, notifier, reg),
		Catalog:    st.catalog,
	})
	httpServer := &http.Server{
		Addr: cfg.HTTPAddr(),
		Handler: httpx.NewRouter(handler, httpx.RouterOptions{
			Metrics:        reg.Middleware,
			MetricsHandler: reg.Handler(),
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Bind gRPC before any server goroutine starts so a bad port fails fast.
	var grpcLis net.Listener
	if cfg.GRPCPort > 0 {
		grpcLis, err = net.Listen("tcp", cfg.GRPCAddr())
		if err != nil {
			return fmt.Errorf("listen grpc %s: %w", cfg.GRPCAddr(), err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("storefront HTTP running", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	var grpcServer *grpc.Server
	if grpcLis != nil {
		grpcServer = grpc.NewServer(
			grpc.StatsHandler(otelgrpc.NewServerHandler()),
			grpc.UnaryInterceptor(interceptors.UnaryServerInterceptor()),
		)
		healthSrv := health.NewServer()
		healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		healthpb.RegisterHealthServer(grpcServer, healthSrv)

		g.Go(func() error {
			slog.Info("storefront gRPC health running", "addr", grpcLis.Addr().String())
			return grpcServer.Serve(grpcLis)
		})
		g.Go(func() error {
			<-gctx.Done()
			healthSrv.Shutdown()
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if grpcServer != nil {
			grpcServer.GracefulStop()
		}
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func closeWithTimeout(timeout time.Duration, what string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		slog.Error("shutdown error", "component", what, "error", err)
	}
}

func closeQuietly(what string, fn func() error) {
	if err := fn(); err != nil {
		slog.Error("close error", "component", what, "error", err)
	}
}
