// Command opreturn-api serves the recorded outputs over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/repository"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/repository/clickhouse"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/repository/kv"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/repository/postgres"
	"github.com/goodnatureofminers/opreturn-indexer/internal/metrics"
	"github.com/goodnatureofminers/opreturn-indexer/internal/transport"
	grpcZap "github.com/grpc-ecosystem/go-grpc-middleware/logging/zap"
	gwruntime "github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/jessevdk/go-flags"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type config struct {
	Addr          string `long:"addr" env:"OPRETURN_API_ADDR" description:"gRPC listen address" default:":8000"`
	RestAddr      string `long:"rest-addr" env:"OPRETURN_API_REST_ADDR" description:"HTTP listen address" default:":8001"`
	Store         string `long:"store" env:"OPRETURN_STORE" description:"record store" choice:"postgres" choice:"embedded" default:"postgres"`
	PostgresDSN   string `long:"postgres-dsn" env:"OPRETURN_POSTGRES_DSN" description:"Postgres DSN" default:"postgres://localhost:5432/opreturn?sslmode=disable"`
	DataDir       string `long:"data-dir" env:"OPRETURN_DATA_DIR" description:"directory of the embedded database" default:"opreturn_data/db"`
	KVBackend     string `long:"kv-backend" env:"OPRETURN_KV_BACKEND" description:"embedded database backend" default:"goleveldb"`
	ClickhouseDSN string `long:"clickhouse-dsn" env:"OPRETURN_CLICKHOUSE_DSN" description:"ClickHouse DSN for analytics routes, empty disables them"`
}

func main() {
	cfg := config{}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()
	grpcZap.ReplaceGrpcLoggerV2(logger)
	if _, err := flags.ParseArgs(&cfg, os.Args); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		logger.Fatal("Failed to parse arguments", zap.Error(err))
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("opreturn api failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config, logger *zap.Logger) error {
	reader, closeReader, err := openReader(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeReader()

	var analytics transport.Analytics
	if cfg.ClickhouseDSN != "" {
		repo, err := clickhouse.NewRepository(cfg.ClickhouseDSN, metrics.NewRepository("clickhouse"))
		if err != nil {
			return fmt.Errorf("init analytics repository: %w", err)
		}
		defer func() {
			_ = repo.Close()
		}()
		analytics = repo
	}

	grpcServer, healthServer := transport.NewGRPCServer(logger)
	socket, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Addr, err)
	}
	go func() {
		if serveErr := grpcServer.Serve(socket); serveErr != nil {
			logger.Error("gRPC server stopped", zap.Error(serveErr))
		}
	}()
	go func() {
		<-ctx.Done()
		logger.Info("Shutting down gRPC server")
		healthServer.Shutdown()
		grpcServer.GracefulStop()
	}()

	gw := gwruntime.NewServeMux()
	if err := transport.NewQueryHandler(reader, analytics, healthServer, logger).Register(gw); err != nil {
		return fmt.Errorf("register query routes: %w", err)
	}
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	mux := http.NewServeMux()
	mux.Handle("/", gw)
	mux.Handle("/metrics", promhttp.Handler())

	s := &http.Server{
		Addr:              cfg.RestAddr,
		Handler:           cors.Default().Handler(mux),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    http.DefaultMaxHeaderBytes,
	}
	go func() {
		<-ctx.Done()
		logger.Info("Shutting down the http server")
		if err := s.Shutdown(context.Background()); err != nil {
			logger.Error("Failed to shutdown http server", zap.Error(err))
		}
	}()

	logger.Info("Starting HTTP server", zap.String("addr", cfg.RestAddr))
	if err := s.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve: %w", err)
	}
	return nil
}

func openReader(ctx context.Context, cfg config, logger *zap.Logger) (repository.OutputReader, func(), error) {
	switch cfg.Store {
	case "embedded":
		store, err := kv.Open(cfg.KVBackend, cfg.DataDir, clock.NewDefaultClock(), logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open embedded store: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	default:
		repo, err := postgres.NewRepository(ctx, cfg.PostgresDSN, metrics.NewRepository("postgres"), clock.NewDefaultClock())
		if err != nil {
			return nil, nil, fmt.Errorf("init postgres repository: %w", err)
		}
		return repo, func() { _ = repo.Close() }, nil
	}
}
