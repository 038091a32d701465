package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/btcsuite/btcd/rpcclient"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/bitcoin"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/extract"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/persister"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/repository"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/repository/clickhouse"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/repository/kv"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/repository/postgres"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/service/mirror"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/service/scanner"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/sidecar"
	"github.com/goodnatureofminers/opreturn-indexer/internal/metrics"
	observed "github.com/goodnatureofminers/opreturn-indexer/internal/pkg/btcd/rpcclient"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type application struct {
	store   repository.Store
	scanner *scanner.Scanner
	closers []func()
}

// close releases resources in reverse order of acquisition.
func (a *application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func build(ctx context.Context, opts *options, command string, logger *zap.Logger) (_ *application, err error) {
	app := &application{}
	defer func() {
		if err != nil {
			app.close()
		}
	}()

	store, err := openStore(ctx, opts, logger)
	if err != nil {
		return nil, err
	}
	app.store = store
	app.closers = append(app.closers, func() {
		if err := store.Close(); err != nil {
			logger.Warn("close store", zap.Error(err))
		}
	})

	persisterOpts := []persister.Option{persister.WithMetrics(metrics.NewPersister())}
	if opts.Storage.FilesDir != "" {
		files, err := sidecar.NewOSStore(opts.Storage.FilesDir)
		if err != nil {
			return nil, fmt.Errorf("init sidecar store: %w", err)
		}
		persisterOpts = append(persisterOpts, persister.WithSidecar(files))
	}
	if dsn := opts.Analytics.ClickhouseDSN; dsn != "" {
		repo, err := clickhouse.NewRepository(dsn, metrics.NewRepository("clickhouse"))
		if err != nil {
			return nil, fmt.Errorf("init analytics repository: %w", err)
		}
		m := mirror.New(repo, opts.Analytics.Mirror, metrics.NewMirror(), logger)
		m.Start(ctx)
		app.closers = append(app.closers, func() {
			m.Stop()
			if err := repo.Close(); err != nil {
				logger.Warn("close analytics repository", zap.Error(err))
			}
		})
		persisterOpts = append(persisterOpts, persister.WithMirror(m))
	}

	rpcClient, err := newRPCClient(opts.RPC.URL, opts.RPC.User, opts.RPC.Password)
	if err != nil {
		return nil, fmt.Errorf("init rpc client: %w", err)
	}
	app.closers = append(app.closers, func() {
		rpcClient.Shutdown()
		rpcClient.WaitForShutdown()
	})
	rpc := observed.NewObservedClient(rpcClient, metrics.NewRPCClient(string(opts.Network)))
	source := bitcoin.NewRetryingSource(bitcoin.NewBlockSource(rpc, opts.RPC.Timeout), opts.retryPolicy(), logger)

	cfg := opts.scannerConfig(command)
	var signal <-chan struct{}
	if cfg.Follow && opts.RPC.ZMQAddr != "" {
		blockSignal := bitcoin.NewBlockSignal(opts.RPC.ZMQAddr, logger)
		go func() {
			if err := blockSignal.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("block signal stopped", zap.Error(err))
			}
		}()
		signal = blockSignal.Signals()
	}

	s, err := scanner.New(scanner.Deps{
		Source:      source,
		Store:       store,
		Persister:   persister.New(store, logger, persisterOpts...),
		Extractor:   extract.NewExtractor(opts.threshold(), logger, metrics.NewExtractor()),
		Metrics:     metrics.NewScanner(string(opts.Network)),
		Clock:       clock.NewDefaultClock(),
		Logger:      logger,
		BlockSignal: signal,
	}, cfg)
	if err != nil {
		return nil, fmt.Errorf("init scanner: %w", err)
	}
	app.scanner = s
	return app, nil
}

func openStore(ctx context.Context, opts *options, logger *zap.Logger) (repository.Store, error) {
	switch opts.Storage.Store {
	case storeEmbedded:
		store, err := kv.Open(opts.Storage.KVBackend, opts.Storage.DataDir, clock.NewDefaultClock(), logger)
		if err != nil {
			return nil, fmt.Errorf("open embedded store: %w", err)
		}
		return store, nil
	case storePostgres:
		repo, err := postgres.NewRepository(ctx, opts.Storage.PostgresDSN, metrics.NewRepository("postgres"), clock.NewDefaultClock())
		if err != nil {
			return nil, fmt.Errorf("init postgres repository: %w", err)
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown store %q", opts.Storage.Store)
	}
}

func startMetricsServer(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("starting metrics server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shutdown metrics server", zap.Error(err))
		}
	}()
}

func newRPCClient(rawURL, user, password string) (*rpcclient.Client, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse rpc url: %w", err)
	}
	if parsed.Scheme != "http" {
		return nil, fmt.Errorf("rpc url scheme %q not supported, use http", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, errors.New("rpc url missing host")
	}

	return rpcclient.New(&rpcclient.ConnConfig{
		Host:         parsed.Host,
		User:         user,
		Pass:         password,
		HTTPPostMode: true,
		DisableTLS:   true,
	}, nil)
}
