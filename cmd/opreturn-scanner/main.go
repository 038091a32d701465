// Command opreturn-scanner scans the chain for large null-data outputs and
// records them.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/service/scanner"
	"github.com/jessevdk/go-flags"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	opts, command, err := parseOptions(os.Args[1:])
	if err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			return
		}
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("can't initialize zap logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync()
	}()
	logger = logger.With(zap.String("network", string(opts.Network)), zap.String("command", command))

	if err := run(ctx, opts, command, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("opreturn scanner failed", zap.Error(err))
	}
}

func run(ctx context.Context, opts *options, command string, logger *zap.Logger) error {
	if opts.MetricsAddr != "" && command != "stats" {
		startMetricsServer(ctx, opts.MetricsAddr, logger)
	}

	app, err := build(ctx, opts, command, logger)
	if err != nil {
		return err
	}
	defer app.close()

	s := app.scanner
	switch command {
	case "forward":
		return s.Forward(ctx)
	case "backward":
		return s.Backward(ctx)
	case "both":
		return runBoth(ctx, s, opts, logger)
	case "range":
		res, err := s.Range(ctx, scanner.Heights(opts.Range.Args.Start, opts.Range.Args.End), opts.Range.Force)
		logger.Info("range finished",
			zap.Int("requested", res.Requested),
			zap.Int("scanned", res.Scanned),
			zap.Int("skipped", res.Skipped),
			zap.Int("outputs", res.Outputs),
		)
		return err
	case "reset":
		deleted, err := s.Reset(ctx, opts.Reset.Args.Height)
		if err != nil {
			return err
		}
		logger.Info("height reset", zap.Uint64("height", opts.Reset.Args.Height), zap.Int("deleted", deleted))
		return nil
	case "rescan":
		res, err := s.Rescan(ctx)
		logger.Info("rescan finished",
			zap.Int("heights", res.Requested),
			zap.Int("scanned", res.Scanned),
			zap.Int("outputs", res.Outputs),
		)
		return err
	case "stats":
		return printStats(ctx, os.Stdout, app)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func runBoth(ctx context.Context, s *scanner.Scanner, opts *options, logger *zap.Logger) error {
	if start := opts.Both.Start; start != nil && *start == 0 {
		logger.Info("forward start is genesis, nothing to scan backward")
		return s.Forward(ctx)
	}
	// Each direction stops only on its own fatal error or on ctx.
	var (
		g               errgroup.Group
		fwdErr, backErr error
	)
	g.Go(func() error {
		fwdErr = s.Forward(ctx)
		return nil
	})
	g.Go(func() error {
		backErr = s.Backward(ctx)
		return nil
	})
	_ = g.Wait()
	return errors.Join(fwdErr, backErr)
}

func printStats(ctx context.Context, w io.Writer, app *application) error {
	stats, err := app.store.Stats(ctx)
	if err != nil {
		return fmt.Errorf("load stats: %w", err)
	}
	_, err = fmt.Fprintf(w,
		"blocks scanned:      %d\noutputs found:       %d\nheight range:        %d-%d\navg outputs/block:   %.2f\npayload bytes:       %d\ntotal fees:          %s\n",
		stats.BlocksScanned,
		stats.OutputsFound,
		stats.FirstHeight, stats.LastHeight,
		stats.AvgPerBlock(),
		stats.TotalPayloadBytes,
		btcutil.Amount(stats.TotalFees),
	)
	return err
}
