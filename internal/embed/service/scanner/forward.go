package scanner

import (
	"context"
	"fmt"

	"github.com/goodnatureofminers/opreturn-indexer/internal/clock"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
	"go.uber.org/zap"
)

// Forward scans from the forward checkpoint to the chain tip. With Follow set
// it keeps waiting for new blocks until ctx is cancelled.
func (s *Scanner) Forward(ctx context.Context) error {
	r := s.newRun(ModeForward)
	next, err := s.forwardStart(ctx)
	if err != nil {
		return s.stop(r, err)
	}
	r.logger.Info("forward scan starting", zap.Uint64("from", next), zap.Bool("follow", s.cfg.Follow))

	for {
		if err := ctx.Err(); err != nil {
			return s.stop(r, err)
		}
		tip, err := s.source.LatestHeight(ctx)
		if err != nil {
			return s.stop(r, fmt.Errorf("query chain tip: %w", err))
		}
		if next <= tip {
			n, err := s.scanDirection(ctx, r, model.Forward, ascending(next, tip))
			next += uint64(n)
			if err != nil {
				return s.stop(r, err)
			}
			continue
		}
		if !s.cfg.Follow {
			return s.stop(r, nil)
		}
		s.setState(r, StateIdle)
		r.logger.Debug("at chain tip, waiting for a block", zap.Uint64("tip", tip))
		if err := s.waitForBlock(ctx); err != nil {
			return s.stop(r, err)
		}
	}
}

// forwardStart resumes after the checkpoint, else at StartHeight, else after
// the highest scanned height, else at the current tip.
func (s *Scanner) forwardStart(ctx context.Context) (uint64, error) {
	cp, ok, err := s.store.Checkpoint(ctx, model.Forward)
	if err != nil {
		return 0, fmt.Errorf("load forward checkpoint: %w", err)
	}
	if ok {
		return cp.Height + 1, nil
	}
	if s.cfg.StartHeight != nil {
		return *s.cfg.StartHeight, nil
	}
	_, hi, ok, err := s.store.ScannedBounds(ctx)
	if err != nil {
		return 0, fmt.Errorf("load scanned bounds: %w", err)
	}
	if ok {
		return hi + 1, nil
	}
	tip, err := s.source.LatestHeight(ctx)
	if err != nil {
		return 0, fmt.Errorf("query chain tip: %w", err)
	}
	return tip, nil
}

func (s *Scanner) waitForBlock(ctx context.Context) error {
	woken, err := clock.Wait(ctx, s.clock, s.cfg.PollInterval, s.signal)
	if err != nil {
		return err
	}
	if woken {
		s.logger.Debug("woken by block notification")
	}
	return nil
}
