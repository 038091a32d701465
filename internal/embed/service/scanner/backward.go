package scanner

import (
	"context"
	"fmt"

	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
	"go.uber.org/zap"
)

// Backward scans down from the backward checkpoint for at most
// BackwardWindow blocks, stopping after height 0.
func (s *Scanner) Backward(ctx context.Context) error {
	r := s.newRun(ModeBackward)
	start, done, err := s.backwardStart(ctx)
	if err != nil {
		return s.stop(r, err)
	}
	if done {
		r.logger.Info("backward scan already reached genesis")
		return s.stop(r, nil)
	}
	r.logger.Info("backward scan starting",
		zap.Uint64("from", start),
		zap.Uint64("window", s.cfg.BackwardWindow),
	)

	n, err := s.scanDirection(ctx, r, model.Backward, descending(start, s.cfg.BackwardWindow))
	r.logger.Info("backward scan progress", zap.Int("blocks", n))
	return s.stop(r, err)
}

// backwardStart resumes below the checkpoint, else at BackwardFrom, else below
// the lowest scanned height, else at the current tip. done reports that
// height 0 is already behind the run.
func (s *Scanner) backwardStart(ctx context.Context) (start uint64, done bool, err error) {
	cp, ok, err := s.store.Checkpoint(ctx, model.Backward)
	if err != nil {
		return 0, false, fmt.Errorf("load backward checkpoint: %w", err)
	}
	if ok {
		if cp.Height == 0 {
			return 0, true, nil
		}
		return cp.Height - 1, false, nil
	}
	if s.cfg.BackwardFrom != nil {
		return *s.cfg.BackwardFrom, false, nil
	}
	lo, _, ok, err := s.store.ScannedBounds(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("load scanned bounds: %w", err)
	}
	if ok {
		if lo == 0 {
			return 0, true, nil
		}
		return lo - 1, false, nil
	}
	tip, err := s.source.LatestHeight(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("query chain tip: %w", err)
	}
	return tip, false, nil
}
