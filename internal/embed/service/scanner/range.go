package scanner

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/goodnatureofminers/opreturn-indexer/pkg/workerpool"
	"github.com/scylladb/go-set/u64set"
	"go.uber.org/zap"
)

// RangeResult summarises a range run.
type RangeResult struct {
	Requested int
	Scanned   int
	Skipped   int
	Outputs   int
}

// Heights lists start..end inclusive. end below start yields just start.
func Heights(start, end uint64) []uint64 {
	if end < start {
		end = start
	}
	heights := make([]uint64, 0, end-start+1)
	for h := start; ; h++ {
		heights = append(heights, h)
		if h == end {
			return heights
		}
	}
}

// Range scans an explicit list of heights. Duplicates are ignored and heights
// with a completion marker are skipped unless force is set, in which case the
// height is reset first. Direction checkpoints are never touched.
func (s *Scanner) Range(ctx context.Context, heights []uint64, force bool) (RangeResult, error) {
	r := s.newRun(ModeRange)
	list := u64set.New(heights...).List()
	slices.Sort(list)
	res := RangeResult{Requested: len(list)}
	r.logger.Info("range scan starting",
		zap.Int("heights", len(list)),
		zap.Bool("force", force),
		zap.Int("workers", s.cfg.RangeWorkers),
	)

	var scanned, skipped, outputs atomic.Int64
	err := workerpool.Process(ctx, s.cfg.RangeWorkers, slices.Values(list), func(ctx context.Context, h uint64) error {
		if force {
			if _, err := s.Reset(ctx, h); err != nil {
				return err
			}
		} else {
			done, err := s.store.Scanned(ctx, h)
			if err != nil {
				return fmt.Errorf("check marker at %d: %w", h, err)
			}
			if done {
				skipped.Add(1)
				return nil
			}
		}

		s.setState(r, StateFetchingBlock)
		block, err := s.source.FetchBlock(ctx, h)
		if err != nil {
			return fmt.Errorf("range scan at %d: %w", h, err)
		}
		found, err := s.processBlock(ctx, r, block)
		if err != nil {
			return err
		}
		scanned.Add(1)
		outputs.Add(int64(found))
		return nil
	})

	res.Scanned = int(scanned.Load())
	res.Skipped = int(skipped.Load())
	res.Outputs = int(outputs.Load())
	r.logger.Info("range scan result",
		zap.Int("scanned", res.Scanned),
		zap.Int("skipped", res.Skipped),
		zap.Int("outputs", res.Outputs),
	)
	return res, s.stop(r, err)
}

// Rescan resets and scans again every height that has records.
func (s *Scanner) Rescan(ctx context.Context) (RangeResult, error) {
	heights, err := s.store.HeightsWithOutputs(ctx)
	if err != nil {
		return RangeResult{}, fmt.Errorf("list heights with outputs: %w", err)
	}
	if len(heights) == 0 {
		s.logger.Info("nothing to rescan")
		return RangeResult{}, nil
	}
	return s.Range(ctx, heights, true)
}
