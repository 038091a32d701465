package scanner

import (
	"context"
	"fmt"
	"iter"

	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
	"go.uber.org/zap"
)

type fetched struct {
	height uint64
	block  *model.Block
	// scanned is set when another run already completed the height.
	scanned bool
	err     error
}

// prefetch fetches heights in order, up to cfg.Prefetch blocks ahead of the
// consumer. It stops after the first error.
func (s *Scanner) prefetch(ctx context.Context, heights iter.Seq[uint64]) <-chan fetched {
	out := make(chan fetched, s.cfg.Prefetch-1)
	go func() {
		defer close(out)
		for h := range heights {
			f := fetched{height: h}
			f.scanned, f.err = s.store.Scanned(ctx, h)
			if f.err == nil && !f.scanned {
				f.block, f.err = s.source.FetchBlock(ctx, h)
			}
			select {
			case out <- f:
			case <-ctx.Done():
				return
			}
			if f.err != nil {
				return
			}
		}
	}()
	return out
}

// scanDirection processes heights in order and advances dir after each one.
// Cancellation is honoured between blocks only.
func (s *Scanner) scanDirection(ctx context.Context, r *run, dir model.Direction, heights iter.Seq[uint64]) (int, error) {
	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.setState(r, StateFetchingBlock)
	blocks := s.prefetch(fetchCtx, heights)
	processed := 0
	for {
		if err := ctx.Err(); err != nil {
			return processed, err
		}
		f, ok := <-blocks
		if !ok {
			// closed after the last height or on cancellation
			return processed, ctx.Err()
		}
		if f.err != nil {
			return processed, fmt.Errorf("%s scan at %d: %w", dir, f.height, f.err)
		}

		if f.scanned {
			r.logger.Debug("height already scanned, advancing", zap.Uint64("height", f.height))
		} else {
			found, err := s.processBlock(ctx, r, f.block)
			if err != nil {
				return processed, err
			}
			r.logger.Debug("block processed",
				zap.Uint64("height", f.height),
				zap.Int("transactions", len(f.block.Transactions)),
				zap.Int("found", found),
			)
		}
		if err := s.advance(ctx, r, dir, f.height); err != nil {
			return processed, err
		}
		processed++
		s.setState(r, StateFetchingBlock)
	}
}

func ascending(from, to uint64) iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		for h := from; h <= to; h++ {
			if !yield(h) || h == to {
				return
			}
		}
	}
}

// descending yields from down to from-count+1, never below zero.
func descending(from, count uint64) iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		for i := uint64(0); i < count; i++ {
			if !yield(from-i) || from-i == 0 {
				return
			}
		}
	}
}
