package kv

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/checkpoint"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
)

func (s *Store) Checkpoint(ctx context.Context, dir model.Direction) (model.Checkpoint, bool, error) {
	if err := ctx.Err(); err != nil {
		return model.Checkpoint{}, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checkpoint(dir)
}

func (s *Store) checkpoint(dir model.Direction) (model.Checkpoint, bool, error) {
	raw, err := s.db.Get(checkpointKey(dir))
	if err != nil {
		return model.Checkpoint{}, false, fmt.Errorf("get checkpoint %s: %w", dir, err)
	}
	if raw == nil {
		return model.Checkpoint{}, false, nil
	}
	var cp model.Checkpoint
	if err := json.Unmarshal(raw, &cp); err != nil {
		return model.Checkpoint{}, false, fmt.Errorf("decode checkpoint %s: %w", dir, err)
	}
	return cp, true, nil
}

func (s *Store) Advance(ctx context.Context, dir model.Direction, height uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cp, ok, err := s.checkpoint(dir)
	if err != nil {
		return err
	}
	if err := checkpoint.CheckAdvance(dir, cp.Height, ok, height); err != nil {
		return err
	}

	raw, err := json.Marshal(model.Checkpoint{Direction: dir, Height: height, UpdatedAt: s.clock.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	if err := s.db.SetSync(checkpointKey(dir), raw); err != nil {
		return fmt.Errorf("set checkpoint %s: %w", dir, err)
	}
	return nil
}

func (s *Store) MarkScanned(ctx context.Context, scan model.BlockScan) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if scan.ScannedAt.IsZero() {
		scan.ScannedAt = s.clock.Now().UTC()
	}
	raw, err := json.Marshal(scan)
	if err != nil {
		return fmt.Errorf("encode block scan: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.db.SetSync(scanKey(scan.Height), raw); err != nil {
		return fmt.Errorf("mark height %d scanned: %w", scan.Height, err)
	}
	return nil
}

func (s *Store) Scanned(ctx context.Context, height uint64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	ok, err := s.db.Has(scanKey(height))
	if err != nil {
		return false, fmt.Errorf("check height %d: %w", height, err)
	}
	return ok, nil
}

func (s *Store) Reset(ctx context.Context, height uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.db.DeleteSync(scanKey(height)); err != nil {
		return fmt.Errorf("reset height %d: %w", height, err)
	}
	return nil
}

func (s *Store) ScannedBounds(ctx context.Context) (uint64, uint64, bool, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	lo, okLo, err := s.edgeScan(false)
	if err != nil || !okLo {
		return 0, 0, false, err
	}
	hi, _, err := s.edgeScan(true)
	if err != nil {
		return 0, 0, false, err
	}
	return lo, hi, true, nil
}

func (s *Store) edgeScan(last bool) (uint64, bool, error) {
	prefix := []byte(scanKeyPrefix)
	var (
		height uint64
		found  bool
	)
	err := s.iterate(prefix, prefixEnd(prefix), last, func(key, _ []byte) (bool, error) {
		h, err := strconv.ParseUint(strings.TrimPrefix(string(key), scanKeyPrefix), 10, 64)
		if err != nil {
			return false, fmt.Errorf("scan key %q: %w", key, err)
		}
		height, found = h, true
		return false, nil
	})
	return height, found, err
}

func (s *Store) Stats(ctx context.Context) (model.Stats, error) {
	if err := ctx.Err(); err != nil {
		return model.Stats{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats model.Stats
	first := true
	err := s.iteratePrefix(scanKeyPrefix, func(key, _ []byte) (bool, error) {
		h, err := strconv.ParseUint(strings.TrimPrefix(string(key), scanKeyPrefix), 10, 64)
		if err != nil {
			return false, fmt.Errorf("scan key %q: %w", key, err)
		}
		stats.BlocksScanned++
		if first {
			stats.FirstHeight = h
			first = false
		}
		stats.LastHeight = h
		return true, nil
	})
	if err != nil {
		return model.Stats{}, err
	}

	err = s.iteratePrefix(outputKeyPrefix, func(_, value []byte) (bool, error) {
		var out model.EmbeddedOutput
		if err := json.Unmarshal(value, &out); err != nil {
			return false, fmt.Errorf("decode output: %w", err)
		}
		stats.OutputsFound++
		stats.TotalPayloadBytes += uint64(out.PayloadSize)
		if out.Fee != nil {
			stats.TotalFees += *out.Fee
		}
		return true, nil
	})
	if err != nil {
		return model.Stats{}, err
	}
	return stats, nil
}
