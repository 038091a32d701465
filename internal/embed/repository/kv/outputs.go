package kv

import (
	"context"
	"fmt"

	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/repository"
)

func (s *Store) InsertOutput(ctx context.Context, out model.EmbeddedOutput) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	value, err := json.Marshal(out)
	if err != nil {
		return false, fmt.Errorf("encode output: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := outputKey(out.TxID, out.Vout)
	exists, err := s.db.Has(key)
	if err != nil {
		return false, fmt.Errorf("check output %s:%d: %w", out.TxID, out.Vout, err)
	}
	if exists {
		return false, nil
	}

	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.Set(key, value); err != nil {
		return false, fmt.Errorf("batch set output: %w", err)
	}
	if err := batch.Set(heightIndexKey(out.BlockHeight, out.TxID, out.Vout), []byte{}); err != nil {
		return false, fmt.Errorf("batch set height index: %w", err)
	}
	if err := batch.WriteSync(); err != nil {
		return false, fmt.Errorf("write output %s:%d: %w", out.TxID, out.Vout, err)
	}
	return true, nil
}

func (s *Store) OutputExists(ctx context.Context, txid string, vout uint32) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	ok, err := s.db.Has(outputKey(txid, vout))
	if err != nil {
		return false, fmt.Errorf("check output %s:%d: %w", txid, vout, err)
	}
	return ok, nil
}

func (s *Store) Output(ctx context.Context, txid string, vout uint32) (model.EmbeddedOutput, error) {
	if err := ctx.Err(); err != nil {
		return model.EmbeddedOutput{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.output(txid, vout)
}

func (s *Store) output(txid string, vout uint32) (model.EmbeddedOutput, error) {
	raw, err := s.db.Get(outputKey(txid, vout))
	if err != nil {
		return model.EmbeddedOutput{}, fmt.Errorf("get output %s:%d: %w", txid, vout, err)
	}
	if raw == nil {
		return model.EmbeddedOutput{}, fmt.Errorf("output %s:%d: %w", txid, vout, repository.ErrNotFound)
	}
	var out model.EmbeddedOutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return model.EmbeddedOutput{}, fmt.Errorf("decode output %s:%d: %w", txid, vout, err)
	}
	return out, nil
}

// ListOutputs walks the height index in order.
func (s *Store) ListOutputs(ctx context.Context, filter repository.OutputFilter) ([]model.EmbeddedOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := []byte(heightIndexKeyPrefix + heightKey(filter.FromHeight))
	end := prefixEnd([]byte(heightIndexKeyPrefix))
	if filter.ToHeight > 0 {
		end = prefixEnd([]byte(heightIndexKeyPrefix + heightKey(filter.ToHeight) + ":"))
	}

	limit := filter.EffectiveLimit()
	skipped := 0
	var outputs []model.EmbeddedOutput
	err := s.iterate(start, end, false, func(key, _ []byte) (bool, error) {
		_, txid, vout, err := parseIndexKey(key)
		if err != nil {
			return false, err
		}
		out, err := s.output(txid, vout)
		if err != nil {
			return false, err
		}
		if filter.PayloadType != "" && out.PayloadType != filter.PayloadType {
			return true, nil
		}
		if skipped < filter.Offset {
			skipped++
			return true, nil
		}
		outputs = append(outputs, out)
		return len(outputs) < limit, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list outputs: %w", err)
	}
	return outputs, nil
}

func (s *Store) DeleteOutputs(ctx context.Context, height uint64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := []byte(heightIndexKeyPrefix + heightKey(height) + ":")
	var keys [][]byte
	err := s.iterate(prefix, prefixEnd(prefix), false, func(key, _ []byte) (bool, error) {
		keys = append(keys, append([]byte(nil), key...))
		return true, nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan height %d: %w", height, err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	batch := s.db.NewBatch()
	defer batch.Close()
	for _, key := range keys {
		_, txid, vout, err := parseIndexKey(key)
		if err != nil {
			return 0, err
		}
		if err := batch.Delete(outputKey(txid, vout)); err != nil {
			return 0, fmt.Errorf("batch delete output: %w", err)
		}
		if err := batch.Delete(key); err != nil {
			return 0, fmt.Errorf("batch delete index: %w", err)
		}
	}
	if err := batch.WriteSync(); err != nil {
		return 0, fmt.Errorf("delete outputs at height %d: %w", height, err)
	}
	return len(keys), nil
}

func (s *Store) HeightsWithOutputs(ctx context.Context) ([]uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var heights []uint64
	err := s.iteratePrefix(heightIndexKeyPrefix, func(key, _ []byte) (bool, error) {
		h, _, _, err := parseIndexKey(key)
		if err != nil {
			return false, err
		}
		if len(heights) == 0 || heights[len(heights)-1] != h {
			heights = append(heights, h)
		}
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list heights: %w", err)
	}
	return heights, nil
}
