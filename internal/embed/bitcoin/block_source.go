package bitcoin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/chain"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
	"github.com/goodnatureofminers/opreturn-indexer/pkg/safe"
)

// DefaultCallTimeout bounds a single RPC call.
const DefaultCallTimeout = 30 * time.Second

// BlockSource implements chain.BlockSource against a Bitcoin Core node.
type BlockSource struct {
	rpc         RPCClient
	callTimeout time.Duration
}

var _ chain.BlockSource = (*BlockSource)(nil)

// NewBlockSource creates a BlockSource. A non-positive timeout selects DefaultCallTimeout.
func NewBlockSource(rpc RPCClient, callTimeout time.Duration) *BlockSource {
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}
	return &BlockSource{rpc: rpc, callTimeout: callTimeout}
}

// LatestHeight returns the height of the node tip.
func (s *BlockSource) LatestHeight(ctx context.Context) (uint64, error) {
	count, err := call(ctx, s.callTimeout, s.rpc.GetBlockCount)
	if err != nil {
		return 0, classify(fmt.Errorf("get block count: %w", err))
	}
	height, err := safe.Uint64(count)
	if err != nil {
		return 0, fmt.Errorf("block count overflow: %w", err)
	}
	return height, nil
}

// FetchBlock retrieves the block at height with decoded transactions.
func (s *BlockSource) FetchBlock(ctx context.Context, height uint64) (*model.Block, error) {
	if height > math.MaxInt64 {
		return nil, fmt.Errorf("block height %d exceeds rpc limit", height)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hash, err := call(ctx, s.callTimeout, func() (string, error) {
		h, err := s.rpc.GetBlockHash(int64(height))
		if err != nil {
			return "", err
		}
		return h.String(), nil
	})
	if err != nil {
		return nil, classify(fmt.Errorf("get block hash at height %d: %w", height, err))
	}

	params, err := blockParams(hash)
	if err != nil {
		return nil, err
	}
	raw, err := call(ctx, s.callTimeout, func() (json.RawMessage, error) {
		return s.rpc.RawRequest("getblock", params)
	})
	if err != nil {
		return nil, classify(fmt.Errorf("get block %s: %w", hash, err))
	}

	var src verboseBlock
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, fmt.Errorf("decode block %s: %w", hash, err)
	}
	if src.Height >= 0 && uint64(src.Height) != height {
		return nil, fmt.Errorf("block %s reports height %d, want %d", hash, src.Height, height)
	}
	return BuildBlock(src)
}

func blockParams(hash string) ([]json.RawMessage, error) {
	hashParam, err := json.Marshal(hash)
	if err != nil {
		return nil, fmt.Errorf("encode block hash: %w", err)
	}
	return []json.RawMessage{hashParam, json.RawMessage("2")}, nil
}

// call runs fn with a deadline. rpcclient calls cannot be cancelled, so a
// timed out call is abandoned and its result discarded.
func call[T any](ctx context.Context, timeout time.Duration, fn func() (T, error)) (T, error) {
	type result struct {
		val T
		err error
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{val: v, err: err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case r := <-done:
		return r.val, r.err
	}
}

// classify marks everything except node-side RPC errors as transient. A node
// answering with an error (height out of range, unknown block) will answer the
// same way on retry.
func classify(err error) error {
	var rpcErr *btcjson.RPCError
	if errors.As(err, &rpcErr) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return chain.Transient(err)
}
