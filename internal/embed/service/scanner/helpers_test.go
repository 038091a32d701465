package scanner

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/btcsuite/btcd/txscript"
	tmdb "github.com/cosmos/cosmos-db"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/chain"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/persister"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/repository"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/repository/kv"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/sidecar"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testEpoch = time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC)

// chainStub serves blocks from memory.
type chainStub struct {
	mu      sync.Mutex
	blocks  map[uint64]*model.Block
	tip     uint64
	fail    map[uint64]error
	calls   map[uint64]int
	onFetch func(height uint64)
}

func newChainStub() *chainStub {
	return &chainStub{
		blocks: make(map[uint64]*model.Block),
		fail:   make(map[uint64]error),
		calls:  make(map[uint64]int),
	}
}

func (c *chainStub) add(b *model.Block) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blocks[b.Height] = b
	if b.Height > c.tip {
		c.tip = b.Height
	}
}

func (c *chainStub) failAt(height uint64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fail[height] = err
}

func (c *chainStub) fetchCalls(height uint64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[height]
}

func (c *chainStub) LatestHeight(context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tip, nil
}

func (c *chainStub) FetchBlock(ctx context.Context, height uint64) (*model.Block, error) {
	c.mu.Lock()
	c.calls[height]++
	onFetch := c.onFetch
	err := c.fail[height]
	b, ok := c.blocks[height]
	c.mu.Unlock()

	if onFetch != nil {
		onFetch(height)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("block %d not found", height)
	}
	return b, nil
}

// nullData builds an OP_RETURN script carrying payload.
func nullData(t *testing.T, payload []byte) string {
	t.Helper()
	script, err := txscript.NewScriptBuilder().AddOp(txscript.OP_RETURN).AddData(payload).Script()
	require.NoError(t, err)
	return fmt.Sprintf("%x", script)
}

func payloadFor(height uint64, vout uint32, size int) []byte {
	prefix := fmt.Sprintf("block %d output %d ", height, vout)
	return []byte(prefix + strings.Repeat("x", size-len(prefix)))
}

func txID(height uint64, n int) string {
	return fmt.Sprintf("%060x%04x", height, n)
}

// makeBlock builds a block whose transactions each carry one null-data output
// of the given payload size at vout 1.
func makeBlock(t *testing.T, height uint64, sizes ...int) *model.Block {
	t.Helper()
	b := &model.Block{
		Height:  height,
		Hash:    fmt.Sprintf("%064x", height),
		Time:    testEpoch.Add(time.Duration(height) * 10 * time.Minute),
		MinedBy: "Foundry USA",
		Transactions: []model.Transaction{{
			TxID:    txID(height, 0),
			Inputs:  []model.Input{{Coinbase: true, Sequence: 0xffffffff}},
			Outputs: []model.Output{{Index: 0, Value: 312500000, ScriptHex: "0014" + strings.Repeat("11", 20)}},
			VSize:   150,
			Size:    150,
		}},
	}
	for i, size := range sizes {
		fee := int64(1000 * (i + 1))
		b.Transactions = append(b.Transactions, model.Transaction{
			TxID:   txID(height, i+1),
			Inputs: []model.Input{{TxID: strings.Repeat("ee", 32), Sequence: 0xffffffff}},
			Outputs: []model.Output{
				{Index: 0, Value: 546, ScriptHex: "0014" + strings.Repeat("22", 20)},
				{Index: 1, ScriptHex: nullData(t, payloadFor(height, 1, size))},
			},
			Fee:   &fee,
			VSize: 250,
			Size:  300,
		})
	}
	return b
}

type harness struct {
	chain   *chainStub
	store   *kv.Store
	files   *sidecar.Store
	clock   *clock.TestClock
	scanner *Scanner
}

func newHarness(t *testing.T, cfg Config, opts ...func(*Deps)) *harness {
	t.Helper()
	h := &harness{
		chain: newChainStub(),
		clock: clock.NewTestClock(testEpoch),
	}
	h.store = kv.New(tmdb.NewMemDB(), h.clock, zap.NewNop())
	t.Cleanup(func() { _ = h.store.Close() })

	files, err := sidecar.NewStore(afero.NewMemMapFs(), "/data")
	require.NoError(t, err)
	h.files = files

	if cfg.PersistDelay == 0 {
		cfg.PersistDelay = time.Millisecond
	}
	deps := Deps{
		Source:    h.chain,
		Store:     h.store,
		Persister: persister.New(h.store, zap.NewNop(), persister.WithSidecar(files)),
		Clock:     h.clock,
		Logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&deps)
	}
	s, err := New(deps, cfg)
	require.NoError(t, err)
	h.scanner = s
	return h
}

func (h *harness) checkpoint(t *testing.T, dir model.Direction) (uint64, bool) {
	t.Helper()
	cp, ok, err := h.store.Checkpoint(context.Background(), dir)
	require.NoError(t, err)
	return cp.Height, ok
}

func (h *harness) outputsAt(t *testing.T, height uint64) []model.EmbeddedOutput {
	t.Helper()
	outs, err := h.store.ListOutputs(context.Background(), outputFilter(height))
	require.NoError(t, err)
	return outs
}

func (h *harness) scanned(t *testing.T, height uint64) bool {
	t.Helper()
	ok, err := h.store.Scanned(context.Background(), height)
	require.NoError(t, err)
	return ok
}

func ptr[T any](v T) *T {
	return &v
}

var errTimeout = chain.Transient(fmt.Errorf("rpc timeout"))

func outputFilter(height uint64) repository.OutputFilter {
	return repository.OutputFilter{FromHeight: height, ToHeight: height}
}
