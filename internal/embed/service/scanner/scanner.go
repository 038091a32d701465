// Package scanner drives block scanning: fetch, extract, price, persist and
// advance, one block at a time per direction.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/avast/retry-go"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/chain"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/checkpoint"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/extract"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/fee"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/persister"
	"github.com/google/uuid"
	"github.com/lightningnetwork/lnd/clock"
	"go.uber.org/zap"
)

// Deps are the collaborators of a Scanner. Metrics, Clock, Logger and
// BlockSignal are optional.
type Deps struct {
	Source    BlockSource
	Store     Store
	Persister Persister
	Extractor *extract.Extractor
	Metrics   Metrics
	Clock     clock.Clock
	Logger    *zap.Logger
	// BlockSignal wakes a following forward run before the poll interval.
	BlockSignal <-chan struct{}
}

// Scanner runs forward, backward and range pipelines over shared storage.
// Pipelines of one Scanner may run concurrently; writes to the same height
// are serialised.
type Scanner struct {
	source    BlockSource
	store     Store
	persister Persister
	extractor *extract.Extractor
	metrics   Metrics
	clock     clock.Clock
	logger    *zap.Logger
	signal    <-chan struct{}
	cfg       Config
	locks     *heightLocks

	mu     sync.Mutex
	states map[Mode]State
}

func New(deps Deps, cfg Config) (*Scanner, error) {
	if deps.Source == nil {
		return nil, errors.New("scanner block source is required")
	}
	if deps.Store == nil {
		return nil, errors.New("scanner store is required")
	}
	if deps.Persister == nil {
		return nil, errors.New("scanner persister is required")
	}
	if deps.Extractor == nil {
		deps.Extractor = extract.NewExtractor(extract.DefaultThreshold, deps.Logger, nil)
	}
	if deps.Clock == nil {
		deps.Clock = clock.NewDefaultClock()
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Scanner{
		source:    deps.Source,
		store:     deps.Store,
		persister: deps.Persister,
		extractor: deps.Extractor,
		metrics:   deps.Metrics,
		clock:     deps.Clock,
		logger:    deps.Logger.Named("scanner"),
		signal:    deps.BlockSignal,
		cfg:       cfg.withDefaults(),
		locks:     newHeightLocks(),
		states:    make(map[Mode]State),
	}, nil
}

// State reports where the last pipeline of mode is.
func (s *Scanner) State(mode Mode) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[mode]
}

type run struct {
	mode   Mode
	logger *zap.Logger
}

func (s *Scanner) newRun(mode Mode) *run {
	r := &run{
		mode:   mode,
		logger: s.logger.With(zap.String("mode", string(mode)), zap.String("run_id", uuid.NewString())),
	}
	s.setState(r, StateIdle)
	return r
}

func (s *Scanner) setState(r *run, state State) {
	s.mu.Lock()
	s.states[r.mode] = state
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.SetState(r.mode, state)
	}
}

// stop records the terminal state and reports why the pipeline ended.
func (s *Scanner) stop(r *run, err error) error {
	s.setState(r, StateStopped)
	switch {
	case err == nil:
		r.logger.Info("scan finished")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		r.logger.Info("scan stopped", zap.Error(err))
	default:
		r.logger.Error("scan halted", zap.Error(err))
	}
	return err
}

// processBlock persists every qualifying output of block and marks the height
// scanned. It ignores cancellation of ctx so a stop never splits a block.
func (s *Scanner) processBlock(ctx context.Context, r *run, block *model.Block) (found int, err error) {
	started := s.clock.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveBlock(r.mode, err, found, started)
		}
	}()
	ctx = context.WithoutCancel(ctx)

	unlock := s.locks.Lock(block.Height)
	defer unlock()

	s.setState(r, StateExtracting)
	outputs := s.enrich(block)

	s.setState(r, StatePersisting)
	for _, out := range outputs {
		outcome, err := s.persist(ctx, r, out)
		if errors.Is(err, persister.ErrInvalidOutput) {
			malformed := &chain.MalformedDataError{TxID: out.TxID, Vout: out.Vout, Err: err}
			r.logger.Warn("skipping invalid output", zap.Uint64("height", block.Height), zap.Error(malformed))
			continue
		}
		if err != nil {
			return found, err
		}
		found++
		if s.metrics != nil {
			s.metrics.ObserveOutcome(r.mode, outcome)
		}
		if outcome == model.OutcomePersisted {
			fields := []zap.Field{
				zap.Uint64("height", block.Height),
				zap.String("txid", out.TxID),
				zap.Uint32("vout", out.Vout),
				zap.Int("size", out.PayloadSize),
				zap.String("type", string(out.PayloadType)),
			}
			if out.Fee != nil {
				fields = append(fields, zap.Stringer("fee", btcutil.Amount(*out.Fee)))
			}
			r.logger.Info("recorded embedded output", fields...)
		}
	}

	scan := model.BlockScan{
		Height:       block.Height,
		Hash:         block.Hash,
		Time:         block.Time,
		TxCount:      len(block.Transactions),
		Found:        found,
		MinedBy:      block.MinedBy,
		CoinbaseText: block.CoinbaseText,
		ScannedAt:    s.clock.Now().UTC(),
	}
	if err := s.retryPersistence(ctx, r, "mark scanned", block.Height, func() error {
		return s.store.MarkScanned(ctx, scan)
	}); err != nil {
		return found, err
	}
	return found, nil
}

// enrich turns the qualifying outputs of block into records.
func (s *Scanner) enrich(block *model.Block) []model.EmbeddedOutput {
	var outputs []model.EmbeddedOutput
	discovered := s.clock.Now().UTC()
	for _, tx := range block.Transactions {
		for c := range s.extractor.Extract(tx) {
			cls := extract.Classify(c.Payload)
			m := fee.Compute(tx.Fee, tx.VSize, len(c.Payload))
			outputs = append(outputs, model.EmbeddedOutput{
				TxID:         tx.TxID,
				Vout:         c.Vout,
				BlockHeight:  block.Height,
				BlockHash:    block.Hash,
				BlockTime:    block.Time,
				MinedBy:      block.MinedBy,
				Payload:      c.Payload,
				PayloadSize:  len(c.Payload),
				PayloadType:  cls.Type,
				MIMEType:     cls.MIME,
				Extension:    cls.Extension,
				Fee:          tx.Fee,
				TxSize:       tx.VSize,
				FeeRate:      m.FeeRate,
				CostPerByte:  m.CostPerByte,
				InputCount:   len(tx.Inputs),
				OutputCount:  len(tx.Outputs),
				DiscoveredAt: discovered,
			})
		}
	}
	return outputs
}

func (s *Scanner) persist(ctx context.Context, r *run, out model.EmbeddedOutput) (model.Outcome, error) {
	var outcome model.Outcome
	err := s.retryPersistence(ctx, r, "persist output", out.BlockHeight, func() error {
		var err error
		outcome, err = s.persister.Persist(ctx, out)
		return err
	})
	return outcome, err
}

// advance moves the direction checkpoint. A gap is never retried.
func (s *Scanner) advance(ctx context.Context, r *run, dir model.Direction, height uint64) error {
	s.setState(r, StateAdvancing)
	ctx = context.WithoutCancel(ctx)
	err := s.retryPersistence(ctx, r, "advance checkpoint", height, func() error {
		return s.store.Advance(ctx, dir, height)
	})
	if err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.SetCheckpoint(dir, height)
	}
	return nil
}

// retryPersistence retries storage calls with a short fixed delay. Exhausted
// retries become *chain.PersistenceError. Invalid records and checkpoint gaps
// are returned unchanged on the first attempt.
func (s *Scanner) retryPersistence(ctx context.Context, r *run, op string, height uint64, fn func() error) error {
	err := retry.Do(fn,
		retry.Context(ctx),
		retry.Attempts(s.cfg.PersistAttempts),
		retry.Delay(s.cfg.PersistDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			r.logger.Warn("retrying storage call",
				zap.String("operation", op),
				zap.Uint64("height", height),
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
	)
	if err == nil || !retryable(err) {
		return err
	}
	return &chain.PersistenceError{Height: height, Op: op, Err: err}
}

func retryable(err error) bool {
	var gap *checkpoint.GapError
	return !errors.Is(err, persister.ErrInvalidOutput) && !errors.As(err, &gap)
}

// Reset deletes every record of height and clears its completion marker so a
// later range scan processes it again. Direction checkpoints are not moved.
func (s *Scanner) Reset(ctx context.Context, height uint64) (int, error) {
	unlock := s.locks.Lock(height)
	defer unlock()

	ctx = context.WithoutCancel(ctx)
	// The marker goes first: a height left unmarked with stale records is
	// repaired by the next scan, a marked height with no records is not.
	if err := s.store.Reset(ctx, height); err != nil {
		return 0, fmt.Errorf("reset marker at %d: %w", height, err)
	}
	deleted, err := s.persister.DeleteForHeight(ctx, height)
	if err != nil {
		return deleted, fmt.Errorf("delete records at %d: %w", height, err)
	}
	s.logger.Info("height reset", zap.Uint64("height", height), zap.Int("deleted", deleted))
	return deleted, nil
}
