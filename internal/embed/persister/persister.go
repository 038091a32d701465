// Package persister durably records embedded outputs exactly once.
package persister

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/repository"
	"go.uber.org/zap"
)

// ErrInvalidOutput marks records rejected before any write. Retrying them is
// pointless.
var ErrInvalidOutput = errors.New("invalid embedded output")

// Persister writes the sidecar files, then the row, then offers the record to
// the mirror. The row is the commit point: a record counts as stored once its
// row exists.
type Persister struct {
	store    repository.OutputStore
	sidecar  Sidecar
	mirror   Mirror
	metrics  Metrics
	validate *validator.Validate
	logger   *zap.Logger
}

// Option configures optional collaborators.
type Option func(*Persister)

// WithSidecar enables the file store.
func WithSidecar(s Sidecar) Option {
	return func(p *Persister) {
		p.sidecar = s
	}
}

// WithMirror enables the analytics mirror.
func WithMirror(m Mirror) Option {
	return func(p *Persister) {
		p.mirror = m
	}
}

func WithMetrics(m Metrics) Option {
	return func(p *Persister) {
		p.metrics = m
	}
}

func New(store repository.OutputStore, logger *zap.Logger, opts ...Option) *Persister {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Persister{
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.Named("persister"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Persist stores out unless a record with the same (txid, vout) exists.
// Repeating a call with the same output is harmless and reports
// OutcomeDuplicate.
func (p *Persister) Persist(ctx context.Context, out model.EmbeddedOutput) (outcome model.Outcome, err error) {
	defer func() {
		if p.metrics != nil {
			p.metrics.ObservePersist(outcome, out.PayloadType, err)
		}
	}()

	if err := p.check(out); err != nil {
		return model.OutcomeDuplicate, err
	}

	exists, err := p.store.OutputExists(ctx, out.TxID, out.Vout)
	if err != nil {
		return model.OutcomeDuplicate, fmt.Errorf("check existing output: %w", err)
	}
	if exists {
		if err := p.repairSidecar(out); err != nil {
			return model.OutcomeDuplicate, err
		}
		return model.OutcomeDuplicate, nil
	}

	if p.sidecar != nil {
		if err := p.sidecar.Write(out); err != nil {
			return model.OutcomeDuplicate, fmt.Errorf("write sidecar files: %w", err)
		}
	}

	inserted, err := p.store.InsertOutput(ctx, out)
	if err != nil {
		return model.OutcomeDuplicate, fmt.Errorf("insert output: %w", err)
	}
	if !inserted {
		p.logger.Debug("lost insert race",
			zap.String("txid", out.TxID), zap.Uint32("vout", out.Vout))
		return model.OutcomeDuplicate, nil
	}

	if p.mirror != nil {
		p.mirror.Offer(out)
	}
	return model.OutcomePersisted, nil
}

// DeleteForHeight removes every record of height from all stores and returns
// the number of rows deleted.
func (p *Persister) DeleteForHeight(ctx context.Context, height uint64) (int, error) {
	deleted, err := p.store.DeleteOutputs(ctx, height)
	if err != nil {
		return 0, fmt.Errorf("delete outputs: %w", err)
	}
	if p.sidecar != nil {
		if err := p.sidecar.DeleteHeight(height); err != nil {
			return deleted, fmt.Errorf("delete sidecar files: %w", err)
		}
	}
	if p.mirror != nil {
		if err := p.mirror.DeleteHeight(ctx, height); err != nil {
			p.logger.Warn("delete mirrored outputs", zap.Uint64("height", height), zap.Error(err))
		}
	}
	return deleted, nil
}

func (p *Persister) check(out model.EmbeddedOutput) error {
	if err := p.validate.Struct(out); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s:%d field %s failed %q", ErrInvalidOutput, out.TxID, out.Vout, verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidOutput, err)
	}
	if out.PayloadSize != len(out.Payload) {
		return fmt.Errorf("%w: %s:%d size %d does not match payload length %d",
			ErrInvalidOutput, out.TxID, out.Vout, out.PayloadSize, len(out.Payload))
	}
	return nil
}

func (p *Persister) repairSidecar(out model.EmbeddedOutput) error {
	if p.sidecar == nil {
		return nil
	}
	ok, err := p.sidecar.Exists(out.BlockHeight, out.TxID, out.Vout)
	if err != nil {
		return fmt.Errorf("check sidecar files: %w", err)
	}
	if ok {
		return nil
	}
	p.logger.Info("restoring missing sidecar files",
		zap.String("txid", out.TxID), zap.Uint32("vout", out.Vout))
	if err := p.sidecar.Write(out); err != nil {
		return fmt.Errorf("restore sidecar files: %w", err)
	}
	return nil
}
