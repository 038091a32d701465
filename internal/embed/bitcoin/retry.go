package bitcoin

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/chain"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
	"go.uber.org/zap"
)

// Policy bounds fetch retries.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultPolicy retries five times starting at one second.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 5, BaseDelay: time.Second, MaxDelay: 30 * time.Second}
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.BaseDelay
	exp.MaxInterval = p.MaxDelay
	exp.MaxElapsedTime = 0

	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(attempts-1)), ctx)
}

// RetryingSource retries transient failures of another source with
// exponential backoff. Errors not marked chain.ErrTransientFetch fail at once.
type RetryingSource struct {
	source chain.BlockSource
	policy Policy
	logger *zap.Logger
}

var _ chain.BlockSource = (*RetryingSource)(nil)

func NewRetryingSource(source chain.BlockSource, policy Policy, logger *zap.Logger) *RetryingSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetryingSource{source: source, policy: policy, logger: logger}
}

func (s *RetryingSource) LatestHeight(ctx context.Context) (uint64, error) {
	height, _, err := retry(ctx, s, "latest_height", 0, func() (uint64, error) {
		return s.source.LatestHeight(ctx)
	})
	return height, err
}

// FetchBlock returns *chain.FetchError once the policy is exhausted.
func (s *RetryingSource) FetchBlock(ctx context.Context, height uint64) (*model.Block, error) {
	block, attempts, err := retry(ctx, s, "fetch_block", height, func() (*model.Block, error) {
		return s.source.FetchBlock(ctx, height)
	})
	if err != nil && errors.Is(err, chain.ErrTransientFetch) {
		return nil, &chain.FetchError{Height: height, Attempts: attempts, Err: err}
	}
	return block, err
}

func retry[T any](ctx context.Context, s *RetryingSource, op string, height uint64, fn func() (T, error)) (T, int, error) {
	attempts := 0
	operation := func() (T, error) {
		attempts++
		v, err := fn()
		if err != nil && !errors.Is(err, chain.ErrTransientFetch) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}
	notify := func(err error, next time.Duration) {
		s.logger.Warn("retrying block source call",
			zap.String("operation", op),
			zap.Uint64("height", height),
			zap.Int("attempt", attempts),
			zap.Duration("next_try", next),
			zap.Error(err),
		)
	}
	v, err := backoff.RetryNotifyWithData(operation, s.policy.backOff(ctx), notify)
	return v, attempts, err
}
