// Package postgres stores embedded outputs and scan progress in PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/repository"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the pgx database/sql driver
	"github.com/jmoiron/sqlx"
	"github.com/lightningnetwork/lnd/clock"
)

const driverName = "pgx"

type (
	Metrics interface {
		Observe(operation string, err error, started time.Time)
	}
)

var _ repository.Store = (*Repository)(nil)

type Repository struct {
	db      *sqlx.DB
	metrics Metrics
	clock   clock.Clock
}

// NewRepository connects to dsn and verifies the connection.
func NewRepository(ctx context.Context, dsn string, metrics Metrics, clk clock.Clock) (*Repository, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	db, err := sqlx.ConnectContext(ctx, driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if clk == nil {
		clk = clock.NewDefaultClock()
	}
	return &Repository{db: db, metrics: metrics, clock: clk}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) observe(operation string, err error, started time.Time) {
	if r.metrics != nil {
		r.metrics.Observe(operation, err, started)
	}
}
