package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/checkpoint"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
)

// Advance moves a direction checkpoint inside a transaction holding the
// checkpoint row lock, so concurrent advances cannot both pass the gap check.
func (r *Repository) Advance(ctx context.Context, dir model.Direction, height uint64) (err error) {
	start := time.Now()
	defer func() {
		r.observe("advance", err, start)
	}()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin advance: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const lockQuery = `SELECT height FROM scan_checkpoints WHERE direction = $1 FOR UPDATE`
	const upsertQuery = `
INSERT INTO scan_checkpoints (direction, height, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (direction) DO UPDATE SET height = EXCLUDED.height, updated_at = EXCLUDED.updated_at`

	var current int64
	hasCurrent := true
	if err = tx.GetContext(ctx, &current, lockQuery, string(dir)); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("lock checkpoint %s: %w", dir, err)
		}
		hasCurrent = false
	}

	if err = checkpoint.CheckAdvance(dir, uint64(current), hasCurrent, height); err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, upsertQuery, string(dir), int64(height), r.clock.Now().UTC()); err != nil {
		return fmt.Errorf("update checkpoint %s: %w", dir, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit advance: %w", err)
	}
	return nil
}
