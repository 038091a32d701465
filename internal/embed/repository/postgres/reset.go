package postgres

import (
	"context"
	"fmt"
	"time"
)

// Reset drops the completion marker of a height. Checkpoints are untouched.
func (r *Repository) Reset(ctx context.Context, height uint64) (err error) {
	start := time.Now()
	defer func() {
		r.observe("reset", err, start)
	}()

	const query = `DELETE FROM block_scans WHERE height = $1`

	if _, err = r.db.ExecContext(ctx, query, int64(height)); err != nil {
		return fmt.Errorf("reset height %d: %w", height, err)
	}
	return nil
}
