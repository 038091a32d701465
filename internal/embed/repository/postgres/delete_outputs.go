package postgres

import (
	"context"
	"fmt"
	"time"
)

// DeleteOutputs removes every record of a height and returns how many went.
func (r *Repository) DeleteOutputs(ctx context.Context, height uint64) (deleted int, err error) {
	start := time.Now()
	defer func() {
		r.observe("delete_outputs", err, start)
	}()

	const query = `DELETE FROM embedded_outputs WHERE block_height = $1`

	res, err := r.db.ExecContext(ctx, query, int64(height))
	if err != nil {
		return 0, fmt.Errorf("delete outputs at height %d: %w", height, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(affected), nil
}
