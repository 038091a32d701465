package clickhouse

import (
	"context"
	"fmt"
	"time"
)

// DeleteOutputs removes the mirrored rows of one block.
func (r *Repository) DeleteOutputs(ctx context.Context, height uint64) (err error) {
	start := time.Now()
	defer func() {
		r.observe("delete_outputs", err, start)
	}()

	const query = `DELETE FROM opreturn_outputs WHERE block_height = ?`

	if err = r.conn.Exec(ctx, query, height); err != nil {
		return fmt.Errorf("delete outputs at %d: %w", height, err)
	}
	return nil
}
