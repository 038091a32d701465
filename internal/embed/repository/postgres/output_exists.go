package postgres

import (
	"context"
	"fmt"
	"time"
)

func (r *Repository) OutputExists(ctx context.Context, txid string, vout uint32) (exists bool, err error) {
	start := time.Now()
	defer func() {
		r.observe("output_exists", err, start)
	}()

	const query = `SELECT EXISTS (SELECT 1 FROM embedded_outputs WHERE txid = $1 AND vout = $2)`

	if err = r.db.GetContext(ctx, &exists, query, txid, int64(vout)); err != nil {
		return false, fmt.Errorf("query output exists: %w", err)
	}
	return exists, nil
}
