package postgres

import (
	"context"
	"fmt"
	"time"
)

func (r *Repository) Scanned(ctx context.Context, height uint64) (scanned bool, err error) {
	start := time.Now()
	defer func() {
		r.observe("scanned", err, start)
	}()

	const query = `SELECT EXISTS (SELECT 1 FROM block_scans WHERE height = $1)`

	if err = r.db.GetContext(ctx, &scanned, query, int64(height)); err != nil {
		return false, fmt.Errorf("query scanned %d: %w", height, err)
	}
	return scanned, nil
}
