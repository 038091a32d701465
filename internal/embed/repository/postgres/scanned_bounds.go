package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

func (r *Repository) ScannedBounds(ctx context.Context) (lo, hi uint64, ok bool, err error) {
	start := time.Now()
	defer func() {
		r.observe("scanned_bounds", err, start)
	}()

	const query = `SELECT min(height) AS lo, max(height) AS hi FROM block_scans`

	var bounds struct {
		Lo sql.NullInt64 `db:"lo"`
		Hi sql.NullInt64 `db:"hi"`
	}
	if err = r.db.GetContext(ctx, &bounds, query); err != nil {
		return 0, 0, false, fmt.Errorf("query scanned bounds: %w", err)
	}
	if !bounds.Lo.Valid || !bounds.Hi.Valid {
		return 0, 0, false, nil
	}
	return uint64(bounds.Lo.Int64), uint64(bounds.Hi.Int64), true, nil
}
