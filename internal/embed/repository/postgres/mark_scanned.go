package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
)

// MarkScanned records a completed height. Marking twice refreshes the row.
func (r *Repository) MarkScanned(ctx context.Context, scan model.BlockScan) (err error) {
	start := time.Now()
	defer func() {
		r.observe("mark_scanned", err, start)
	}()

	const query = `
INSERT INTO block_scans (height, block_hash, block_time, total_transactions, outputs_found, mined_by, coinbase_text, scanned_at)
VALUES (:height, :block_hash, :block_time, :total_transactions, :outputs_found, :mined_by, :coinbase_text, :scanned_at)
ON CONFLICT (height) DO UPDATE SET
	block_hash = EXCLUDED.block_hash,
	block_time = EXCLUDED.block_time,
	total_transactions = EXCLUDED.total_transactions,
	outputs_found = EXCLUDED.outputs_found,
	mined_by = EXCLUDED.mined_by,
	coinbase_text = EXCLUDED.coinbase_text,
	scanned_at = EXCLUDED.scanned_at`

	if scan.ScannedAt.IsZero() {
		scan.ScannedAt = r.clock.Now()
	}
	scan.ScannedAt = scan.ScannedAt.UTC()
	scan.Time = scan.Time.UTC()

	if _, err = r.db.NamedExecContext(ctx, query, scan); err != nil {
		return fmt.Errorf("mark height %d scanned: %w", scan.Height, err)
	}
	return nil
}
