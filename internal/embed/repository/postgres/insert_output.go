package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// InsertOutput stores out unless (txid, vout) already exists. inserted is
// false for an existing record.
func (r *Repository) InsertOutput(ctx context.Context, out model.EmbeddedOutput) (inserted bool, err error) {
	start := time.Now()
	defer func() {
		r.observe("insert_output", err, start)
	}()

	const query = `
INSERT INTO embedded_outputs (` + outputColumns + `)
VALUES (:txid, :vout, :block_height, :block_hash, :block_time, :mined_by, :data_size,
	:payload_type, :mime_type, :extension, :raw_data, :tx_fee, :tx_size, :fee_rate, :cost_per_byte,
	:tx_input_count, :tx_output_count, :discovered_at)
ON CONFLICT (txid, vout) DO NOTHING`

	res, err := r.db.NamedExecContext(ctx, query, rowFromOutput(out))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return false, nil
		}
		return false, fmt.Errorf("insert output %s:%d: %w", out.TxID, out.Vout, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected == 1, nil
}
