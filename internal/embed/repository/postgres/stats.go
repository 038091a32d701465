package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
)

// Stats summarises scan progress and stored records.
func (r *Repository) Stats(ctx context.Context) (stats model.Stats, err error) {
	start := time.Now()
	defer func() {
		r.observe("stats", err, start)
	}()

	const scansQuery = `
SELECT count(*) AS blocks, coalesce(min(height), 0) AS first_height, coalesce(max(height), 0) AS last_height
FROM block_scans`
	const outputsQuery = `
SELECT count(*) AS outputs, coalesce(sum(data_size), 0)::BIGINT AS bytes, coalesce(sum(tx_fee), 0)::BIGINT AS fees
FROM embedded_outputs`

	var scans struct {
		Blocks int64 `db:"blocks"`
		First  int64 `db:"first_height"`
		Last   int64 `db:"last_height"`
	}
	if err = r.db.GetContext(ctx, &scans, scansQuery); err != nil {
		return model.Stats{}, fmt.Errorf("query scan stats: %w", err)
	}

	var outputs struct {
		Outputs int64 `db:"outputs"`
		Bytes   int64 `db:"bytes"`
		Fees    int64 `db:"fees"`
	}
	if err = r.db.GetContext(ctx, &outputs, outputsQuery); err != nil {
		return model.Stats{}, fmt.Errorf("query output stats: %w", err)
	}

	return model.Stats{
		BlocksScanned:     uint64(scans.Blocks),
		OutputsFound:      uint64(outputs.Outputs),
		FirstHeight:       uint64(scans.First),
		LastHeight:        uint64(scans.Last),
		TotalPayloadBytes: uint64(outputs.Bytes),
		TotalFees:         outputs.Fees,
	}, nil
}
