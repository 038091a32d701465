package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
)

// TypeStat aggregates mirrored outputs of one payload type.
type TypeStat struct {
	PayloadType model.PayloadType
	Outputs     uint64
	Bytes       uint64
	AvgFeeRate  float64
}

// PayloadTypeStats groups outputs in [from, to] by payload type, largest first.
func (r *Repository) PayloadTypeStats(ctx context.Context, from, to uint64) (stats []TypeStat, err error) {
	start := time.Now()
	defer func() {
		r.observe("payload_type_stats", err, start)
	}()

	const query = `
SELECT
	payload_type,
	count() AS outputs,
	sum(data_size) AS bytes,
	coalesce(avg(fee_rate), 0) AS avg_fee_rate
FROM opreturn_outputs FINAL
WHERE block_height BETWEEN ? AND ?
GROUP BY payload_type
ORDER BY outputs DESC`

	rows, err := r.conn.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("query payload type stats: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		var (
			payloadType string
			stat        TypeStat
		)
		if err = rows.Scan(&payloadType, &stat.Outputs, &stat.Bytes, &stat.AvgFeeRate); err != nil {
			return nil, fmt.Errorf("scan payload type stats: %w", err)
		}
		stat.PayloadType = model.PayloadType(payloadType)
		stats = append(stats, stat)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payload type stats: %w", err)
	}
	return stats, nil
}
