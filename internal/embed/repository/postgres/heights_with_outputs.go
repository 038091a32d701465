package postgres

import (
	"context"
	"fmt"
	"time"
)

// HeightsWithOutputs lists every height holding at least one record, ascending.
func (r *Repository) HeightsWithOutputs(ctx context.Context) (heights []uint64, err error) {
	start := time.Now()
	defer func() {
		r.observe("heights_with_outputs", err, start)
	}()

	const query = `SELECT DISTINCT block_height FROM embedded_outputs ORDER BY block_height`

	var raw []int64
	if err = r.db.SelectContext(ctx, &raw, query); err != nil {
		return nil, fmt.Errorf("query heights with outputs: %w", err)
	}
	heights = make([]uint64, 0, len(raw))
	for _, h := range raw {
		heights = append(heights, uint64(h))
	}
	return heights, nil
}
