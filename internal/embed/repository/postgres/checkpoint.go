package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
)

type checkpointRow struct {
	Direction string    `db:"direction"`
	Height    int64     `db:"height"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *Repository) Checkpoint(ctx context.Context, dir model.Direction) (cp model.Checkpoint, ok bool, err error) {
	start := time.Now()
	defer func() {
		r.observe("checkpoint", err, start)
	}()

	const query = `SELECT direction, height, updated_at FROM scan_checkpoints WHERE direction = $1`

	var row checkpointRow
	if err = r.db.GetContext(ctx, &row, query, string(dir)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Checkpoint{}, false, nil
		}
		return model.Checkpoint{}, false, fmt.Errorf("query checkpoint %s: %w", dir, err)
	}
	return model.Checkpoint{
		Direction: model.Direction(row.Direction),
		Height:    uint64(row.Height),
		UpdatedAt: row.UpdatedAt.UTC(),
	}, true, nil
}
