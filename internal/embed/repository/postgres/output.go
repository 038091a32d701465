package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/repository"
)

// Output loads one record. Payload is nil when it was too large to store inline.
func (r *Repository) Output(ctx context.Context, txid string, vout uint32) (out model.EmbeddedOutput, err error) {
	start := time.Now()
	defer func() {
		r.observe("output", err, start)
	}()

	const query = `SELECT ` + outputColumns + ` FROM embedded_outputs WHERE txid = $1 AND vout = $2`

	var row outputRow
	if err = r.db.GetContext(ctx, &row, query, txid, int64(vout)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.EmbeddedOutput{}, fmt.Errorf("output %s:%d: %w", txid, vout, repository.ErrNotFound)
		}
		return model.EmbeddedOutput{}, fmt.Errorf("query output: %w", err)
	}
	return row.toModel(), nil
}
