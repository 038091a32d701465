package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/repository"
	"github.com/goodnatureofminers/opreturn-indexer/pkg/safe"
)

// ListOutputs returns records ordered by height, txid and vout.
func (r *Repository) ListOutputs(ctx context.Context, filter repository.OutputFilter) (outputs []model.EmbeddedOutput, err error) {
	start := time.Now()
	defer func() {
		r.observe("list_outputs", err, start)
	}()

	var (
		conds []string
		args  []any
	)
	if filter.FromHeight > 0 {
		from, err := safe.Int64(filter.FromHeight)
		if err != nil {
			return nil, fmt.Errorf("from height: %w", err)
		}
		args = append(args, from)
		conds = append(conds, fmt.Sprintf("block_height >= $%d", len(args)))
	}
	if filter.ToHeight > 0 {
		to, err := safe.Int64(filter.ToHeight)
		if err != nil {
			return nil, fmt.Errorf("to height: %w", err)
		}
		args = append(args, to)
		conds = append(conds, fmt.Sprintf("block_height <= $%d", len(args)))
	}
	if filter.PayloadType != "" {
		args = append(args, string(filter.PayloadType))
		conds = append(conds, fmt.Sprintf("payload_type = $%d", len(args)))
	}

	args = append(args, filter.EffectiveLimit(), filter.Offset)

	var b strings.Builder
	b.WriteString(`SELECT ` + outputColumns + ` FROM embedded_outputs`)
	if len(conds) > 0 {
		b.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	fmt.Fprintf(&b, " ORDER BY block_height, txid, vout LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	var rows []outputRow
	if err = r.db.SelectContext(ctx, &rows, b.String(), args...); err != nil {
		return nil, fmt.Errorf("query outputs: %w", err)
	}
	outputs = make([]model.EmbeddedOutput, 0, len(rows))
	for _, row := range rows {
		outputs = append(outputs, row.toModel())
	}
	return outputs, nil
}
