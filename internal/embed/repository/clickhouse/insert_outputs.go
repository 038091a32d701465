package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
	"github.com/goodnatureofminers/opreturn-indexer/pkg/safe"
)

// InsertOutputs appends a batch of outputs. Re-sent rows collapse on merge.
func (r *Repository) InsertOutputs(ctx context.Context, outputs []model.EmbeddedOutput) (err error) {
	start := time.Now()
	defer func() {
		r.observe("insert_outputs", err, start)
	}()

	if len(outputs) == 0 {
		return nil
	}

	const query = `
INSERT INTO opreturn_outputs (
	txid,
	vout,
	block_height,
	block_hash,
	block_time,
	mined_by,
	data_size,
	payload_type,
	mime_type,
	file_extension,
	fee_sats,
	tx_vsize,
	fee_rate,
	cost_per_byte,
	input_count,
	output_count,
	discovered_at
) VALUES`

	batch, err := r.conn.PrepareBatch(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare outputs batch: %w", err)
	}

	for _, out := range outputs {
		sizes, convErr := narrowSizes(out)
		if convErr != nil {
			err = fmt.Errorf("output %s:%d: %w", out.TxID, out.Vout, convErr)
			return err
		}
		if err = batch.Append(
			out.TxID,
			out.Vout,
			out.BlockHeight,
			out.BlockHash,
			out.BlockTime,
			out.MinedBy,
			sizes[0],
			string(out.PayloadType),
			out.MIMEType,
			out.Extension,
			out.Fee,
			sizes[1],
			out.FeeRate,
			out.CostPerByte,
			sizes[2],
			sizes[3],
			out.DiscoveredAt,
		); err != nil {
			return fmt.Errorf("append output: %w", err)
		}
	}

	if err = batch.Send(); err != nil {
		return fmt.Errorf("insert outputs: %w", err)
	}
	return nil
}

// narrowSizes converts data size, vsize, input and output counts to the
// UInt32 columns.
func narrowSizes(out model.EmbeddedOutput) ([4]uint32, error) {
	var sizes [4]uint32
	for i, v := range []int64{int64(out.PayloadSize), out.TxSize, int64(out.InputCount), int64(out.OutputCount)} {
		n, err := safe.Uint32(v)
		if err != nil {
			return sizes, err
		}
		sizes[i] = n
	}
	return sizes, nil
}
