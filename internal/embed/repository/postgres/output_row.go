package postgres

import (
	"time"

	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
)

// MaxInlinePayload is the largest payload stored in raw_data. Larger payloads
// live in the sidecar files only.
const MaxInlinePayload = 32767

type outputRow struct {
	TxID          string    `db:"txid"`
	Vout          int64     `db:"vout"`
	BlockHeight   int64     `db:"block_height"`
	BlockHash     string    `db:"block_hash"`
	BlockTime     time.Time `db:"block_time"`
	MinedBy       string    `db:"mined_by"`
	DataSize      int       `db:"data_size"`
	PayloadType   string    `db:"payload_type"`
	MIMEType      string    `db:"mime_type"`
	Extension     string    `db:"extension"`
	RawData       []byte    `db:"raw_data"`
	TxFee         *int64    `db:"tx_fee"`
	TxSize        int64     `db:"tx_size"`
	FeeRate       *float64  `db:"fee_rate"`
	CostPerByte   *float64  `db:"cost_per_byte"`
	TxInputCount  int       `db:"tx_input_count"`
	TxOutputCount int       `db:"tx_output_count"`
	DiscoveredAt  time.Time `db:"discovered_at"`
}

const outputColumns = `txid, vout, block_height, block_hash, block_time, mined_by, data_size,
	payload_type, mime_type, extension, raw_data, tx_fee, tx_size, fee_rate, cost_per_byte,
	tx_input_count, tx_output_count, discovered_at`

func rowFromOutput(out model.EmbeddedOutput) outputRow {
	row := outputRow{
		TxID:          out.TxID,
		Vout:          int64(out.Vout),
		BlockHeight:   int64(out.BlockHeight),
		BlockHash:     out.BlockHash,
		BlockTime:     out.BlockTime.UTC(),
		MinedBy:       out.MinedBy,
		DataSize:      out.PayloadSize,
		PayloadType:   string(out.PayloadType),
		MIMEType:      out.MIMEType,
		Extension:     out.Extension,
		TxFee:         out.Fee,
		TxSize:        out.TxSize,
		FeeRate:       out.FeeRate,
		CostPerByte:   out.CostPerByte,
		TxInputCount:  out.InputCount,
		TxOutputCount: out.OutputCount,
		DiscoveredAt:  out.DiscoveredAt.UTC(),
	}
	if len(out.Payload) <= MaxInlinePayload {
		row.RawData = out.Payload
	}
	return row
}

func (row outputRow) toModel() model.EmbeddedOutput {
	return model.EmbeddedOutput{
		TxID:         row.TxID,
		Vout:         uint32(row.Vout),
		BlockHeight:  uint64(row.BlockHeight),
		BlockHash:    row.BlockHash,
		BlockTime:    row.BlockTime.UTC(),
		MinedBy:      row.MinedBy,
		Payload:      row.RawData,
		PayloadSize:  row.DataSize,
		PayloadType:  model.PayloadType(row.PayloadType),
		MIMEType:     row.MIMEType,
		Extension:    row.Extension,
		Fee:          row.TxFee,
		TxSize:       row.TxSize,
		FeeRate:      row.FeeRate,
		CostPerByte:  row.CostPerByte,
		InputCount:   row.TxInputCount,
		OutputCount:  row.TxOutputCount,
		DiscoveredAt: row.DiscoveredAt.UTC(),
	}
}
