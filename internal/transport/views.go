package transport

import (
	"encoding/hex"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/repository/clickhouse"
)

type outputView struct {
	TransactionID string    `json:"transaction_id"`
	Vout          uint32    `json:"vout_index"`
	BlockNumber   uint64    `json:"block_number"`
	BlockHash     string    `json:"block_hash"`
	BlockTime     time.Time `json:"block_time"`
	MinedBy       string    `json:"mined_by"`
	DataSize      int       `json:"data_size"`
	FileType      string    `json:"file_type"`
	MIMEType      string    `json:"mime_type,omitempty"`
	Extension     string    `json:"file_extension,omitempty"`
	RawDataHex    string    `json:"raw_data_hex,omitempty"`
	FeeSats       *int64    `json:"transaction_fee_sats"`
	SizeVBytes    int64     `json:"transaction_size_vbytes"`
	FeeRate       *float64  `json:"fee_rate_sats_per_vbyte"`
	CostPerByte   *float64  `json:"cost_per_byte_of_data"`
	Inputs        int       `json:"tx_inputs"`
	Outputs       int       `json:"tx_outputs"`
	DiscoveredAt  time.Time `json:"discovered_at"`
}

func newOutputView(out model.EmbeddedOutput, withPayload bool) outputView {
	v := outputView{
		TransactionID: out.TxID,
		Vout:          out.Vout,
		BlockNumber:   out.BlockHeight,
		BlockHash:     out.BlockHash,
		BlockTime:     out.BlockTime,
		MinedBy:       out.MinedBy,
		DataSize:      out.PayloadSize,
		FileType:      string(out.PayloadType),
		MIMEType:      out.MIMEType,
		Extension:     out.Extension,
		FeeSats:       out.Fee,
		SizeVBytes:    out.TxSize,
		FeeRate:       out.FeeRate,
		CostPerByte:   out.CostPerByte,
		Inputs:        out.InputCount,
		Outputs:       out.OutputCount,
		DiscoveredAt:  out.DiscoveredAt,
	}
	if withPayload {
		v.RawDataHex = hex.EncodeToString(out.Payload)
	}
	return v
}

type listView struct {
	Outputs []outputView `json:"outputs"`
	Limit   int          `json:"limit"`
	Offset  int          `json:"offset"`
}

type statsView struct {
	BlocksScanned     uint64  `json:"blocks_scanned"`
	OutputsFound      uint64  `json:"outputs_found"`
	FirstHeight       uint64  `json:"first_height"`
	LastHeight        uint64  `json:"last_height"`
	AvgPerBlock       float64 `json:"avg_per_block"`
	TotalPayloadBytes uint64  `json:"total_payload_bytes"`
	TotalFeesSats     int64   `json:"total_fees_sats"`
	TotalFees         string  `json:"total_fees"`
}

func newStatsView(s model.Stats) statsView {
	return statsView{
		BlocksScanned:     s.BlocksScanned,
		OutputsFound:      s.OutputsFound,
		FirstHeight:       s.FirstHeight,
		LastHeight:        s.LastHeight,
		AvgPerBlock:       s.AvgPerBlock(),
		TotalPayloadBytes: s.TotalPayloadBytes,
		TotalFeesSats:     s.TotalFees,
		TotalFees:         btcutil.Amount(s.TotalFees).String(),
	}
}

type typeStatView struct {
	FileType   string  `json:"file_type"`
	Outputs    uint64  `json:"outputs"`
	Bytes      uint64  `json:"bytes"`
	AvgFeeRate float64 `json:"avg_fee_rate_sats_per_vbyte"`
}

func newTypeStatViews(stats []clickhouse.TypeStat) []typeStatView {
	views := make([]typeStatView, 0, len(stats))
	for _, s := range stats {
		views = append(views, typeStatView{
			FileType:   string(s.PayloadType),
			Outputs:    s.Outputs,
			Bytes:      s.Bytes,
			AvgFeeRate: s.AvgFeeRate,
		})
	}
	return views
}

type errorView struct {
	Error string `json:"error"`
}
