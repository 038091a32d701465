// Package bitcoin implements the block source on top of a Bitcoin Core node.
package bitcoin

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcjson"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/extract"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
	"github.com/shopspring/decimal"
)

var satoshisPerBitcoin = decimal.NewFromInt(btcutil.SatoshiPerBitcoin)

// verboseBlock is the getblock verbosity 2 result. Bitcoin Core reports the
// per-transaction fee, which btcjson.TxRawResult does not carry.
type verboseBlock struct {
	Hash   string      `json:"hash"`
	Height int64       `json:"height"`
	Time   int64       `json:"time"`
	Tx     []verboseTx `json:"tx"`
}

type verboseTx struct {
	btcjson.TxRawResult
	Fee *json.Number `json:"fee,omitempty"`
}

// FeeToSatoshis converts a BTC fee to satoshis without float rounding.
// Fees are reported positive; the sign is dropped if a node reports it negative.
func FeeToSatoshis(fee json.Number) (int64, error) {
	d, err := decimal.NewFromString(fee.String())
	if err != nil {
		return 0, fmt.Errorf("parse fee %q: %w", fee, err)
	}
	sats := d.Abs().Mul(satoshisPerBitcoin)
	if !sats.IsInteger() {
		return 0, fmt.Errorf("fee %s has sub-satoshi precision", fee)
	}
	if !sats.BigInt().IsInt64() {
		return 0, fmt.Errorf("fee %s out of range", fee)
	}
	return sats.IntPart(), nil
}

// BtcToSatoshis converts an output value to satoshis.
func BtcToSatoshis(value float64) (int64, error) {
	amt, err := btcutil.NewAmount(value)
	if err != nil {
		return 0, err
	}
	if amt < 0 {
		return 0, fmt.Errorf("negative amount: %d", amt)
	}
	return int64(amt), nil
}

// BuildBlock maps a verbose block into the domain model.
func BuildBlock(src verboseBlock) (*model.Block, error) {
	if src.Height < 0 {
		return nil, fmt.Errorf("block %s has negative height %d", src.Hash, src.Height)
	}

	block := &model.Block{
		Height:       uint64(src.Height),
		Hash:         src.Hash,
		Time:         time.Unix(src.Time, 0).UTC(),
		Transactions: make([]model.Transaction, 0, len(src.Tx)),
	}

	for i, tx := range src.Tx {
		converted, err := buildTransaction(tx)
		if err != nil {
			return nil, fmt.Errorf("block %d tx %s: %w", src.Height, tx.Txid, err)
		}
		if i == 0 && len(converted.Inputs) > 0 && converted.Inputs[0].Coinbase {
			block.MinedBy, block.CoinbaseText = extract.MiningPool(converted.Inputs[0].CoinbaseHex)
		}
		block.Transactions = append(block.Transactions, converted)
	}
	return block, nil
}

func buildTransaction(tx verboseTx) (model.Transaction, error) {
	out := model.Transaction{
		TxID:     tx.Txid,
		Size:     int64(tx.Size),
		VSize:    int64(tx.Vsize),
		Version:  int32(tx.Version),
		LockTime: tx.LockTime,
		Inputs:   make([]model.Input, 0, len(tx.Vin)),
		Outputs:  make([]model.Output, 0, len(tx.Vout)),
	}
	if out.VSize == 0 {
		out.VSize = out.Size
	}

	if tx.Fee != nil {
		fee, err := FeeToSatoshis(*tx.Fee)
		if err != nil {
			return model.Transaction{}, err
		}
		out.Fee = &fee
	}

	for _, vin := range tx.Vin {
		if len(vin.Witness) > 0 {
			out.SegWit = true
		}
		out.Inputs = append(out.Inputs, model.Input{
			Coinbase:    vin.IsCoinBase(),
			CoinbaseHex: vin.Coinbase,
			TxID:        vin.Txid,
			Vout:        vin.Vout,
			Sequence:    vin.Sequence,
		})
	}

	for _, vout := range tx.Vout {
		value, err := BtcToSatoshis(vout.Value)
		if err != nil {
			return model.Transaction{}, fmt.Errorf("vout %d value: %w", vout.N, err)
		}
		out.Outputs = append(out.Outputs, model.Output{
			Index:     vout.N,
			Value:     value,
			ScriptHex: vout.ScriptPubKey.Hex,
		})
	}
	return out, nil
}
