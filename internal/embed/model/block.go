// Package model defines domain models for embedded-data scanning.
package model

import "time"

// Block is a fetched block with the transaction detail needed for extraction.
// Blocks are immutable once fetched and are never persisted as a whole.
type Block struct {
	Height       uint64
	Hash         string
	Time         time.Time
	Transactions []Transaction
	MinedBy      string
	CoinbaseText string
}

// Transaction belongs to exactly one block.
type Transaction struct {
	TxID     string
	Inputs   []Input
	Outputs  []Output
	Fee      *int64 // nil when the source did not report a fee
	VSize    int64
	Size     int64
	Version  int32
	LockTime uint32
	SegWit   bool
}

// Replaceable reports whether any input signals opt-in replacement (BIP125).
func (t Transaction) Replaceable() bool {
	for _, in := range t.Inputs {
		if !in.Coinbase && in.Sequence < 0xfffffffe {
			return true
		}
	}
	return false
}

// Input is a transaction input; coinbase inputs carry the raw coinbase script.
type Input struct {
	Coinbase    bool
	CoinbaseHex string
	TxID        string
	Vout        uint32
	Sequence    uint32
}

// Output is a transaction output with its locking script.
type Output struct {
	Index     uint32
	Value     int64
	ScriptHex string
}

// BlockScan marks a height as fully processed. Removing it forces the height
// to be re-examined by range scans.
type BlockScan struct {
	Height       uint64    `db:"height"`
	Hash         string    `db:"block_hash"`
	Time         time.Time `db:"block_time"`
	TxCount      int       `db:"total_transactions"`
	Found        int       `db:"outputs_found"`
	MinedBy      string    `db:"mined_by"`
	CoinbaseText string    `db:"coinbase_text"`
	ScannedAt    time.Time `db:"scanned_at"`
}
