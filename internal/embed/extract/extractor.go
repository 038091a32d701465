// Package extract finds large null-data outputs in transactions and classifies
// their payloads.
package extract

import (
	"encoding/hex"
	"errors"
	"fmt"
	"iter"

	"github.com/btcsuite/btcd/txscript"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/chain"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
	"go.uber.org/zap"
)

// DefaultThreshold is the largest payload a standard relay policy accepts in
// a null-data output. Anything larger is recorded.
const DefaultThreshold = 83

var (
	errEmptyScript  = errors.New("empty script")
	errNonPushAfter = errors.New("non-push opcode after OP_RETURN")
)

type (
	// Metrics counts extraction outcomes.
	Metrics interface {
		ObserveCandidate(payloadSize int)
		ObserveMalformed()
	}
)

// Candidate is a qualifying output with its raw payload bytes.
type Candidate struct {
	Vout    uint32
	Payload []byte
}

// Extractor selects null-data outputs whose payload exceeds a threshold.
type Extractor struct {
	threshold int
	logger    *zap.Logger
	metrics   Metrics
}

// NewExtractor builds an Extractor. A non-positive threshold selects DefaultThreshold.
func NewExtractor(threshold int, logger *zap.Logger, metrics Metrics) *Extractor {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{threshold: threshold, logger: logger, metrics: metrics}
}

// Threshold returns the payload size an output must exceed to qualify.
func (e *Extractor) Threshold() int {
	return e.threshold
}

// Extract lazily yields the qualifying outputs of tx in output order.
// Malformed scripts are logged and skipped.
func (e *Extractor) Extract(tx model.Transaction) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		for _, out := range tx.Outputs {
			payload, ok, err := e.parse(out.ScriptHex)
			if err != nil {
				merr := &chain.MalformedDataError{TxID: tx.TxID, Vout: out.Index, Err: err}
				e.logger.Warn("skip malformed output", zap.String("txid", tx.TxID), zap.Uint32("vout", out.Index), zap.Error(merr))
				if e.metrics != nil {
					e.metrics.ObserveMalformed()
				}
				continue
			}
			if !ok || len(payload) <= e.threshold {
				continue
			}
			if e.metrics != nil {
				e.metrics.ObserveCandidate(len(payload))
			}
			if !yield(Candidate{Vout: out.Index, Payload: payload}) {
				return
			}
		}
	}
}

// Collect drains Extract into a slice.
func (e *Extractor) Collect(tx model.Transaction) []Candidate {
	var out []Candidate
	for c := range e.Extract(tx) {
		out = append(out, c)
	}
	return out
}

func (e *Extractor) parse(scriptHex string) ([]byte, bool, error) {
	if len(scriptHex) < 2 || scriptHex[:2] != "6a" {
		return nil, false, nil
	}
	script, err := hex.DecodeString(scriptHex)
	if err != nil {
		return nil, false, fmt.Errorf("decode script hex: %w", err)
	}
	payload, err := NullDataPayload(script)
	if err != nil {
		return nil, false, err
	}
	return payload, true, nil
}

// NullDataPayload returns the concatenated push data following OP_RETURN.
// The script must start with OP_RETURN.
func NullDataPayload(script []byte) ([]byte, error) {
	if len(script) == 0 {
		return nil, errEmptyScript
	}
	if script[0] != txscript.OP_RETURN {
		return nil, fmt.Errorf("script starts with opcode 0x%02x", script[0])
	}

	var payload []byte
	tokenizer := txscript.MakeScriptTokenizer(0, script[1:])
	for tokenizer.Next() {
		if tokenizer.Opcode() > txscript.OP_16 {
			return nil, fmt.Errorf("%w: 0x%02x", errNonPushAfter, tokenizer.Opcode())
		}
		payload = append(payload, tokenizer.Data()...)
	}
	if err := tokenizer.Err(); err != nil {
		return nil, fmt.Errorf("tokenize script: %w", err)
	}
	return payload, nil
}
