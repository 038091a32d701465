// Package repository declares the storage contracts shared by the postgres
// and embedded backends.
package repository

import (
	"context"
	"errors"

	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/checkpoint"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// OutputFilter narrows ListOutputs. Zero values do not filter.
type OutputFilter struct {
	FromHeight  uint64
	ToHeight    uint64
	PayloadType model.PayloadType
	Limit       int
	Offset      int
}

// DefaultListLimit applies when OutputFilter.Limit is not positive.
const DefaultListLimit = 100

// EffectiveLimit returns the page size to use.
func (f OutputFilter) EffectiveLimit() int {
	if f.Limit <= 0 {
		return DefaultListLimit
	}
	return f.Limit
}

type (
	// OutputStore keeps embedded outputs keyed by (txid, vout).
	OutputStore interface {
		// InsertOutput stores out unless it already exists; inserted reports which.
		InsertOutput(ctx context.Context, out model.EmbeddedOutput) (inserted bool, err error)
		OutputExists(ctx context.Context, txid string, vout uint32) (bool, error)
		DeleteOutputs(ctx context.Context, height uint64) (int, error)
	}

	// OutputReader serves queries over stored outputs.
	OutputReader interface {
		Output(ctx context.Context, txid string, vout uint32) (model.EmbeddedOutput, error)
		ListOutputs(ctx context.Context, filter OutputFilter) ([]model.EmbeddedOutput, error)
		HeightsWithOutputs(ctx context.Context) ([]uint64, error)
		Stats(ctx context.Context) (model.Stats, error)
	}

	// Store is a complete backend.
	Store interface {
		checkpoint.Store
		OutputStore
		OutputReader
		Close() error
	}
)
