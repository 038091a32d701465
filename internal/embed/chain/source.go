// Package chain defines the block source contract and the error taxonomy shared
// by the scanning components.
package chain

import (
	"context"

	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
)

// BlockSource provides blocks with full transaction detail, including the
// per-transaction fee when the node reports it.
type BlockSource interface {
	LatestHeight(ctx context.Context) (uint64, error)
	FetchBlock(ctx context.Context, height uint64) (*model.Block, error)
}
