package scanner

import (
	"context"
	"time"

	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/checkpoint"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	BlockSource interface {
		LatestHeight(ctx context.Context) (uint64, error)
		FetchBlock(ctx context.Context, height uint64) (*model.Block, error)
	}
	Persister interface {
		Persist(ctx context.Context, out model.EmbeddedOutput) (model.Outcome, error)
		DeleteForHeight(ctx context.Context, height uint64) (int, error)
	}
	Store interface {
		checkpoint.Store
		HeightsWithOutputs(ctx context.Context) ([]uint64, error)
	}
	Metrics interface {
		ObserveBlock(mode Mode, err error, outputs int, started time.Time)
		ObserveOutcome(mode Mode, outcome model.Outcome)
		SetCheckpoint(dir model.Direction, height uint64)
		SetState(mode Mode, state State)
	}
)
