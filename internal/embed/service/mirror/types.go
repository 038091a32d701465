package mirror

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

import (
	"context"

	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
)

type (
	Writer interface {
		InsertOutputs(ctx context.Context, outputs []model.EmbeddedOutput) error
		DeleteOutputs(ctx context.Context, height uint64) error
	}

	Metrics interface {
		ObserveFlush(size int, err error)
		ObserveDropped()
	}
)
