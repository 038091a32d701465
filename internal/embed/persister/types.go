package persister

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

import (
	"context"

	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
)

type (
	// Sidecar writes the per-output file set.
	Sidecar interface {
		Exists(height uint64, txid string, vout uint32) (bool, error)
		Write(out model.EmbeddedOutput) error
		DeleteHeight(height uint64) error
	}

	// Mirror receives committed records for analytics. It is best effort.
	Mirror interface {
		Offer(out model.EmbeddedOutput)
		DeleteHeight(ctx context.Context, height uint64) error
	}

	Metrics interface {
		ObservePersist(outcome model.Outcome, payloadType model.PayloadType, err error)
	}
)
