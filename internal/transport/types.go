// Package transport exposes the stored outputs over HTTP and gRPC health.
package transport

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

import (
	"context"

	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/repository/clickhouse"
)

type (
	// Analytics serves aggregate queries from the mirror.
	Analytics interface {
		PayloadTypeStats(ctx context.Context, from, to uint64) ([]clickhouse.TypeStat, error)
	}
)
