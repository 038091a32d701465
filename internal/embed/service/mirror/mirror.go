// Package mirror forwards committed outputs to the analytics store in batches.
// Delivery is best effort: a full queue or a failed flush loses records from
// the mirror only, never from the primary store.
package mirror

import (
	"context"
	"time"

	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
	"github.com/goodnatureofminers/opreturn-indexer/pkg/batcher"
	"go.uber.org/zap"
)

type Config struct {
	FlushSize     int           `long:"flush-size" env:"FLUSH_SIZE" default:"500" description:"outputs per analytics insert"`
	FlushInterval time.Duration `long:"flush-interval" env:"FLUSH_INTERVAL" default:"5s" description:"maximum delay before a partial batch is sent"`
	RPS           int           `long:"rps" env:"RPS" default:"10" description:"maximum analytics inserts per second"`
	QueueSize     int           `long:"queue-size" env:"QUEUE_SIZE" default:"10000" description:"pending outputs before new ones are dropped"`
}

type Mirror struct {
	writer  Writer
	batcher *batcher.Batcher[model.EmbeddedOutput]
	metrics Metrics
	logger  *zap.Logger
}

func New(writer Writer, cfg Config, metrics Metrics, logger *zap.Logger) *Mirror {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Mirror{
		writer:  writer,
		metrics: metrics,
		logger:  logger.Named("mirror"),
	}
	var opts []batcher.Option[model.EmbeddedOutput]
	if metrics != nil {
		opts = append(opts, batcher.WithResultHook[model.EmbeddedOutput](metrics.ObserveFlush))
	}
	m.batcher = batcher.New[model.EmbeddedOutput](m.logger, writer.InsertOutputs, batcher.Config{
		FlushSize:     cfg.FlushSize,
		FlushInterval: cfg.FlushInterval,
		RPS:           cfg.RPS,
		QueueSize:     cfg.QueueSize,
	}, opts...)
	return m
}

// Start runs the flush loop until ctx is done or Stop is called.
func (m *Mirror) Start(ctx context.Context) {
	m.batcher.Start(ctx)
}

// Stop flushes pending outputs and waits for the loop to exit.
func (m *Mirror) Stop() {
	m.batcher.Stop()
}

// Offer queues out without blocking.
func (m *Mirror) Offer(out model.EmbeddedOutput) {
	if m.batcher.TryAdd(out) {
		return
	}
	m.logger.Warn("analytics queue full, output not mirrored",
		zap.String("txid", out.TxID), zap.Uint32("vout", out.Vout))
	if m.metrics != nil {
		m.metrics.ObserveDropped()
	}
}

// DeleteHeight removes the mirrored rows of one block.
func (m *Mirror) DeleteHeight(ctx context.Context, height uint64) error {
	return m.writer.DeleteOutputs(ctx, height)
}
