package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mirrorFlushTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "mirror",
		Name:      "flush_total",
		Help:      "Analytics batches sent.",
	}, []string{"status"})
	mirrorFlushSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "mirror",
		Name:      "flush_size",
		Help:      "Outputs per analytics batch.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	})
	mirrorDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "mirror",
		Name:      "dropped_total",
		Help:      "Outputs not mirrored because the queue was full.",
	})
)

type Mirror struct{}

func NewMirror() *Mirror {
	return &Mirror{}
}

func (Mirror) ObserveFlush(size int, err error) {
	mirrorFlushTotal.WithLabelValues(status(err)).Inc()
	mirrorFlushSize.Observe(float64(size))
}

func (Mirror) ObserveDropped() {
	mirrorDroppedTotal.Inc()
}
