package metrics

import (
	"time"

	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/service/scanner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scannerBlocksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "scanner",
		Name:      "blocks_total",
		Help:      "Blocks processed by mode.",
	}, []string{"network", "mode", "status"})
	scannerBlockDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "scanner",
		Name:      "block_duration_seconds",
		Help:      "Time to extract and persist one block.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"network", "mode", "status"})
	scannerOutputsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "scanner",
		Name:      "outputs_total",
		Help:      "Qualifying outputs by persist outcome.",
	}, []string{"network", "mode", "outcome"})
	scannerCheckpoint = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "scanner",
		Name:      "checkpoint_height",
		Help:      "Last completed height per direction.",
	}, []string{"network", "direction"})
	scannerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "scanner",
		Name:      "state",
		Help:      "Current pipeline state per mode (see scanner.State).",
	}, []string{"network", "mode"})
)

// Scanner tracks scan pipeline progress.
type Scanner struct {
	network string
}

func NewScanner(network string) *Scanner {
	return &Scanner{network: orUnknown(network)}
}

func (m Scanner) ObserveBlock(mode scanner.Mode, err error, _ int, started time.Time) {
	s := status(err)
	scannerBlocksTotal.WithLabelValues(m.network, string(mode), s).Inc()
	scannerBlockDuration.WithLabelValues(m.network, string(mode), s).Observe(time.Since(started).Seconds())
}

func (m Scanner) ObserveOutcome(mode scanner.Mode, outcome model.Outcome) {
	scannerOutputsTotal.WithLabelValues(m.network, string(mode), outcome.String()).Inc()
}

func (m Scanner) SetCheckpoint(dir model.Direction, height uint64) {
	scannerCheckpoint.WithLabelValues(m.network, string(dir)).Set(float64(height))
}

func (m Scanner) SetState(mode scanner.Mode, state scanner.State) {
	scannerState.WithLabelValues(m.network, string(mode)).Set(float64(state))
}
