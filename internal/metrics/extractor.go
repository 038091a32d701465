package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	extractorCandidatesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "extractor",
		Name:      "candidates_total",
		Help:      "Null-data outputs above the size threshold.",
	})
	extractorPayloadBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "extractor",
		Name:      "payload_bytes",
		Help:      "Size of qualifying payloads.",
		Buckets:   prometheus.ExponentialBuckets(64, 2, 14),
	})
	extractorMalformedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "extractor",
		Name:      "malformed_outputs_total",
		Help:      "Outputs skipped because their script could not be parsed.",
	})
)

type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

func (Extractor) ObserveCandidate(payloadSize int) {
	extractorCandidatesTotal.Inc()
	extractorPayloadBytes.Observe(float64(payloadSize))
}

func (Extractor) ObserveMalformed() {
	extractorMalformedTotal.Inc()
}
