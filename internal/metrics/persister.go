package metrics

import (
	"github.com/goodnatureofminers/opreturn-indexer/internal/embed/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var persistTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "persister",
	Name:      "outputs_total",
	Help:      "Persist calls by outcome and payload type.",
}, []string{"outcome", "payload_type"})

type Persister struct{}

func NewPersister() *Persister {
	return &Persister{}
}

// ObservePersist counts a persist call. Failed calls are labelled "error"
// whatever outcome was reported.
func (Persister) ObservePersist(outcome model.Outcome, payloadType model.PayloadType, err error) {
	label := outcome.String()
	if err != nil {
		label = "error"
	}
	persistTotal.WithLabelValues(label, orUnknown(string(payloadType))).Inc()
}
