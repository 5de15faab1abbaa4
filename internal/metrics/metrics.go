// Package metrics exposes Prometheus counters for sentence ingestion.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeDecoded = "decoded"
	OutcomeError   = "error"
)

// Ingest counts sentences by outcome. The outcome is "decoded", "error",
// or the reason a sentence was ignored.
type Ingest struct {
	sentences *prometheus.CounterVec
	stored    prometheus.Counter
	published *prometheus.CounterVec
}

func NewIngest(reg prometheus.Registerer) *Ingest {
	m := &Ingest{
		sentences: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eskytrack",
			Name:      "sentences_total",
			Help:      "Sentences received, by decode outcome.",
		}, []string{"outcome"}),
		stored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eskytrack",
			Name:      "positions_stored_total",
			Help:      "Positions written to the position repository.",
		}),
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eskytrack",
			Name:      "positions_published_total",
			Help:      "Positions handed to the downstream publisher, by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.sentences, m.stored, m.published)
	return m
}

func (m *Ingest) Sentence(outcome string) {
	m.sentences.WithLabelValues(outcome).Inc()
}

func (m *Ingest) Stored() {
	m.stored.Inc()
}

func (m *Ingest) Published(err error) {
	if err != nil {
		m.published.WithLabelValues("error").Inc()
		return
	}
	m.published.WithLabelValues("ok").Inc()
}
