package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mob_ledger"

// Metrics holds the ledger's collectors on a private registry so tests can
// build as many instances as they like.
type Metrics struct {
	registry *prometheus.Registry

	LiveRecords     prometheus.Gauge
	Events          *prometheus.CounterVec
	ArtifactsIssued prometheus.Counter
	SlotWrites      *prometheus.CounterVec
	Restores        *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		LiveRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_records",
			Help:      "Number of records currently held in memory.",
		}),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Host events handled, by event and outcome.",
		}, []string{"event", "outcome"}),
		ArtifactsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifacts_issued_total",
			Help:      "Nametag artifacts handed to the host.",
		}),
		SlotWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slot_writes_total",
			Help:      "Persistent slot writes, by result.",
		}, []string{"result"}),
		Restores: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slot_restores_total",
			Help:      "Slot restores at startup, by result.",
		}, []string{"result"}),
	}
	m.registry.MustRegister(
		m.LiveRecords,
		m.Events,
		m.ArtifactsIssued,
		m.SlotWrites,
		m.Restores,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) Event(event, outcome string) {
	m.Events.WithLabelValues(event, outcome).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
