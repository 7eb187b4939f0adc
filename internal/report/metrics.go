package report

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes batch progress as Prometheus metrics.
type Metrics struct {
	flights       *prometheus.CounterVec
	flightSeconds *prometheus.HistogramVec
	batches       *prometheus.CounterVec
	lastBatch     *prometheus.GaugeVec
}

// NewMetrics registers the metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		flights: f.NewCounterVec(prometheus.CounterOpts{
			Name: "flightderive_flights_total",
			Help: "Flights processed by stage and status",
		}, []string{"stage", "status"}),
		flightSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "flightderive_flight_duration_seconds",
			Help:    "Wall time spent on one flight",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"stage"}),
		batches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "flightderive_batches_total",
			Help: "Batches finished by stage, including aborted ones",
		}, []string{"stage", "aborted"}),
		lastBatch: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "flightderive_last_batch_flights",
			Help: "Flight counts of the most recent batch",
		}, []string{"stage", "status"}),
	}
}

// RecordTiming implements Sink.
func (m *Metrics) RecordTiming(_ context.Context, t Timing) {
	m.flights.WithLabelValues(t.Stage, string(t.Status)).Inc()
	m.flightSeconds.WithLabelValues(t.Stage).Observe(t.Elapsed.Seconds())
}

// RecordBatch implements Sink.
func (m *Metrics) RecordBatch(_ context.Context, s BatchSummary) {
	aborted := "false"
	if s.Aborted {
		aborted = "true"
	}
	m.batches.WithLabelValues(s.Stage, aborted).Inc()
	m.lastBatch.WithLabelValues(s.Stage, string(StatusOK)).Set(float64(s.OK))
	m.lastBatch.WithLabelValues(s.Stage, string(StatusFail)).Set(float64(s.Fail))
}
