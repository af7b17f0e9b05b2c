// Package metrics exposes Prometheus collectors for game activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors registered on one registry.
type Metrics struct {
	registry *prometheus.Registry

	RoundsStarted  *prometheus.CounterVec
	Guesses        *prometheus.CounterVec
	RoundsFinished *prometheus.CounterVec
	ScratchPercent prometheus.Histogram
	PosterLoads    *prometheus.CounterVec
	ActiveRounds   prometheus.Gauge
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RoundsStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flickguess_rounds_started_total",
			Help: "Rounds started, by mode.",
		}, []string{"mode"}),
		Guesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flickguess_guesses_total",
			Help: "Guesses submitted, by outcome.",
		}, []string{"outcome"}),
		RoundsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flickguess_rounds_finished_total",
			Help: "Rounds that reached a terminal status.",
		}, []string{"status"}),
		ScratchPercent: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "flickguess_scratch_percent",
			Help:    "Overlay percentage erased per scratch event.",
			Buckets: []float64{0, 0.1, 0.25, 0.5, 1, 2, 5},
		}),
		PosterLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flickguess_poster_loads_total",
			Help: "Poster load attempts, by result.",
		}, []string{"result"}),
		ActiveRounds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "flickguess_active_rounds",
			Help: "Rounds held in memory.",
		}),
	}
	m.registry.MustRegister(
		m.RoundsStarted, m.Guesses, m.RoundsFinished,
		m.ScratchPercent, m.PosterLoads, m.ActiveRounds,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
