// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/votesecure/election"
)

// Metrics owns a private registry so tests can build as many as they like.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	ballotsAdmitted prometheus.Counter
	ballotsRejected *prometheus.CounterVec
	tallyDuration   prometheus.Histogram
	httpRequests    *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		ballotsAdmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "votesecure_ballots_admitted_total",
			Help: "number of ballots written to the ledger",
		}),
		ballotsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "votesecure_ballots_rejected_total",
			Help: "number of vote requests rejected, by reason",
		}, []string{"reason"}),
		tallyDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "votesecure_tally_duration_seconds",
			Help:    "time spent computing election results",
			Buckets: prometheus.DefBuckets,
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "votesecure_http_requests_total",
			Help: "number of HTTP requests served, by method and status code",
		}, []string{"method", "code"}),
	}
}

// ObserveAdmission counts the outcome of one Admit call. Errors without a
// rejection reason are counted as "unknown".
func (m *Metrics) ObserveAdmission(err error) {
	if m == nil {
		return
	}
	if err == nil {
		m.ballotsAdmitted.Inc()
		return
	}
	m.ballotsRejected.WithLabelValues(string(election.ReasonOf(err))).Inc()
}

// ObserveTally records how long a tally took.
func (m *Metrics) ObserveTally(d time.Duration) {
	if m == nil {
		return
	}
	m.tallyDuration.Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Instrument counts every request passing through next.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return promhttp.InstrumentHandlerCounter(m.httpRequests, next)
}
