// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

package audit

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mangadex"

// Reauthentication outcomes.
const (
	ReauthSucceeded = "success"
	ReauthFailed    = "failure"
)

// GateStats is the view of the admission gate exported as gauges.
type GateStats interface {
	Available() int
	Waiting() int
}

// Metrics holds the Prometheus collectors for outbound traffic.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	reauths  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// gate may be nil, in which case no gate gauges are exported.
func NewMetrics(reg prometheus.Registerer, gate GateStats) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Outbound HTTP requests by destination, method and status code.",
		}, []string{"destination", "method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Latency of outbound HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"destination"}),
		reauths: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reauthentications_total",
			Help:      "Access token refreshes by outcome.",
		}, []string{"outcome"}),
	}

	collectors := []prometheus.Collector{m.requests, m.duration, m.reauths}

	if gate != nil {
		collectors = append(collectors,
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "gate_available",
				Help:      "Admission tokens not currently held.",
			}, func() float64 { return float64(gate.Available()) }),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "gate_waiting",
				Help:      "Callers queued for an admission token.",
			}, func() float64 { return float64(gate.Waiting()) }),
		)
	}

	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// ObserveSpan records a finished span. Spans served from cache are not counted.
func (m *Metrics) ObserveSpan(span *Span) {
	if m == nil || span.Cached {
		return
	}

	code := "error"
	if span.StatusCode != 0 {
		code = strconv.Itoa(span.StatusCode)
	}

	m.requests.WithLabelValues(string(span.Destination), span.Method, code).Inc()
	m.duration.WithLabelValues(string(span.Destination)).Observe(span.duration.Seconds())
}

// ObserveReauth records one reauthentication attempt.
func (m *Metrics) ObserveReauth(outcome string) {
	if m == nil {
		return
	}

	m.reauths.WithLabelValues(outcome).Inc()
}
