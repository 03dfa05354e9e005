package server

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/and161185/typestate-monitor/internal/errs"
)

const (
	variantTyped   = "typed"
	variantChecked = "checked"
	variantMisuse  = "misuse"
)

type lifecycleMetrics struct {
	passes   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newLifecycleMetrics(reg prometheus.Registerer) *lifecycleMetrics {
	m := &lifecycleMetrics{
		passes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "typestate_monitor",
			Name:      "passes_total",
			Help:      "Lifecycle passes by monitor variant and outcome.",
		}, []string{"variant", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "typestate_monitor",
			Name:      "pass_duration_seconds",
			Help:      "Wall time of one lifecycle pass.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"variant"}),
	}
	reg.MustRegister(m.passes, m.duration)
	return m
}

func (m *lifecycleMetrics) observe(variant string, start time.Time, err error) {
	m.passes.WithLabelValues(variant, outcome(err)).Inc()
	m.duration.WithLabelValues(variant).Observe(time.Since(start).Seconds())
}

// outcome maps a lifecycle error to its metric label.
func outcome(err error) string {
	var (
		ce *errs.ConnectError
		fe *errs.FetchError
		de *errs.DisplayError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &ce):
		return "connect_error"
	case errors.As(err, &fe):
		return "fetch_error"
	case errors.As(err, &de):
		return "display_error"
	default:
		return "error"
	}
}
