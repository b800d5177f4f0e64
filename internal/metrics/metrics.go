// Package metrics groups the Prometheus collectors of the tip service.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmynk/tipcalc/internal/session"
)

// Metrics groups Prometheus collectors for session and RPC observability.
type Metrics struct {
	Events         *prometheus.CounterVec
	RejectedEvents *prometheus.CounterVec
	OpenSessions   prometheus.Gauge
	ClosedSessions *prometheus.CounterVec
	RPCDuration    *prometheus.HistogramVec
}

// New registers and returns the collectors under namespace. A nil reg
// uses the default registerer.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "input_events_total",
			Help:      "Input events applied to sessions.",
		}, []string{"event"}),
		RejectedEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "input_events_rejected_total",
			Help:      "Input events rejected because the controls were hidden.",
		}, []string{"event"}),
		OpenSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_open",
			Help:      "Sessions currently open.",
		}),
		ClosedSessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_closed_total",
			Help:      "Sessions ended, by reason.",
		}, []string{"reason"}),
		RPCDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC latency distribution.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}, []string{"procedure", "code"}),
	}

	for _, c := range []prometheus.Collector{m.Events, m.RejectedEvents, m.OpenSessions, m.ClosedSessions, m.RPCDuration} {
		if err := reg.Register(c); err != nil {
			panic(fmt.Errorf("register collector: %w", err))
		}
	}
	return m
}

// Hooks returns registry hooks that keep the session collectors current.
// Events failing for any reason other than hidden controls are not counted.
func (m *Metrics) Hooks() session.Hooks {
	return session.Hooks{
		Opened: func(string) {
			m.OpenSessions.Inc()
		},
		Closed: func(_ string, expired bool) {
			m.OpenSessions.Dec()
			reason := "closed"
			if expired {
				reason = "expired"
			}
			m.ClosedSessions.WithLabelValues(reason).Inc()
		},
		Applied: func(kind session.EventKind, err error) {
			switch {
			case err == nil:
				m.Events.WithLabelValues(string(kind)).Inc()
			case errors.Is(err, session.ErrControlsHidden):
				m.RejectedEvents.WithLabelValues(string(kind)).Inc()
			}
		},
	}
}

// Interceptor returns a Connect interceptor observing RPC latency by
// procedure and result code.
func (m *Metrics) Interceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			code := "ok"
			if err != nil {
				code = connect.CodeUnknown.String()
				var connectErr *connect.Error
				if errors.As(err, &connectErr) {
					code = connectErr.Code().String()
				}
			}
			m.RPCDuration.WithLabelValues(req.Spec().Procedure, code).Observe(time.Since(start).Seconds())
			return resp, err
		}
	}
}
