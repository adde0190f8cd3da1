// Package corsmetrics exports the outcomes of CORS negotiation
// as Prometheus metrics.
//
// A [*Collector] implements [cors.Observer]; plug it into a middleware via
// [cors.Policy.Observer]:
//
//	c, err := corsmetrics.New(prometheus.DefaultRegisterer, corsmetrics.Config{})
//	if err != nil {
//	  // handle error
//	}
//	mw, err := cors.NewMiddleware(cors.Config{
//	  OriginPatterns: []string{"https://example.com"},
//	  Policy: cors.Policy{Observer: c},
//	})
package corsmetrics

import (
	"fmt"

	"github.com/corspolicy/cors"
	"github.com/prometheus/client_golang/prometheus"
)

// Label values.
const (
	KindPreflight = "preflight"
	KindActual    = "actual"

	OriginAbsent   = "absent"
	OriginAllowed  = "allowed"
	OriginRejected = "rejected"

	AspectMethod  = "method"
	AspectHeaders = "headers"

	ResultAllowed  = "allowed"
	ResultRejected = "rejected"
)

// Config configures a Collector.
type Config struct {
	// Namespace and Subsystem prefix metric names
	// (see [prometheus.BuildFQName]). Subsystem defaults to "cors".
	Namespace string
	Subsystem string
	// ConstLabels are attached to every metric.
	ConstLabels prometheus.Labels
}

// A Collector counts CORS requests by kind and origin outcome, as well as
// the method and header negotiations of preflight requests whose origin is
// allowed. It is safe for concurrent use.
type Collector struct {
	requests     *prometheus.CounterVec
	negotiations *prometheus.CounterVec
}

// New creates a Collector and registers its metrics with reg.
func New(reg prometheus.Registerer, cfg Config) (*Collector, error) {
	if cfg.Subsystem == "" {
		cfg.Subsystem = "cors"
	}
	c := Collector{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   cfg.Namespace,
				Subsystem:   cfg.Subsystem,
				Name:        "requests_total",
				Help:        "Requests processed by the CORS middleware, by kind and origin outcome.",
				ConstLabels: cfg.ConstLabels,
			},
			[]string{"kind", "origin"},
		),
		negotiations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   cfg.Namespace,
				Subsystem:   cfg.Subsystem,
				Name:        "preflight_negotiations_total",
				Help:        "Method and header negotiations of preflight requests from allowed origins, by result.",
				ConstLabels: cfg.ConstLabels,
			},
			[]string{"aspect", "result"},
		),
	}
	for _, col := range []prometheus.Collector{c.requests, c.negotiations} {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("corsmetrics: register collector: %w", err)
		}
	}
	return &c, nil
}

// Observe implements [cors.Observer].
func (c *Collector) Observe(o cors.Outcome) {
	kind := KindActual
	if o.Preflight {
		kind = KindPreflight
	}
	origin := OriginAbsent
	switch {
	case o.OriginAllowed:
		origin = OriginAllowed
	case o.OriginPresent:
		origin = OriginRejected
	}
	c.requests.WithLabelValues(kind, origin).Inc()
	if !o.Preflight || !o.OriginAllowed {
		return
	}
	c.negotiations.WithLabelValues(AspectMethod, result(o.MethodAllowed)).Inc()
	c.negotiations.WithLabelValues(AspectHeaders, result(o.HeadersAllowed)).Inc()
}

func result(allowed bool) string {
	if allowed {
		return ResultAllowed
	}
	return ResultRejected
}

var _ cors.Observer = (*Collector)(nil)
