// Package metrics exports drift simulation statistics to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/phanxgames/drift"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "drift"

// Collector records simulation steps and engine events. It implements both
// drift.Observer and drift.EventSink, and registers its metrics on its own
// registry so several collectors can coexist in one process.
type Collector struct {
	registry *prometheus.Registry

	TickDuration   prometheus.Histogram
	Circles        prometheus.Gauge
	Steps          *prometheus.CounterVec
	CollisionPairs prometheus.Counter
	Passes         prometheus.Histogram
	BudgetOverruns *prometheus.CounterVec
	Spawned        prometheus.Counter
	Events         *prometheus.CounterVec
}

// NewCollector creates a collector whose metrics use namespace. An empty
// namespace means DefaultNamespace.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Time spent in System.Update per step",
			Buckets:   []float64{0.0005, 0.001, 0.002, 0.004, 0.008, 0.016, 0.032, 0.064},
		}),
		Circles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circles",
			Help:      "Circles simulated in the latest step",
		}),
		Steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Simulation steps by broadphase",
		}, []string{"broadphase"}),
		CollisionPairs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collision_pairs_total",
			Help:      "Overlapping pairs resolved across all passes",
		}),
		Passes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "collision_passes",
			Help:      "Collision passes completed per step",
			Buckets:   prometheus.LinearBuckets(0, 1, 6),
		}),
		BudgetOverruns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "budget_overruns_total",
			Help:      "Loops cut short by their time budget",
		}, []string{"loop"}),
		Spawned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spawned_total",
			Help:      "Circles placed by auto-spawn",
		}),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Engine events by type",
		}, []string{"type"}),
	}

	registry.MustRegister(
		c.TickDuration,
		c.Circles,
		c.Steps,
		c.CollisionPairs,
		c.Passes,
		c.BudgetOverruns,
		c.Spawned,
		c.Events,
	)
	return c
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's metrics in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveStep implements drift.Observer. Paused steps only count toward
// steps_total.
func (c *Collector) ObserveStep(r drift.StepReport) {
	if r.Paused {
		c.Steps.WithLabelValues("paused").Inc()
		return
	}
	broadphase := "brute_force"
	if r.Tick.UsedQuadtree {
		broadphase = "quadtree"
	}
	c.Steps.WithLabelValues(broadphase).Inc()
	c.TickDuration.Observe(r.Tick.Elapsed.Seconds())
	c.Circles.Set(float64(r.Tick.Circles))
	c.CollisionPairs.Add(float64(r.Tick.Pairs))
	c.Passes.Observe(float64(r.Tick.Passes))
	c.Spawned.Add(float64(r.Spawned))

	if r.Tick.BudgetExceeded {
		c.BudgetOverruns.WithLabelValues("tick").Inc()
	}
	if r.NBodyCut {
		c.BudgetOverruns.WithLabelValues("nbody").Inc()
	}
	if r.StickyCut {
		c.BudgetOverruns.WithLabelValues("sticky").Inc()
	}
}

// Emit implements drift.EventSink.
func (c *Collector) Emit(e drift.Event) {
	c.Events.WithLabelValues(e.Type.String()).Inc()
}

// Tee returns an EventSink that forwards every event to each non-nil sink.
func Tee(sinks ...drift.EventSink) drift.EventSink {
	var live []drift.EventSink
	for _, s := range sinks {
		if s != nil {
			live = append(live, s)
		}
	}
	return drift.EventFunc(func(e drift.Event) {
		for _, s := range live {
			s.Emit(e)
		}
	})
}
