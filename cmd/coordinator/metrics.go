package main

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dreamware/worldmesh/internal/coordinator"
)

var (
	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "worldmesh_events_total",
		Help: "World events propagated, by event type.",
	}, []string{"type"})

	eventOverflowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "worldmesh_event_overflows_total",
		Help: "Propagated events that overflowed somewhere in the topology, by event type.",
	}, []string{"type"})

	propagationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "worldmesh_event_propagation_seconds",
		Help:    "Wall time spent propagating one event through the full hierarchy.",
		Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
	})
)

func observePropagation(eventType string, overflow bool, d time.Duration) {
	eventsTotal.WithLabelValues(eventType).Inc()
	if overflow {
		eventOverflowsTotal.WithLabelValues(eventType).Inc()
	}
	propagationDuration.Observe(d.Seconds())
}

var topologyGaugesOnce sync.Once

// registerTopologyGauges exposes live topology sizes. Registered once per
// process; later coordinators are ignored, which only matters in tests.
func registerTopologyGauges(coord *coordinator.Coordinator) {
	topologyGaugesOnce.Do(func() {
		promauto.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "worldmesh_clusters",
			Help: "Clusters currently registered with the coordinator.",
		}, func() float64 { return float64(coord.Count()) })

		promauto.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "worldmesh_shards",
			Help: "Shards currently placed across all clusters.",
		}, func() float64 { return float64(coord.Locator().ShardCount()) })

		promauto.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "worldmesh_entities",
			Help: "Entities currently tracked across all shards.",
		}, func() float64 { return float64(coord.Locator().EntityCount()) })
	})
}
