// SPDX-License-Identifier: GPL-3.0

package engine

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ucc-mobile/ltemac4/sidelink"
)

// Metrics is the Observation Sink of spec.md §6: it fans out emitted
// signals to Prometheus counters (event-style signals) and gauges
// (value-carrying signals), rather than the core counting/logging them
// itself.
type Metrics struct {
	counters map[sidelink.Signal]prometheus.Counter
	gauges   map[sidelink.Signal]prometheus.Gauge
}

// NewMetrics registers one counter or gauge per spec.md §6 signal
// against reg and returns the sink.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		counters: make(map[sidelink.Signal]prometheus.Counter),
		gauges:   make(map[sidelink.Signal]prometheus.Gauge),
	}

	counterSignals := []sidelink.Signal{
		sidelink.SigGeneratedGrants,
		sidelink.SigGrantBreak,
		sidelink.SigGrantBreakTiming,
		sidelink.SigGrantBreakSize,
		sidelink.SigGrantBreakMissedTrans,
		sidelink.SigDroppedTimeout,
		sidelink.SigMissedTransmission,
		sidelink.SigGrantRequests,
	}
	gaugeSignals := []sidelink.Signal{
		sidelink.SigSelectedMCS,
		sidelink.SigSelectedSubchIndex,
		sidelink.SigSelectedNumSubch,
		sidelink.SigMaximumCapacity,
	}

	for _, sig := range counterSignals {
		c := prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ltemac4",
			Name:      string(sig),
			Help:      "count of " + string(sig) + " observations emitted by the sidelink MAC core",
		})
		reg.MustRegister(c)
		m.counters[sig] = c
	}
	for _, sig := range gaugeSignals {
		g := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ltemac4",
			Name:      string(sig),
			Help:      "last value of " + string(sig) + " reported by the sidelink MAC core",
		})
		reg.MustRegister(g)
		m.gauges[sig] = g
	}
	return m
}

// Observe fans obs out to the registered counters and gauges. Unknown
// signals (none exist today; a forward-compat guard) are silently
// dropped.
func (m *Metrics) Observe(obs []sidelink.Observation) {
	for _, o := range obs {
		if c, ok := m.counters[o.Signal]; ok {
			c.Inc()
			continue
		}
		if g, ok := m.gauges[o.Signal]; ok {
			g.Set(float64(o.Value))
		}
	}
}
