// Package metrics provides Prometheus instrumentation for the embedded
// engine library.
//
// All collectors live in a custom [prometheus.Registry] rather than the
// global default: the library is loaded into a foreign host process and
// must not collide with whatever else that process registers. The host
// pulls the counters through the boundary as text exposition and can
// re-expose them however it likes.
package metrics

import (
	"bytes"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Call status label values.
const (
	StatusOK         = "ok"
	StatusNotFound   = "not_found"
	StatusPartial    = "partial_update"
	StatusInvalid    = "invalid_input"
	StatusNullHandle = "null_handle"
)

// Metrics holds all collectors used by the boundary layer.
type Metrics struct {
	Registry *prometheus.Registry

	StateUpdatesTotal *prometheus.CounterVec
	ResolutionsTotal  *prometheus.CounterVec
	EnginesActive     prometheus.Gauge
}

// New creates and registers all collectors in a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,

		StateUpdatesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "frontendengine_state_updates_total",
			Help: "Total number of toggle-definition updates by outcome.",
		}, []string{"status"}),

		ResolutionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "frontendengine_resolutions_total",
			Help: "Total number of resolution calls by entry point and outcome.",
		}, []string{"call", "status"}),

		EnginesActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "frontendengine_engines_active",
			Help: "Number of live engine handles.",
		}),
	}

	reg.MustRegister(m.StateUpdatesTotal, m.ResolutionsTotal, m.EnginesActive)
	return m
}

// Render gathers every collector and returns the Prometheus text
// exposition format, which is what crosses the boundary.
func (m *Metrics) Render() (string, error) {
	families, err := m.Registry.Gather()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, family := range families {
		if err := enc.Encode(family); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}
