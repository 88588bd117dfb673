package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exposes live run counters. It is safe to share between scenes
// registered on different registries.
type Collector struct {
	Frames           prometheus.Counter
	Compactions      *prometheus.CounterVec
	FieldEvaluations *prometheus.CounterVec
	KineticEnergy    prometheus.Gauge
}

// NewCollector builds the collector and registers it on reg when reg is
// not nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		Frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "emsim",
			Name:      "frames_total",
			Help:      "Non-zero frames advanced by the scene driver.",
		}),
		Compactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "emsim",
			Name:      "history_compactions_total",
			Help:      "Times a particle history buffer discarded its older half.",
		}, []string{"particle"}),
		FieldEvaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "emsim",
			Name:      "field_points_total",
			Help:      "Field points evaluated by probe sampling.",
		}, []string{"field"}),
		KineticEnergy: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "emsim",
			Name:      "kinetic_energy",
			Help:      "Total kinetic energy after the latest frame.",
		}),
	}
	if reg == nil {
		return c, nil
	}
	for _, m := range []prometheus.Collector{c.Frames, c.Compactions, c.FieldEvaluations, c.KineticEnergy} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}
