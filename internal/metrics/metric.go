// Package metrics turns the simulation's tick stream into numbers: scalar
// summaries for run records, a per-tick trace, and Prometheus series.
package metrics

import "github.com/san-kum/graphsim/internal/sim"

// Metric is an Observer that reduces a run to one value.
type Metric interface {
	sim.Observer
	Name() string
	Value() float64
	Reset()
}

// Summary collects the value of every metric keyed by name.
func Summary(ms ...Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
