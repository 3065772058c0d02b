package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/san-kum/graphsim/internal/force"
	"github.com/san-kum/graphsim/internal/sim"
)

// Collector exports the tick stream as Prometheus series.
type Collector struct {
	TicksTotal        prometheus.Counter
	ConvergencesTotal prometheus.Counter
	FlushesTotal      prometheus.Counter
	Alpha             prometheus.Gauge
	KineticEnergy     prometheus.Gauge
	Nodes             prometheus.Gauge
	PinnedNodes       prometheus.Gauge
}

var _ sim.Observer = (*Collector)(nil)

// NewCollector registers the graphsim series on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		TicksTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "graphsim_ticks_total",
			Help: "Simulation ticks integrated",
		}),
		ConvergencesTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "graphsim_convergences_total",
			Help: "Times alpha crossed the convergence floor",
		}),
		FlushesTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "graphsim_flushes_total",
			Help: "Immediate position flushes requested by pause or release",
		}),
		Alpha: f.NewGauge(prometheus.GaugeOpts{
			Name: "graphsim_alpha",
			Help: "Current simulation alpha",
		}),
		KineticEnergy: f.NewGauge(prometheus.GaugeOpts{
			Name: "graphsim_kinetic_energy",
			Help: "Mean kinetic energy per node at the last tick",
		}),
		Nodes: f.NewGauge(prometheus.GaugeOpts{
			Name: "graphsim_nodes",
			Help: "Nodes in the working set",
		}),
		PinnedNodes: f.NewGauge(prometheus.GaugeOpts{
			Name: "graphsim_pinned_nodes",
			Help: "Nodes currently pinned",
		}),
	}
}

func (c *Collector) OnTick(f sim.Frame) {
	c.TicksTotal.Inc()
	c.observe(f)
	c.KineticEnergy.Set(force.KineticEnergy(f.Nodes))
}

func (c *Collector) OnEnd(f sim.Frame) {
	c.ConvergencesTotal.Inc()
	c.observe(f)
}

func (c *Collector) OnFlush(f sim.Frame) {
	c.FlushesTotal.Inc()
	c.observe(f)
}

func (c *Collector) observe(f sim.Frame) {
	c.Alpha.Set(f.Alpha)
	c.Nodes.Set(float64(len(f.Nodes)))
	pinned := 0
	for i := range f.Nodes {
		if f.Nodes[i].Pinned() {
			pinned++
		}
	}
	c.PinnedNodes.Set(float64(pinned))
}
