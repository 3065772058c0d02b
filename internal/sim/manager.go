// Package sim owns the layout simulation: the working set of nodes and
// links, the cooling loop and the IDLE/RUNNING/PAUSED lifecycle.
//
// Every operation is a silent no-op when it does not apply (unknown id,
// duplicate add, wrong state). Nothing on the simulation path returns an
// error; rejected calls are logged at debug level.
package sim

import (
	"sync"

	"github.com/san-kum/graphsim/internal/config"
	"github.com/san-kum/graphsim/internal/force"
	"github.com/san-kum/graphsim/internal/graph"
	"go.uber.org/zap"
)

// Alpha targets for each kind of reheat.
const (
	AlphaStart        = 1.0
	AlphaResume       = 0.3
	AlphaRelease      = 0.3
	AlphaAdd          = 0.5
	AlphaRemove       = 0.3
	AlphaTopology     = 0.3
	AlphaReheat       = 1.0
	AlphaUpdateConfig = 0.3

	// A drag on a node wakes the simulation only once it has cooled below
	// DragWakeThreshold, and then only up to DragWakeAlpha.
	DragWakeThreshold = 0.1
	DragWakeAlpha     = 0.15
)

type Manager struct {
	mu    sync.Mutex
	sched Scheduler
	log   *zap.Logger
	cfg   config.Config
	model *force.Model

	nodes []force.Node
	links []force.Link
	index map[string]int

	state   State
	alpha   float64
	ticking bool
	ended   bool
	epoch   uint64
	ticks   int

	observers []Observer
}

type Option func(*Manager)

func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithConfig sets the simulation and engine parameters. The Simulation part
// is replaced by the one passed to Start.
func WithConfig(cfg config.Config) Option {
	return func(m *Manager) { m.cfg = cfg }
}

func New(sched Scheduler, opts ...Option) *Manager {
	m := &Manager{
		sched: sched,
		log:   zap.NewNop(),
		cfg:   *config.DefaultConfig(),
		state: Idle,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.model = force.NewModel(m.cfg.Simulation, m.cfg.Engine)
	return m
}

func (m *Manager) AddObserver(o Observer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, o)
}

// Start builds the working set from a store snapshot and begins ticking at
// full alpha. Nodes already in the working set keep their position and
// velocity; pins are dropped. Duplicate ids in the snapshot resolve last
// write wins, keeping the slot of the first occurrence. An empty snapshot
// discards the working set and leaves the manager Idle.
func (m *Manager) Start(nodes []graph.Node, edges []graph.Edge, sim config.Simulation) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(nodes) == 0 {
		m.halt()
		m.discard()
		m.state = Idle
		m.log.Debug("start with empty graph ignored")
		return
	}

	prev, prevIndex := m.nodes, m.index
	working := make([]force.Node, 0, len(nodes))
	index := make(map[string]int, len(nodes))
	for _, gn := range nodes {
		n := force.Node{ID: gn.ID, Label: gn.Title, X: gn.X, Y: gn.Y}
		if i, ok := prevIndex[gn.ID]; ok && i < len(prev) {
			p := prev[i]
			n.X, n.Y, n.VX, n.VY = p.X, p.Y, p.VX, p.VY
		}
		if i, ok := index[gn.ID]; ok {
			working[i] = n
			continue
		}
		index[gn.ID] = len(working)
		working = append(working, n)
	}

	links := make([]force.Link, 0, len(edges))
	for _, e := range edges {
		links = append(links, force.Link{ID: e.ID, Source: e.Source, Target: e.Target})
	}

	m.halt()
	m.nodes, m.links, m.index = working, links, index
	m.cfg.Simulation = sim
	m.model.SetConfig(m.cfg.Simulation, m.cfg.Engine)
	m.refresh()

	m.state = Running
	m.ticks = 0
	m.reheat(AlphaStart)
	m.log.Info("simulation started",
		zap.Int("nodes", len(m.nodes)),
		zap.Int("links", m.model.ResolvedLinks()),
		zap.Int("duplicates", len(nodes)-len(working)),
	)
}

// Pause stops ticking, keeps the working set and asks observers to persist
// positions immediately.
func (m *Manager) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Running {
		m.reject("pause")
		return
	}
	m.halt()
	m.state = Paused
	m.emitFlush()
	m.log.Info("simulation paused", zap.Float64("alpha", m.alpha))
}

func (m *Manager) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Paused {
		m.reject("resume")
		return
	}
	m.state = Running
	m.reheat(AlphaResume)
	m.log.Info("simulation resumed")
}

// Stop halts ticking but keeps the working set for a later Start. Position
// continuity across Stop is best-effort; use Destroy to discard state.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Idle {
		m.reject("stop")
		return
	}
	m.halt()
	m.state = Idle
	m.log.Info("simulation stopped")
}

// Destroy stops ticking and discards the working set. No tick or observer
// callback starts after Destroy returns.
func (m *Manager) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.halt()
	m.discard()
	m.state = Idle
	m.log.Debug("simulation destroyed")
}

// Close destroys the simulation and drops every observer.
func (m *Manager) Close() {
	m.Destroy()
	m.mu.Lock()
	m.observers = nil
	m.mu.Unlock()
}

// Reheat restarts a running simulation at full alpha.
func (m *Manager) Reheat() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Running {
		m.reject("reheat")
		return
	}
	m.reheat(AlphaReheat)
}

// UpdateNode pins a node at (x, y), as during a drag. A running simulation
// that has cooled is woken gently.
func (m *Manager) UpdateNode(id string, x, y float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := m.lookup("update node", id)
	if n == nil {
		return
	}
	n.Pin(x, y)
	if m.state == Running && m.alpha < DragWakeThreshold {
		m.reheat(DragWakeAlpha)
	}
}

// ReleaseNode clears a pin and always requests an immediate flush.
func (m *Manager) ReleaseNode(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := m.lookup("release node", id)
	if n == nil {
		return
	}
	n.Unpin()
	if m.state == Running {
		m.reheat(AlphaRelease)
	}
	m.emitFlush()
}

// AddNode appends a node with degree 0. Adding an id that already exists is
// a no-op.
func (m *Manager) AddNode(id string, x, y float64, label string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Idle {
		m.reject("add node")
		return
	}
	if _, ok := m.index[id]; ok {
		m.log.Debug("add node ignored: duplicate id", zap.String("node_id", id))
		return
	}
	m.index[id] = len(m.nodes)
	m.nodes = append(m.nodes, force.Node{ID: id, Label: label, X: x, Y: y})
	m.refresh()
	if m.state == Running {
		m.reheat(AlphaAdd)
	}
}

// RemoveNode drops a node and every link that references it.
func (m *Manager) RemoveNode(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookup("remove node", id) == nil {
		return
	}
	i := m.index[id]
	m.nodes = append(m.nodes[:i], m.nodes[i+1:]...)
	m.reindex()

	kept := m.links[:0]
	for _, l := range m.links {
		if l.Source != id && l.Target != id {
			kept = append(kept, l)
		}
	}
	m.links = kept
	m.refresh()
	if m.state == Running {
		m.reheat(AlphaRemove)
	}
}

// AddLink connects two nodes in the working set. Duplicate link ids and
// links with an unknown endpoint are ignored.
func (m *Manager) AddLink(id, source, target string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Idle {
		m.reject("add link")
		return
	}
	_, okS := m.index[source]
	_, okT := m.index[target]
	if !okS || !okT {
		m.log.Debug("add link ignored: unknown endpoint", zap.String("link_id", id))
		return
	}
	for _, l := range m.links {
		if l.ID == id {
			m.log.Debug("add link ignored: duplicate id", zap.String("link_id", id))
			return
		}
	}
	m.links = append(m.links, force.Link{ID: id, Source: source, Target: target})
	m.refresh()
	if m.state == Running {
		m.reheat(AlphaTopology)
	}
}

func (m *Manager) RemoveLink(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == Idle {
		m.reject("remove link")
		return
	}
	for i, l := range m.links {
		if l.ID != id {
			continue
		}
		m.links = append(m.links[:i], m.links[i+1:]...)
		m.refresh()
		if m.state == Running {
			m.reheat(AlphaTopology)
		}
		return
	}
	m.log.Debug("remove link ignored: unknown id", zap.String("link_id", id))
}

// UpdateConfig merges a partial simulation config. Degree-derived radii and
// charges follow immediately; a running simulation reheats so the change is
// visible. A patch that would make the config invalid is dropped.
func (m *Manager) UpdateConfig(p config.Patch) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.IsEmpty() {
		return
	}
	next := m.cfg.Simulation.Apply(p)
	if err := next.Validate(); err != nil {
		m.log.Warn("config update rejected", zap.Error(err))
		return
	}
	m.cfg.Simulation = next
	m.model.SetConfig(m.cfg.Simulation, m.cfg.Engine)
	if m.nodes != nil {
		m.refresh()
	}
	if m.state == Running {
		m.reheat(AlphaUpdateConfig)
	}
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) Alpha() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.alpha
}

// Ticking reports whether a tick is scheduled. A running simulation stops
// ticking once it converges.
func (m *Manager) Ticking() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ticking
}

// TickCount returns the number of steps since the last Start.
func (m *Manager) TickCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ticks
}

func (m *Manager) Config() config.Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}

// Nodes returns a copy of the working set.
func (m *Manager) Nodes() []force.Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	return force.CloneNodes(m.nodes)
}

func (m *Manager) Links() []force.Link {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]force.Link(nil), m.links...)
}

func (m *Manager) Node(id string) (force.Node, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.index[id]
	if !ok {
		return force.Node{}, false
	}
	return m.nodes[i].Clone(), true
}

func (m *Manager) Positions() map[string]graph.Position {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]graph.Position, len(m.nodes))
	for _, n := range m.nodes {
		out[n.ID] = graph.Position{X: n.X, Y: n.Y}
	}
	return out
}

func (m *Manager) tick(epoch uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if epoch != m.epoch || m.state != Running {
		return
	}

	eng := m.cfg.Engine
	m.alpha *= 1 - eng.AlphaDecay
	m.model.Step(m.nodes, m.alpha)
	m.ticks++

	if len(m.observers) > 0 {
		f := m.frame()
		for _, o := range m.observers {
			o.OnTick(f)
		}
	}

	if m.alpha < eng.AlphaMin {
		m.halt()
		if !m.ended {
			m.ended = true
			m.log.Info("simulation converged", zap.Int("ticks", m.ticks))
			f := m.frame()
			for _, o := range m.observers {
				o.OnEnd(f)
			}
		}
	}
}

// reheat sets alpha and (re)starts ticking. Callers hold mu.
func (m *Manager) reheat(alpha float64) {
	m.alpha = alpha
	m.ended = false
	m.epoch++
	epoch := m.epoch
	m.ticking = true
	m.sched.Schedule(func() { m.tick(epoch) })
}

// halt cancels the scheduler and invalidates any tick already in flight.
func (m *Manager) halt() {
	if m.ticking {
		m.sched.Cancel()
		m.ticking = false
	}
	m.epoch++
}

func (m *Manager) discard() {
	m.nodes, m.links, m.index = nil, nil, nil
	m.alpha = 0
	m.ticks = 0
}

func (m *Manager) refresh() {
	m.model.Refresh(m.nodes, m.links)
}

func (m *Manager) reindex() {
	m.index = make(map[string]int, len(m.nodes))
	for i := range m.nodes {
		m.index[m.nodes[i].ID] = i
	}
}

func (m *Manager) lookup(op, id string) *force.Node {
	if m.state == Idle {
		m.reject(op)
		return nil
	}
	i, ok := m.index[id]
	if !ok {
		m.log.Debug(op+" ignored: unknown id", zap.String("node_id", id))
		return nil
	}
	return &m.nodes[i]
}

func (m *Manager) reject(op string) {
	m.log.Debug(op+" ignored", zap.Stringer("state", m.state))
}

func (m *Manager) frame() Frame {
	return Frame{Tick: m.ticks, Alpha: m.alpha, Nodes: force.CloneNodes(m.nodes)}
}

func (m *Manager) emitFlush() {
	if len(m.observers) == 0 {
		return
	}
	f := m.frame()
	for _, o := range m.observers {
		o.OnFlush(f)
	}
}
