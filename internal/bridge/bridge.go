// Package bridge connects the simulation's tick stream to a renderer and a
// position store.
//
// Renderer broadcasts are throttled: ticks arriving faster than the throttle
// interval are dropped. Every broadcast also schedules a debounced write of
// the current positions; rapid ticks coalesce into one write. Convergence,
// pause and node release bypass the debounce and write immediately.
package bridge

import (
	"sync"
	"time"

	"github.com/san-kum/graphsim/internal/clock"
	"github.com/san-kum/graphsim/internal/config"
	"github.com/san-kum/graphsim/internal/force"
	"github.com/san-kum/graphsim/internal/graph"
	"github.com/san-kum/graphsim/internal/sim"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Stats struct {
	Emitted  int
	Dropped  int
	Writes   int
	Failures int
}

type Bridge struct {
	writer   graph.PositionWriter
	clock    clock.Clock
	log      *zap.Logger
	throttle time.Duration
	debounce time.Duration

	mu          sync.Mutex
	limiter     *rate.Limiter
	timer       clock.Timer
	pending     map[string]graph.Position
	seq         uint64
	lastDropped *sim.Frame
	onTick      func([]force.Node)
	onEnd       func()
	stats       Stats
	closed      bool

	// wmu serialises writes; written is the seq of the newest snapshot
	// handed to the writer, so an older debounced write never lands after a
	// newer immediate one.
	wmu     sync.Mutex
	written uint64
}

var _ sim.Observer = (*Bridge)(nil)

type Option func(*Bridge)

func WithClock(c clock.Clock) Option {
	return func(b *Bridge) { b.clock = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.log = l
		}
	}
}

func WithThrottle(d time.Duration) Option {
	return func(b *Bridge) { b.throttle = d }
}

func WithDebounce(d time.Duration) Option {
	return func(b *Bridge) { b.debounce = d }
}

func WithConfig(cfg config.Bridge) Option {
	return func(b *Bridge) {
		b.throttle = cfg.TickThrottle
		b.debounce = cfg.PersistDebounce
	}
}

// New returns a Bridge writing to w. A nil writer disables persistence.
func New(w graph.PositionWriter, opts ...Option) *Bridge {
	b := &Bridge{
		writer:   w,
		clock:    clock.Real(),
		log:      zap.NewNop(),
		throttle: config.DefaultTickThrottle,
		debounce: config.DefaultPersistDebounce,
	}
	for _, opt := range opts {
		opt(b)
	}
	limit := rate.Inf
	if b.throttle > 0 {
		limit = rate.Every(b.throttle)
	}
	b.limiter = rate.NewLimiter(limit, 1)
	return b
}

// SetOnTick registers the renderer callback for throttled frames.
func (b *Bridge) SetOnTick(fn func([]force.Node)) {
	b.mu.Lock()
	b.onTick = fn
	b.mu.Unlock()
}

// SetOnEnd registers the renderer callback for convergence.
func (b *Bridge) SetOnEnd(fn func()) {
	b.mu.Lock()
	b.onEnd = fn
	b.mu.Unlock()
}

func (b *Bridge) OnTick(f sim.Frame) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	if !b.limiter.AllowN(b.clock.Now(), 1) {
		b.stats.Dropped++
		b.lastDropped = &f
		b.mu.Unlock()
		return
	}
	b.stats.Emitted++
	b.lastDropped = nil
	b.stage(f)
	var snap map[string]graph.Position
	var seq uint64
	if b.debounce > 0 {
		b.schedule()
	} else {
		snap, seq = b.take()
	}
	onTick := b.onTick
	b.mu.Unlock()

	if onTick != nil {
		onTick(f.Nodes)
	}
	b.write(snap, seq, "tick")
}

// OnEnd writes the converged layout immediately. If the final tick was
// throttled away the renderer still receives it before the end callback.
func (b *Bridge) OnEnd(f sim.Frame) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	missed := b.lastDropped != nil
	b.lastDropped = nil
	onTick, onEnd := b.onTick, b.onEnd
	b.mu.Unlock()

	if missed && onTick != nil {
		onTick(f.Nodes)
	}
	b.flushFrame(f, "end")
	if onEnd != nil {
		onEnd()
	}
}

func (b *Bridge) OnFlush(f sim.Frame) {
	b.flushFrame(f, "flush")
}

// Flush writes any pending debounced positions now.
func (b *Bridge) Flush() {
	b.mu.Lock()
	b.stopTimer()
	snap, seq := b.take()
	b.mu.Unlock()
	b.write(snap, seq, "flush")
}

// Close flushes pending positions and ignores every later event.
func (b *Bridge) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.stopTimer()
	snap, seq := b.take()
	b.mu.Unlock()
	b.write(snap, seq, "close")
	return nil
}

func (b *Bridge) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

func (b *Bridge) flushFrame(f sim.Frame, reason string) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.stopTimer()
	b.stage(f)
	snap, seq := b.take()
	b.mu.Unlock()
	b.write(snap, seq, reason)
}

// stage replaces the pending snapshot. Callers hold mu.
func (b *Bridge) stage(f sim.Frame) {
	b.pending = f.Positions()
	b.seq++
}

// take hands out the pending snapshot and clears it. Callers hold mu.
func (b *Bridge) take() (map[string]graph.Position, uint64) {
	snap := b.pending
	b.pending = nil
	return snap, b.seq
}

// schedule (re)arms the debounce timer. Callers hold mu.
func (b *Bridge) schedule() {
	b.stopTimer()
	seq := b.seq
	b.timer = b.clock.AfterFunc(b.debounce, func() {
		b.mu.Lock()
		if b.closed || b.seq != seq || b.pending == nil {
			b.mu.Unlock()
			return
		}
		b.timer = nil
		snap, s := b.take()
		b.mu.Unlock()
		b.write(snap, s, "debounce")
	})
}

func (b *Bridge) stopTimer() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

func (b *Bridge) write(snap map[string]graph.Position, seq uint64, reason string) {
	if snap == nil || b.writer == nil {
		return
	}
	b.wmu.Lock()
	defer b.wmu.Unlock()
	if seq <= b.written {
		return
	}
	b.written = seq

	err := b.writer.UpdateNodePositions(snap)

	b.mu.Lock()
	if err != nil {
		b.stats.Failures++
	} else {
		b.stats.Writes++
	}
	b.mu.Unlock()

	if err != nil {
		b.log.Warn("position write failed",
			zap.String("reason", reason),
			zap.Int("nodes", len(snap)),
			zap.Error(err),
		)
		return
	}
	b.log.Debug("positions written", zap.String("reason", reason), zap.Int("nodes", len(snap)))
}
