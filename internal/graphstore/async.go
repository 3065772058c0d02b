package graphstore

import (
	"sync"

	"github.com/san-kum/graphsim/internal/graph"
	"go.uber.org/zap"
)

// AsyncWriter moves position writes off the caller's goroutine. Writes that
// arrive while one is in flight are merged, so a slow store sees at most one
// queued batch holding the newest position of every node.
type AsyncWriter struct {
	w   graph.PositionWriter
	log *zap.Logger

	mu      sync.Mutex
	pending map[string]graph.Position
	closed  bool

	wake chan struct{}
	done chan struct{}
}

var _ graph.PositionWriter = (*AsyncWriter)(nil)

func NewAsyncWriter(w graph.PositionWriter, log *zap.Logger) *AsyncWriter {
	if log == nil {
		log = zap.NewNop()
	}
	a := &AsyncWriter{
		w:    w,
		log:  log,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go a.loop()
	return a
}

// UpdateNodePositions queues p and returns immediately.
func (a *AsyncWriter) UpdateNodePositions(p map[string]graph.Position) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrClosed
	}
	if a.pending == nil {
		a.pending = make(map[string]graph.Position, len(p))
	}
	for id, pos := range p {
		a.pending[id] = pos
	}
	select {
	case a.wake <- struct{}{}:
	default:
	}
	a.mu.Unlock()
	return nil
}

// Close writes whatever is queued and stops the worker.
func (a *AsyncWriter) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.wake)
	a.mu.Unlock()
	<-a.done
	return nil
}

func (a *AsyncWriter) loop() {
	defer close(a.done)
	for range a.wake {
		a.drain()
	}
	a.drain()
}

func (a *AsyncWriter) drain() {
	a.mu.Lock()
	batch := a.pending
	a.pending = nil
	a.mu.Unlock()
	if len(batch) == 0 {
		return
	}
	if err := a.w.UpdateNodePositions(batch); err != nil {
		a.log.Error("async position write failed", zap.Int("nodes", len(batch)), zap.Error(err))
	}
}
