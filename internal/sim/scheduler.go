package sim

import (
	"sync"
	"time"
)

// Scheduler drives the tick loop. Schedule registers tick to run once per
// frame until Cancel is called or Schedule replaces it. Implementations must
// not hold internal locks while invoking tick, and Cancel must not wait for
// an in-flight tick to return.
type Scheduler interface {
	Schedule(tick func())
	Cancel()
}

// StepScheduler runs the registered tick only when Step is called. It backs
// tests and hosts that own their frame loop, such as the terminal UI.
type StepScheduler struct {
	mu   sync.Mutex
	tick func()
}

func NewStepScheduler() *StepScheduler {
	return &StepScheduler{}
}

func (s *StepScheduler) Schedule(tick func()) {
	s.mu.Lock()
	s.tick = tick
	s.mu.Unlock()
}

func (s *StepScheduler) Cancel() {
	s.mu.Lock()
	s.tick = nil
	s.mu.Unlock()
}

func (s *StepScheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick != nil
}

// Step runs one frame and reports whether a tick was registered.
func (s *StepScheduler) Step() bool {
	s.mu.Lock()
	tick := s.tick
	s.mu.Unlock()
	if tick == nil {
		return false
	}
	tick()
	return true
}

// Drain steps until nothing is scheduled or max frames have run, and
// returns the number of frames run.
func (s *StepScheduler) Drain(max int) int {
	n := 0
	for n < max && s.Step() {
		n++
	}
	return n
}

// FrameScheduler runs the registered tick on a time.Ticker in its own
// goroutine.
type FrameScheduler struct {
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
}

func NewFrameScheduler(interval time.Duration) *FrameScheduler {
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &FrameScheduler{interval: interval}
}

func (f *FrameScheduler) Schedule(tick func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelLocked()

	stop := make(chan struct{})
	f.stop = stop
	go func() {
		t := time.NewTicker(f.interval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				select {
				case <-stop:
					return
				default:
				}
				tick()
			}
		}
	}()
}

func (f *FrameScheduler) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelLocked()
}

func (f *FrameScheduler) cancelLocked() {
	if f.stop != nil {
		close(f.stop)
		f.stop = nil
	}
}
