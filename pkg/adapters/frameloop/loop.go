// Package frameloop provides the refresh-tick scheduler and the single
// goroutine event loop that engine calls are serialized on.
package frameloop

import (
	"context"
	"sync"
	"time"

	"github.com/user/layerpaint/pkg/ports"
)

// DefaultInterval is roughly one 60 Hz display refresh.
const DefaultInterval = 16 * time.Millisecond

// Loop runs posted events and refresh ticks on one goroutine. Without Run it
// is a manual scheduler: callbacks wait until Tick is called.
type Loop struct {
	interval time.Duration

	mu      sync.Mutex
	next    ports.FrameID
	frames  map[ports.FrameID]func()
	order   []ports.FrameID
	events  []func()
	wake    chan struct{}
	ticks   int
	running bool
}

// New creates a Loop that ticks every interval while running. A
// non-positive interval selects DefaultInterval.
func New(interval time.Duration) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Loop{
		interval: interval,
		frames:   make(map[ports.FrameID]func()),
		wake:     make(chan struct{}, 1),
	}
}

// Interval returns the tick interval.
func (l *Loop) Interval() time.Duration { return l.interval }

// RequestFrame schedules fn for the next tick. Safe for concurrent use.
func (l *Loop) RequestFrame(fn func()) ports.FrameID {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.next++
	l.frames[l.next] = fn
	l.order = append(l.order, l.next)
	return l.next
}

// CancelFrame drops a callback that has not run yet.
func (l *Loop) CancelFrame(id ports.FrameID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.frames, id)
}

// Pending returns the number of callbacks waiting for a tick.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.frames)
}

// Ticks returns how many ticks have run.
func (l *Loop) Ticks() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ticks
}

// Post queues fn to run on the loop goroutine. Safe for concurrent use.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.events = append(l.events, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Tick runs every callback requested before the call, in request order, and
// returns how many ran. Callbacks requested while ticking wait for the next
// tick.
func (l *Loop) Tick() int {
	l.mu.Lock()
	order := l.order
	l.order = nil
	fns := make([]func(), 0, len(order))
	for _, id := range order {
		if fn, ok := l.frames[id]; ok {
			delete(l.frames, id)
			fns = append(fns, fn)
		}
	}
	l.ticks++
	l.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

// Drain runs queued events on the calling goroutine and returns how many ran.
func (l *Loop) Drain() int {
	n := 0
	for {
		l.mu.Lock()
		events := l.events
		l.events = nil
		l.mu.Unlock()

		if len(events) == 0 {
			return n
		}
		for _, fn := range events {
			fn()
			n++
		}
	}
}

// Run processes events and ticks until ctx is done. Only one Run may be
// active at a time.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return errAlreadyRunning
	}
	l.running = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		l.running = false
		l.mu.Unlock()
	}()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.Drain()
			return ctx.Err()
		case <-l.wake:
			l.Drain()
		case <-ticker.C:
			l.Drain()
			l.Tick()
		}
	}
}

var _ ports.FrameScheduler = (*Loop)(nil)
