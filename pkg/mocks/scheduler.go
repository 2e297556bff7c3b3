package mocks

import (
	"time"

	"github.com/user/layerpaint/pkg/ports"
)

// Clock is a settable clock.
type Clock struct {
	T time.Time
}

// NewClock returns a clock at a fixed, non-zero instant.
func NewClock() *Clock {
	return &Clock{T: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)}
}

func (m *Clock) Now() time.Time {
	return m.T
}

// Advance moves the clock forward.
func (m *Clock) Advance(d time.Duration) {
	m.T = m.T.Add(d)
}

var _ ports.Clock = (*Clock)(nil)

// FrameScheduler records requested callbacks and runs them on Tick.
type FrameScheduler struct {
	next      ports.FrameID
	callbacks map[ports.FrameID]func()
	order     []ports.FrameID

	Requested int
	Cancelled int
}

// NewFrameScheduler creates an empty scheduler.
func NewFrameScheduler() *FrameScheduler {
	return &FrameScheduler{callbacks: make(map[ports.FrameID]func())}
}

func (m *FrameScheduler) RequestFrame(fn func()) ports.FrameID {
	m.next++
	m.callbacks[m.next] = fn
	m.order = append(m.order, m.next)
	m.Requested++
	return m.next
}

func (m *FrameScheduler) CancelFrame(id ports.FrameID) {
	if _, ok := m.callbacks[id]; ok {
		delete(m.callbacks, id)
		m.Cancelled++
	}
}

// Pending returns the number of callbacks waiting for a tick.
func (m *FrameScheduler) Pending() int {
	return len(m.callbacks)
}

// Tick runs the callbacks requested before the call and returns how many ran.
func (m *FrameScheduler) Tick() int {
	order := m.order
	m.order = nil
	ran := 0
	for _, id := range order {
		fn, ok := m.callbacks[id]
		if !ok {
			continue
		}
		delete(m.callbacks, id)
		fn()
		ran++
	}
	return ran
}

var _ ports.FrameScheduler = (*FrameScheduler)(nil)
