package ports

import "time"

// FrameID identifies a requested refresh-tick callback. Zero is never issued.
type FrameID uint64

// FrameScheduler is the host's display-refresh capability: callbacks requested
// before a tick run once on that tick.
type FrameScheduler interface {
	// RequestFrame schedules fn to run on the next refresh tick.
	RequestFrame(fn func()) FrameID

	// CancelFrame discards a requested callback that has not run yet.
	CancelFrame(id FrameID)
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}
