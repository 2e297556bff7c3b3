// Package compositor flattens the visible layers of a store into one output
// surface and coalesces bursts of update requests into at most one render per
// refresh tick.
package compositor

import (
	"fmt"
	"image"
	"sort"
	"time"

	"github.com/user/layerpaint/pkg/layers"
	"github.com/user/layerpaint/pkg/ports"
)

// DefaultThreshold is the minimum spacing between immediate renders (~60fps).
const DefaultThreshold = 16 * time.Millisecond

// Source is the layer stack the compositor reads from.
type Source interface {
	Layers() []*layers.Layer
	Size() (width, height int)
}

// Stats counts scheduler activity.
type Stats struct {
	Renders   int // successful renders
	Immediate int // renders executed directly by ScheduleUpdate
	Deferred  int // renders executed on a refresh tick
	Forced    int // renders executed by ForceUpdate
	Coalesced int // requests absorbed by a pending update
	Failures  int // renders that failed
}

// Compositor renders a Source onto an output surface it owns.
//
// Compositor is not safe for concurrent use; all calls, including the frame
// callbacks it registers, must come from the host's event loop.
type Compositor struct {
	source    Source
	provider  ports.SurfaceProvider
	scheduler ports.FrameScheduler
	clock     ports.Clock
	logger    ports.Logger
	threshold time.Duration

	output  ports.Surface
	pending bool
	frame   ports.FrameID
	lastRun time.Time
	hasRun  bool
	closed  bool
	dirty   map[layers.ID]struct{}
	stats   Stats
}

// New creates a Compositor. A non-positive threshold uses DefaultThreshold.
func New(
	source Source,
	provider ports.SurfaceProvider,
	scheduler ports.FrameScheduler,
	clock ports.Clock,
	logger ports.Logger,
	threshold time.Duration,
) *Compositor {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Compositor{
		source:    source,
		provider:  provider,
		scheduler: scheduler,
		clock:     clock,
		logger:    logger.WithComponent("compositor"),
		threshold: threshold,
		dirty:     make(map[layers.ID]struct{}),
	}
}

// Output returns the output surface, or nil before the first render.
func (c *Compositor) Output() ports.Surface {
	return c.output
}

// Stats returns the scheduler counters.
func (c *Compositor) Stats() Stats {
	return c.stats
}

// Pending reports whether a deferred update is waiting for a tick.
func (c *Compositor) Pending() bool {
	return c.pending
}

// Dirty returns the ids waiting for recomposition, sorted.
func (c *Compositor) Dirty() []layers.ID {
	ids := make([]layers.ID, 0, len(c.dirty))
	for id := range c.dirty {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// MarkDirty records that a layer changed.
func (c *Compositor) MarkDirty(id layers.ID) {
	c.dirty[id] = struct{}{}
}

// ScheduleUpdate requests a render. A request made while one is pending is
// absorbed. Otherwise the render runs now if the last one is at least the
// threshold old, or on the next refresh tick if not. Render failures are
// logged and never returned.
func (c *Compositor) ScheduleUpdate() {
	if c.closed {
		return
	}
	if c.pending {
		c.stats.Coalesced++
		return
	}

	now := c.clock.Now()
	if !c.hasRun || now.Sub(c.lastRun) >= c.threshold {
		c.stats.Immediate++
		c.run()
		return
	}

	c.pending = true
	c.frame = c.scheduler.RequestFrame(c.onFrame)
	c.logger.Debug("Deferred update to next frame")
}

// ForceUpdate cancels any pending update and renders synchronously. Unlike
// ScheduleUpdate it returns the render error, since the caller needs a valid
// output.
func (c *Compositor) ForceUpdate() error {
	if c.closed {
		return fmt.Errorf("force update: %w: compositor closed", ports.ErrCompositeFailure)
	}
	c.cancelPending()
	c.stats.Forced++
	return c.run()
}

// Flush renders now if an update is pending. It is used at the end of a
// gesture to guarantee the output reflects every mutation.
func (c *Compositor) Flush() error {
	if !c.pending {
		return nil
	}
	c.cancelPending()
	c.stats.Deferred++
	return c.run()
}

// Close cancels a pending update and stops scheduling. The output surface is
// released.
func (c *Compositor) Close() {
	c.cancelPending()
	c.closed = true
	if c.output != nil {
		c.output.Release()
		c.output = nil
	}
}

func (c *Compositor) onFrame() {
	if !c.pending {
		return
	}
	c.pending = false
	c.frame = 0
	c.stats.Deferred++
	c.run()
}

func (c *Compositor) cancelPending() {
	if c.pending {
		c.scheduler.CancelFrame(c.frame)
	}
	c.pending = false
	c.frame = 0
}

// run executes RenderFull, containing errors and panics. Pending and dirty
// state are reset whatever the outcome.
func (c *Compositor) run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", ports.ErrCompositeFailure, r)
		}
		c.lastRun = c.clock.Now()
		c.hasRun = true
		c.pending = false
		clear(c.dirty)
		if err != nil {
			c.stats.Failures++
			c.logger.Error("Composite failed: %s", err)
		}
	}()
	return c.RenderFull()
}

// RenderFull clears the output and draws every visible layer bottom-up with
// its opacity and blend mode. The output is (re)allocated to the document size
// when needed. Blend state is passed per draw, so nothing leaks into later
// operations on the output.
func (c *Compositor) RenderFull() error {
	start := c.clock.Now()
	width, height := c.source.Size()

	if err := c.ensureOutput(width, height); err != nil {
		return fmt.Errorf("%w: %v", ports.ErrCompositeFailure, err)
	}
	if err := c.output.Clear(); err != nil {
		return fmt.Errorf("%w: clear output: %v", ports.ErrCompositeFailure, err)
	}

	drawn := 0
	for _, l := range c.source.Layers() {
		if !l.Visible() {
			continue
		}
		if err := c.output.DrawSurface(l.Surface(), image.Point{}, l.Opacity(), l.BlendMode()); err != nil {
			return fmt.Errorf("%w: layer %d: %v", ports.ErrCompositeFailure, l.ID(), err)
		}
		drawn++
	}

	c.stats.Renders++
	c.logger.Debug("Rendered %d layers in %s", drawn, c.clock.Now().Sub(start))
	return nil
}

func (c *Compositor) ensureOutput(width, height int) error {
	if c.output == nil || c.output.Released() {
		out, err := c.provider.NewSurface(width, height)
		if err != nil {
			return err
		}
		c.output = out
		return nil
	}
	if c.output.Width() != width || c.output.Height() != height {
		return c.output.Resize(width, height)
	}
	return nil
}

// Ensure Compositor satisfies the store's invalidation hook.
var _ layers.Invalidator = (*Compositor)(nil)
