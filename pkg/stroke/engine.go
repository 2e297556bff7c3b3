package stroke

import (
	"fmt"
	"math"

	"github.com/user/layerpaint/pkg/ports"
)

// Updater receives the single update request issued when a stroke ends.
type Updater interface {
	ScheduleUpdate()
}

// Result summarizes a finished stroke.
type Result struct {
	Points   int
	Segments int
	Skipped  int
}

// Stroke is the in-progress state between Begin and End.
type Stroke struct {
	surface ports.Surface
	style   ports.StrokeStyle
	level   int
	path    []ports.Point
	last    ports.Point
	anchor  bool
	result  Result
}

// Path returns a copy of the raw samples received so far.
func (s *Stroke) Path() []ports.Point {
	out := make([]ports.Point, len(s.path))
	copy(out, s.path)
	return out
}

// Style returns the style frozen at Begin.
func (s *Stroke) Style() ports.StrokeStyle {
	return s.style
}

// Engine draws strokes with the current tool. At most one stroke is in
// progress at a time.
type Engine struct {
	tool    Tool
	updater Updater
	logger  ports.Logger
	current *Stroke
}

// NewEngine creates an Engine with DefaultTool.
func NewEngine(updater Updater, logger ports.Logger) *Engine {
	return &Engine{
		tool:    DefaultTool(),
		updater: updater,
		logger:  logger.WithComponent("stroke"),
	}
}

// Tool returns the current tool.
func (e *Engine) Tool() Tool {
	return e.tool
}

// SetTool replaces the tool. A stroke in progress keeps its frozen style.
func (e *Engine) SetTool(t Tool) {
	e.tool = t.Normalized()
}

// Active reports whether a stroke is in progress.
func (e *Engine) Active() bool {
	return e.current != nil
}

// Current returns the stroke in progress, or nil.
func (e *Engine) Current() *Stroke {
	return e.current
}

// Begin starts a stroke on surface. The tool parameters are frozen for the
// whole stroke. A non-finite starting point is skipped; the first finite
// sample of Continue then anchors the stroke.
func (e *Engine) Begin(surface ports.Surface, p ports.Point) error {
	if surface == nil || surface.Released() {
		return fmt.Errorf("begin stroke: %w", ports.ErrInvalidSurface)
	}
	t := e.tool.Normalized()
	e.current = &Stroke{
		surface: surface,
		style:   t.Style(),
		level:   t.Stabilization,
	}
	if !finite(p) {
		e.current.result.Skipped++
		e.logger.Debug("Skipping non-finite sample (%v, %v)", p.X, p.Y)
		return nil
	}
	e.current.path = append(e.current.path, p)
	e.current.last = p
	e.current.anchor = true
	e.logger.Debug("Stroke began at (%.1f, %.1f) with %s", p.X, p.Y, string(t.Kind))
	return nil
}

// Continue adds a sample and draws a segment from the previous stabilized
// point to the new one. Non-finite samples are skipped.
func (e *Engine) Continue(p ports.Point) error {
	s := e.current
	if s == nil {
		return fmt.Errorf("continue stroke: no stroke in progress: %w", ports.ErrInvalidSurface)
	}
	if !finite(p) {
		s.result.Skipped++
		e.logger.Debug("Skipping non-finite sample (%v, %v)", p.X, p.Y)
		return nil
	}

	s.path = append(s.path, p)
	if !s.anchor {
		s.last = p
		s.anchor = true
		return nil
	}

	next := Stabilize(s.path, p, s.level)
	if err := s.surface.StrokeSegment(s.last, next, s.style); err != nil {
		return fmt.Errorf("continue stroke: %w", err)
	}
	s.last = next
	s.result.Segments++
	return nil
}

// End finishes the stroke and requests exactly one compositor update.
func (e *Engine) End() (Result, error) {
	s := e.current
	if s == nil {
		return Result{}, fmt.Errorf("end stroke: no stroke in progress: %w", ports.ErrInvalidSurface)
	}
	e.current = nil

	s.result.Points = len(s.path)
	e.logger.Debug("Stroke ended: %d points, %d segments", s.result.Points, s.result.Segments)
	if e.updater != nil {
		e.updater.ScheduleUpdate()
	}
	return s.result, nil
}

// Cancel drops the stroke in progress without requesting an update.
func (e *Engine) Cancel() {
	e.current = nil
}

// Stabilize smooths raw against the path it was appended to. When the path
// holds at least level points, the mean of the last level points is blended
// 50/50 with raw; otherwise raw is returned unchanged.
func Stabilize(path []ports.Point, raw ports.Point, level int) ports.Point {
	if level <= 0 || len(path) < level {
		return raw
	}
	var sx, sy float64
	for _, p := range path[len(path)-level:] {
		sx += p.X
		sy += p.Y
	}
	n := float64(level)
	return ports.Point{
		X: (raw.X + sx/n) / 2,
		Y: (raw.Y + sy/n) / 2,
	}
}

func finite(p ports.Point) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}
