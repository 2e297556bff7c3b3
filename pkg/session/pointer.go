package session

import (
	"github.com/user/layerpaint/pkg/ports"
)

// PointerDown starts a stroke on the active layer with the current tool.
// The state before the stroke is recorded in history. It is a logged no-op
// when there is no active layer, when the tool does not paint, or when a
// stroke is already in progress.
func (s *Session) PointerDown(p ports.Point) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	if s.state == Drawing {
		s.logger.Debug("Pointer down ignored while drawing")
		return nil
	}

	tool := s.strokes.Tool()
	if !tool.Kind.Draws() {
		s.logger.Info("Tool %s has no stroke behavior", string(tool.Kind))
		return nil
	}
	active := s.store.ActiveLayer()
	if active == nil {
		s.logger.Info("No active layer, ignoring pointer down")
		return nil
	}

	if err := s.strokes.Begin(active.Surface(), p); err != nil {
		return s.fail(err)
	}
	s.history.Record(s.store, tool.Label())
	s.state = Drawing
	s.strokeLayer = active.ID()
	return nil
}

// PointerMove extends the stroke in progress and requests a batched update.
func (s *Session) PointerMove(p ports.Point) error {
	if s.state != Drawing {
		return nil
	}
	if err := s.strokes.Continue(p); err != nil {
		return s.fail(err)
	}
	s.comp.MarkDirty(s.strokeLayer)
	s.comp.ScheduleUpdate()
	return nil
}

// PointerUp ends the stroke. Any deferred update is rendered before
// returning, and the gesture's composite goes to the debug sink when enabled.
func (s *Session) PointerUp() error {
	if s.state != Drawing {
		return nil
	}
	res, err := s.strokes.End()
	s.state = Idle
	if err != nil {
		return s.fail(err)
	}

	s.stats.Gestures++
	s.stats.Points += res.Points
	s.stats.Segments += res.Segments
	s.stats.Skipped += res.Skipped

	if err := s.comp.Flush(); err != nil {
		return s.fail(err)
	}

	if sink := s.deps.Sink; sink != nil && sink.Enabled() {
		if out := s.comp.Output(); out != nil {
			if err := sink.SaveGestureFrame(s.stats.Gestures, out.Image()); err != nil {
				s.logger.Warn("Failed to save gesture frame: %s", err)
			}
		}
	}
	return nil
}
