package session

import (
	"fmt"

	"github.com/user/layerpaint/pkg/filters"
	"github.com/user/layerpaint/pkg/layers"
	"github.com/user/layerpaint/pkg/ports"
)

// begin is the common prologue of a forward mutation: the session must be
// open and idle, and the target must exist. History is recorded only when
// every check passes.
func (s *Session) begin(label string, ids ...layers.ID) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	if s.state == Drawing {
		s.logger.Debug("Command %s rejected while drawing", label)
		return s.fail(fmt.Errorf("%s: %w", label, ErrDrawing))
	}
	for _, id := range ids {
		if _, ok := s.store.Layer(id); !ok {
			s.logger.Warn("Layer %d not found (%s)", id, label)
			return s.fail(fmt.Errorf("%s: layer %d: %w", label, id, ports.ErrNotFound))
		}
	}
	s.stats.Commands++
	s.history.Record(s.store, label)
	return nil
}

// NewDocument discards the document and history and starts over at the
// given size with a single "Background" layer.
func (s *Session) NewDocument(width, height int) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	if width <= 0 || height <= 0 {
		return s.fail(fmt.Errorf("new document: %w: %dx%d", ports.ErrInvalidDimension, width, height))
	}
	if s.state == Drawing {
		s.strokes.Cancel()
		s.state = Idle
	}
	s.store.Clear()
	if err := s.store.Resize(width, height); err != nil {
		return s.fail(err)
	}
	s.history.Reset()
	s.docID = ""
	if _, err := s.store.AddLayer("Background"); err != nil {
		return s.fail(err)
	}
	s.stats.Commands++
	return nil
}

// AddLayer adds a transparent layer on top and makes it active.
func (s *Session) AddLayer(name string) (layers.ID, error) {
	if err := s.begin("add layer"); err != nil {
		return layers.None, err
	}
	l, err := s.store.AddLayer(name)
	if err != nil {
		return layers.None, s.fail(err)
	}
	return l.ID(), nil
}

// RemoveLayer removes a layer.
func (s *Session) RemoveLayer(id layers.ID) error {
	if err := s.begin("remove layer", id); err != nil {
		return err
	}
	return s.check(s.store.RemoveLayer(id))
}

// SelectLayer makes a layer active. Selection is not recorded in history.
func (s *Session) SelectLayer(id layers.ID) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	return s.check(s.store.SelectLayer(id))
}

// SetOpacity sets a layer's opacity, clamped to [0, 1].
func (s *Session) SetOpacity(id layers.ID, value float64) error {
	if err := s.begin("opacity", id); err != nil {
		return err
	}
	return s.check(s.store.SetOpacity(id, value))
}

// SetBlendMode sets a layer's blend mode and returns the mode applied.
// Unknown modes fall back to normal with a warning.
func (s *Session) SetBlendMode(id layers.ID, mode ports.BlendMode) (ports.BlendMode, error) {
	if err := s.begin("blend mode", id); err != nil {
		return "", err
	}
	applied, err := s.store.SetBlendMode(id, mode)
	if !mode.Valid() {
		s.notify(fmt.Sprintf("Unknown blend mode %q, using %s", mode, applied), ports.SeverityWarning)
	}
	return applied, s.check(err)
}

// ToggleVisibility flips a layer's visibility and returns the new value.
func (s *Session) ToggleVisibility(id layers.ID) (bool, error) {
	if err := s.begin("visibility", id); err != nil {
		return false, err
	}
	visible, err := s.store.ToggleVisibility(id)
	return visible, s.check(err)
}

// Reorder moves dragged directly below target in paint order.
func (s *Session) Reorder(dragged, target layers.ID) error {
	if err := s.begin("reorder layers", dragged, target); err != nil {
		return err
	}
	return s.check(s.store.Reorder(dragged, target))
}

// Rename changes a layer's name.
func (s *Session) Rename(id layers.ID, name string) error {
	if err := s.begin("rename layer", id); err != nil {
		return err
	}
	return s.check(s.store.Rename(id, name))
}

// DuplicateLayer copies a layer above itself and returns the new id.
func (s *Session) DuplicateLayer(id layers.ID) (layers.ID, error) {
	if err := s.begin("duplicate layer", id); err != nil {
		return layers.None, err
	}
	l, err := s.store.DuplicateLayer(id)
	if err != nil {
		return layers.None, s.fail(err)
	}
	return l.ID(), nil
}

// MergeDown merges a layer into the one below it.
func (s *Session) MergeDown(id layers.ID) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	if all := s.store.Layers(); len(all) > 0 && all[0].ID() == id {
		return s.fail(fmt.Errorf("merge down layer %d: %w", id, layers.ErrNothingBelow))
	}
	if err := s.begin("merge down", id); err != nil {
		return err
	}
	return s.check(s.store.MergeDown(id))
}

// ApplyFilter runs a filter over a layer.
func (s *Session) ApplyFilter(id layers.ID, name filters.Name) error {
	if _, err := filters.Parse(string(name)); err != nil {
		return s.fail(err)
	}
	if err := s.begin(fmt.Sprintf("%s filter", name), id); err != nil {
		return err
	}
	l, _ := s.store.Layer(id)
	if err := filters.Apply(l.Surface(), name); err != nil {
		return s.fail(err)
	}
	s.comp.MarkDirty(id)
	s.comp.ScheduleUpdate()
	return nil
}

// Resize changes the document size, keeping content anchored top-left.
func (s *Session) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return s.fail(fmt.Errorf("resize: %w: %dx%d", ports.ErrInvalidDimension, width, height))
	}
	if err := s.begin("resize"); err != nil {
		return err
	}
	return s.check(s.store.Resize(width, height))
}

// Undo restores the state before the last recorded mutation. It reports
// whether anything was undone.
func (s *Session) Undo() (bool, error) {
	if err := s.ensureOpen(); err != nil {
		return false, err
	}
	if s.state == Drawing {
		s.logger.Debug("Undo ignored while drawing")
		return false, nil
	}
	_, ok, err := s.history.Undo(s.store)
	return ok, s.check(err)
}

// Redo re-applies the last undone mutation.
func (s *Session) Redo() (bool, error) {
	if err := s.ensureOpen(); err != nil {
		return false, err
	}
	if s.state == Drawing {
		s.logger.Debug("Redo ignored while drawing")
		return false, nil
	}
	_, ok, err := s.history.Redo(s.store)
	return ok, s.check(err)
}

func (s *Session) check(err error) error {
	if err != nil {
		return s.fail(err)
	}
	return nil
}
