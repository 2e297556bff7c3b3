package replay

import (
	"fmt"
	"time"

	"github.com/user/layerpaint/pkg/filters"
	"github.com/user/layerpaint/pkg/layers"
	"github.com/user/layerpaint/pkg/pipeline"
	"github.com/user/layerpaint/pkg/ports"
	"github.com/user/layerpaint/pkg/session"
)

// event is one session call at an offset from the start of the replay.
// step is -1 for the document setup event.
type event struct {
	at   time.Duration
	step int
	op   string
	run  func(*session.Session) error
}

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}

// expand turns normalized steps into session calls ordered by time. A
// stroke becomes a pointer down, one move per further point and a pointer
// up at its last point.
func expand(script pipeline.Script) []event {
	var events []event
	for i, step := range script.Steps {
		at := ms(step.At)
		add := func(offset time.Duration, op string, fn func(*session.Session) error) {
			events = append(events, event{at: at + offset, step: i, op: op, run: fn})
		}

		switch step.Op {
		case "down":
			add(0, step.Op, func(s *session.Session) error { return s.PointerDown(point(step.X, step.Y)) })
		case "move":
			add(0, step.Op, func(s *session.Session) error { return s.PointerMove(point(step.X, step.Y)) })
		case "up":
			add(0, step.Op, func(s *session.Session) error { return s.PointerUp() })
		case "stroke":
			interval := ms(step.IntervalMs)
			first := step.Points[0]
			add(0, "down", func(s *session.Session) error { return s.PointerDown(point(first[0], first[1])) })
			for j, p := range step.Points[1:] {
				add(time.Duration(j+1)*interval, "move", func(s *session.Session) error {
					return s.PointerMove(point(p[0], p[1]))
				})
			}
			add(step.Duration(), "up", func(s *session.Session) error { return s.PointerUp() })
		default:
			add(0, step.Op, func(s *session.Session) error { return command(s, step) })
		}
	}
	return events
}

func point(x, y float64) ports.Point {
	return ports.Point{X: x, Y: y}
}

// command runs a non-pointer step.
func command(s *session.Session, step pipeline.Step) error {
	switch step.Op {
	case "tool":
		t, err := step.Tool.Apply(s.Tool())
		if err != nil {
			return err
		}
		s.SetTool(t)
		return nil
	case "add_layer":
		_, err := s.AddLayer(step.Name)
		return err
	case "undo":
		_, err := s.Undo()
		return err
	case "redo":
		_, err := s.Redo()
		return err
	case "resize":
		return s.Resize(step.Width, step.Height)
	}

	id, err := resolve(s, step.Layer)
	if err != nil {
		return err
	}
	switch step.Op {
	case "remove_layer":
		return s.RemoveLayer(id)
	case "select":
		return s.SelectLayer(id)
	case "opacity":
		return s.SetOpacity(id, step.Value)
	case "blend":
		_, err := s.SetBlendMode(id, ports.BlendMode(step.Mode))
		return err
	case "toggle":
		_, err := s.ToggleVisibility(id)
		return err
	case "reorder":
		target, err := resolve(s, step.Target)
		if err != nil {
			return err
		}
		return s.Reorder(id, target)
	case "rename":
		return s.Rename(id, step.Name)
	case "duplicate":
		_, err := s.DuplicateLayer(id)
		return err
	case "merge_down":
		return s.MergeDown(id)
	case "filter":
		return s.ApplyFilter(id, filters.Name(step.Filter))
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
}

// resolve finds a layer by name. An empty name means the active layer.
func resolve(s *session.Session, name string) (layers.ID, error) {
	store := s.Store()
	if name == "" {
		if id := store.ActiveID(); id != layers.None {
			return id, nil
		}
		return layers.None, fmt.Errorf("no active layer: %w", ports.ErrNotFound)
	}
	l, ok := store.FindByName(name)
	if !ok {
		return layers.None, fmt.Errorf("layer %q: %w", name, ports.ErrNotFound)
	}
	return l.ID(), nil
}
