// Package history keeps bounded undo and redo stacks of layer snapshots.
package history

import (
	"fmt"

	"github.com/user/layerpaint/pkg/layers"
	"github.com/user/layerpaint/pkg/ports"
)

// DefaultMaxDepth is the per-stack bound used when none is configured.
const DefaultMaxDepth = 50

// Snapshotter is the part of the layer store the history engine drives.
type Snapshotter interface {
	Snapshot(label string) *layers.Snapshot
	Restore(snap *layers.Snapshot) error
}

// Engine holds the undo and redo stacks. Each stack keeps at most maxDepth
// entries and evicts the oldest first.
type Engine struct {
	maxDepth int
	undo     []*layers.Snapshot
	redo     []*layers.Snapshot
	notifier ports.Notifier
	logger   ports.Logger
}

// New creates an Engine. A non-positive maxDepth selects DefaultMaxDepth.
// notifier may be nil.
func New(maxDepth int, notifier ports.Notifier, logger ports.Logger) *Engine {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Engine{
		maxDepth: maxDepth,
		notifier: notifier,
		logger:   logger.WithComponent("history"),
	}
}

// MaxDepth returns the per-stack bound.
func (e *Engine) MaxDepth() int { return e.maxDepth }

// Record pushes a snapshot of the current state before a forward mutation.
// The redo stack is always cleared.
func (e *Engine) Record(store Snapshotter, label string) {
	e.undo = push(e.undo, store.Snapshot(label), e.maxDepth)
	clear(e.redo)
	e.redo = e.redo[:0]
	e.logger.Debug("Recorded history entry %q (%d undo, %d redo)", label, len(e.undo), len(e.redo))
}

// Undo restores the most recent undo entry after saving the current state to
// the redo stack. ok is false when there is nothing to undo.
func (e *Engine) Undo(store Snapshotter) (string, bool, error) {
	if len(e.undo) == 0 {
		e.notify("Nothing to undo")
		return "", false, nil
	}
	entry := pop(&e.undo)
	e.redo = push(e.redo, store.Snapshot(entry.Label), e.maxDepth)

	if err := store.Restore(entry); err != nil {
		return entry.Label, true, fmt.Errorf("undo %q: %w", entry.Label, err)
	}
	e.logger.Debug("Undid %s", entry.Label)
	return entry.Label, true, nil
}

// Redo is the mirror of Undo.
func (e *Engine) Redo(store Snapshotter) (string, bool, error) {
	if len(e.redo) == 0 {
		e.notify("Nothing to redo")
		return "", false, nil
	}
	entry := pop(&e.redo)
	e.undo = push(e.undo, store.Snapshot(entry.Label), e.maxDepth)

	if err := store.Restore(entry); err != nil {
		return entry.Label, true, fmt.Errorf("redo %q: %w", entry.Label, err)
	}
	e.logger.Debug("Redid %s", entry.Label)
	return entry.Label, true, nil
}

// Reset drops both stacks.
func (e *Engine) Reset() {
	e.undo = nil
	e.redo = nil
}

// CanUndo reports whether Undo would restore something.
func (e *Engine) CanUndo() bool { return len(e.undo) > 0 }

// CanRedo reports whether Redo would restore something.
func (e *Engine) CanRedo() bool { return len(e.redo) > 0 }

// Depth returns the sizes of the undo and redo stacks.
func (e *Engine) Depth() (undo, redo int) { return len(e.undo), len(e.redo) }

// Labels returns the undo labels oldest first, then the redo labels with the
// next redo first.
func (e *Engine) Labels() (undo, redo []string) {
	for _, s := range e.undo {
		undo = append(undo, s.Label)
	}
	for i := len(e.redo) - 1; i >= 0; i-- {
		redo = append(redo, e.redo[i].Label)
	}
	return undo, redo
}

// Entries returns the undo stack oldest first. The snapshots are shared and
// must not be modified.
func (e *Engine) Entries() []*layers.Snapshot {
	out := make([]*layers.Snapshot, len(e.undo))
	copy(out, e.undo)
	return out
}

func (e *Engine) notify(msg string) {
	e.logger.Info(msg)
	if e.notifier != nil {
		e.notifier.Notify(msg, ports.SeverityInfo)
	}
}

func push(stack []*layers.Snapshot, s *layers.Snapshot, max int) []*layers.Snapshot {
	stack = append(stack, s)
	if over := len(stack) - max; over > 0 {
		clear(stack[:over])
		stack = append(stack[:0], stack[over:]...)
	}
	return stack
}

func pop(stack *[]*layers.Snapshot) *layers.Snapshot {
	s := *stack
	top := s[len(s)-1]
	s[len(s)-1] = nil
	*stack = s[:len(s)-1]
	return top
}
