// Package session implements the drawing session controller: the pointer
// state machine that turns gestures into strokes, and the command surface
// that applies layer operations with undo history.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/user/layerpaint/pkg/compositor"
	"github.com/user/layerpaint/pkg/document"
	"github.com/user/layerpaint/pkg/history"
	"github.com/user/layerpaint/pkg/layers"
	"github.com/user/layerpaint/pkg/ports"
	"github.com/user/layerpaint/pkg/stroke"
)

var (
	// ErrPartialLoad reports a document that loaded with some layers skipped.
	ErrPartialLoad = errors.New("some layers could not be loaded")
	// ErrDrawing rejects a layer command issued while a stroke is in progress.
	ErrDrawing = errors.New("stroke in progress")
)

// State is the pointer state of a session.
type State int

const (
	Idle State = iota
	Drawing
)

func (s State) String() string {
	if s == Drawing {
		return "drawing"
	}
	return "idle"
}

// Config holds the session parameters.
type Config struct {
	Width          int
	Height         int
	HistoryDepth   int
	FrameInterval  time.Duration
	RestoreWorkers int
	Tool           stroke.Tool
}

// DefaultConfig returns an 800x600 document with default history depth and
// refresh interval.
func DefaultConfig() Config {
	return Config{
		Width:         800,
		Height:        600,
		HistoryDepth:  history.DefaultMaxDepth,
		FrameInterval: compositor.DefaultThreshold,
		Tool:          stroke.DefaultTool(),
	}
}

// Deps are the host capabilities a session runs against. Notifier, Sink and
// FileSystem may be nil.
type Deps struct {
	Provider   ports.SurfaceProvider
	Scheduler  ports.FrameScheduler
	Clock      ports.Clock
	Notifier   ports.Notifier
	Sink       ports.DebugSink
	FileSystem ports.FileSystem
	Logger     ports.Logger
}

// Stats counts what a session has done.
type Stats struct {
	Gestures int
	Points   int
	Segments int
	Skipped  int
	Commands int
	Failures int
}

// Session owns one document and its engines. Calls must be serialized by
// the host, typically on a frameloop.Loop.
type Session struct {
	id     string
	docID  string
	cfg    Config
	deps   Deps
	logger ports.Logger

	store   *layers.Store
	comp    *compositor.Compositor
	strokes *stroke.Engine
	history *history.Engine

	state       State
	strokeLayer layers.ID
	stats       Stats
	closed      bool
}

// New creates a session with an empty document of the configured size.
func New(cfg Config, deps Deps) (*Session, error) {
	if deps.Provider == nil || deps.Scheduler == nil || deps.Clock == nil || deps.Logger == nil {
		return nil, errors.New("session: provider, scheduler, clock and logger are required")
	}
	logger := deps.Logger.WithComponent("session")

	store, err := layers.NewStore(deps.Provider, deps.Logger, cfg.Width, cfg.Height)
	if err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}
	if cfg.RestoreWorkers > 0 {
		store.SetRestoreWorkers(cfg.RestoreWorkers)
	}

	comp := compositor.New(store, deps.Provider, deps.Scheduler, deps.Clock, deps.Logger, cfg.FrameInterval)
	store.SetInvalidator(comp)

	strokes := stroke.NewEngine(comp, deps.Logger)
	if cfg.Tool.Kind != "" {
		strokes.SetTool(cfg.Tool)
	}

	s := &Session{
		id:      uuid.NewString(),
		cfg:     cfg,
		deps:    deps,
		logger:  logger,
		store:   store,
		comp:    comp,
		strokes: strokes,
		history: history.New(cfg.HistoryDepth, deps.Notifier, deps.Logger),
	}
	logger.Info("Starting session %s (%dx%d)", s.id, cfg.Width, cfg.Height)
	return s, nil
}

// ID returns the session UUID.
func (s *Session) ID() string { return s.id }

// DocumentID returns the id the document is saved under, once saved or loaded.
func (s *Session) DocumentID() string { return s.docID }

// State returns the pointer state.
func (s *Session) State() State { return s.state }

// Store exposes the layer store for inspection. Mutations should go through
// the session so they are recorded in history.
func (s *Session) Store() *layers.Store { return s.store }

// History exposes the history engine.
func (s *Session) History() *history.Engine { return s.history }

// Compositor exposes the compositor.
func (s *Session) Compositor() *compositor.Compositor { return s.comp }

// Tool returns the current tool.
func (s *Session) Tool() stroke.Tool { return s.strokes.Tool() }

// SetTool replaces the current tool. A stroke in progress keeps its style.
func (s *Session) SetTool(t stroke.Tool) {
	s.strokes.SetTool(t)
}

// Stats returns the session counters.
func (s *Session) Stats() Stats { return s.stats }

// Close cancels any stroke in progress, stops the compositor and releases
// every surface.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	if s.state == Drawing {
		s.strokes.Cancel()
		s.state = Idle
	}
	s.comp.Close()
	s.store.Clear()
	s.history.Reset()
}

// fail reports err through the notifier and returns it. Missing targets are
// warnings, everything else is an error.
func (s *Session) fail(err error) error {
	s.stats.Failures++
	severity := ports.SeverityError
	if errors.Is(err, ports.ErrNotFound) || errors.Is(err, layers.ErrNothingBelow) || errors.Is(err, ErrDrawing) {
		severity = ports.SeverityWarning
	}
	s.notify(err.Error(), severity)
	return err
}

func (s *Session) notify(msg string, severity ports.Severity) {
	if s.deps.Notifier != nil {
		s.deps.Notifier.Notify(msg, severity)
	}
}

// ensureOpen guards every entry point after Close.
func (s *Session) ensureOpen() error {
	if s.closed {
		return errors.New("session closed")
	}
	return nil
}

// Output renders if anything is outstanding and returns the composited image.
func (s *Session) Output() (ports.Surface, error) {
	if err := s.ensureOpen(); err != nil {
		return nil, err
	}
	if s.comp.Output() == nil || s.comp.Pending() || len(s.comp.Dirty()) > 0 {
		if err := s.comp.ForceUpdate(); err != nil {
			return nil, s.fail(err)
		}
	}
	return s.comp.Output(), nil
}

// Save writes the document file to path.
func (s *Session) Save(path string) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	if s.deps.FileSystem == nil {
		return s.fail(errors.New("save: no file system configured"))
	}
	doc := document.FromSnapshot(s.store.Snapshot("save"), s.docID, s.deps.Clock.Now())
	if err := document.Save(s.deps.FileSystem, path, doc); err != nil {
		return s.fail(err)
	}
	s.docID = doc.ID
	s.logger.Info("Document saved to %s", path)
	s.notify(fmt.Sprintf("Saved %s", path), ports.SeveritySuccess)
	return nil
}

// Load replaces the document with the file at path and clears history. Layers
// that fail to decode are skipped and reported; the rest are loaded.
func (s *Session) Load(path string) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}
	if s.deps.FileSystem == nil {
		return s.fail(errors.New("load: no file system configured"))
	}
	if s.state == Drawing {
		s.strokes.Cancel()
		s.state = Idle
	}
	doc, err := document.Load(s.deps.FileSystem, path)
	if err != nil {
		return s.fail(err)
	}
	s.history.Reset()
	s.docID = doc.ID
	if err := s.store.Restore(doc.Snapshot()); err != nil {
		s.stats.Failures++
		s.notify(fmt.Sprintf("Some layers could not be loaded: %s", err), ports.SeverityWarning)
		return fmt.Errorf("load %s: %w: %w", path, ErrPartialLoad, err)
	}
	s.logger.Info("Document loaded from %s", path)
	return nil
}

// DumpDebug writes every layer image and the history labels to the debug
// sink. It is a no-op when the sink is disabled.
func (s *Session) DumpDebug() error {
	sink := s.deps.Sink
	if sink == nil || !sink.Enabled() {
		return nil
	}
	var errs []error
	for i, l := range s.store.Layers() {
		if err := sink.SaveLayerImage(i, l.Name(), l.Surface().Image()); err != nil {
			errs = append(errs, err)
		}
	}

	undo, redo := s.history.Labels()
	data, err := json.MarshalIndent(struct {
		Session string   `json:"session"`
		Undo    []string `json:"undo"`
		Redo    []string `json:"redo"`
	}{s.id, undo, redo}, "", "  ")
	if err == nil {
		err = sink.SaveHistoryJSON(data)
	}
	if err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
