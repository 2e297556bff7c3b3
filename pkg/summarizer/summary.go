// Package summarizer builds the run summary of a replay and renders it.
package summarizer

import "time"

// Summary contains everything collected during a replay run.
type Summary struct {
	GeneratedAt time.Time

	Session    SessionInfo
	Document   DocumentInfo
	Replay     ReplayInfo
	Compositor CompositorInfo
	History    HistoryInfo
	Outputs    OutputInfo
}

// SessionInfo identifies the run.
type SessionInfo struct {
	ID         string
	DocumentID string
	Script     string
}

// DocumentInfo describes the final document.
type DocumentInfo struct {
	Width  int
	Height int
	Layers []LayerInfo
}

// LayerInfo is one row of the layer table, bottom layer first.
type LayerInfo struct {
	Name      string
	Visible   bool
	Opacity   float64
	BlendMode string
	Active    bool
}

// ReplayInfo counts what the script did.
type ReplayInfo struct {
	Steps     int
	Gestures  int
	Points    int
	Segments  int
	Skipped   int
	Failures  int
	ScriptMs  int
	ElapsedMs int
	Realtime  bool
}

// CompositorInfo holds the scheduler counters.
type CompositorInfo struct {
	Renders   int
	Immediate int
	Deferred  int
	Forced    int
	Coalesced int
	Failures  int
}

// HistoryInfo describes the history stacks at the end of the run.
type HistoryInfo struct {
	MaxDepth int
	Undo     []string
	Redo     []string
}

// OutputInfo lists written files. Empty paths were not requested.
type OutputInfo struct {
	PNGPath      string
	PNGSize      int64
	PDFPath      string
	PDFSize      int64
	DocumentPath string
	DocumentSize int64
}

// NewSummary creates a Summary stamped with the current time.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithSession sets the session and script identity.
func (b *Builder) WithSession(id, documentID, script string) *Builder {
	b.summary.Session = SessionInfo{ID: id, DocumentID: documentID, Script: script}
	return b
}

// WithDocument sets the final document description.
func (b *Builder) WithDocument(doc DocumentInfo) *Builder {
	b.summary.Document = doc
	return b
}

// WithReplay sets the replay counters.
func (b *Builder) WithReplay(replay ReplayInfo) *Builder {
	b.summary.Replay = replay
	return b
}

// WithCompositor sets the compositor counters.
func (b *Builder) WithCompositor(c CompositorInfo) *Builder {
	b.summary.Compositor = c
	return b
}

// WithHistory sets the history description.
func (b *Builder) WithHistory(h HistoryInfo) *Builder {
	b.summary.History = h
	return b
}

// WithOutputs sets the written files.
func (b *Builder) WithOutputs(o OutputInfo) *Builder {
	b.summary.Outputs = o
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
