// Package nullsink provides a no-op debug sink implementation.
package nullsink

import (
	"image"

	"github.com/user/layerpaint/pkg/ports"
)

// Sink is a no-op implementation of ports.DebugSink.
// It discards all debug output.
type Sink struct{}

// New creates a new NullSink.
func New() *Sink {
	return &Sink{}
}

// Enabled returns false as this sink discards all output.
func (s *Sink) Enabled() bool {
	return false
}

func (s *Sink) SaveGestureFrame(index int, img image.Image) error            { return nil }
func (s *Sink) SaveLayerImage(index int, name string, img image.Image) error { return nil }
func (s *Sink) SaveHistoryJSON(data []byte) error                            { return nil }
func (s *Sink) SaveScriptJSON(data []byte) error                             { return nil }

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
