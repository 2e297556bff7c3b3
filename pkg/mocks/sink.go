package mocks

import (
	"image"
	"sync"

	"github.com/user/layerpaint/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	GestureFrames map[int]image.Image
	LayerImages   map[string]image.Image
	HistoryJSON   []byte
	ScriptJSON    []byte
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled:       enabled,
		GestureFrames: make(map[int]image.Image),
		LayerImages:   make(map[string]image.Image),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveGestureFrame(index int, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GestureFrames[index] = img
	return nil
}

func (m *DebugSink) SaveLayerImage(index int, name string, img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LayerImages[name] = img
	return nil
}

func (m *DebugSink) SaveHistoryJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.HistoryJSON = data
	return nil
}

func (m *DebugSink) SaveScriptJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ScriptJSON = data
	return nil
}

// FrameCount returns the number of saved gesture frames.
func (m *DebugSink) FrameCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.GestureFrames)
}

var _ ports.DebugSink = (*DebugSink)(nil)
