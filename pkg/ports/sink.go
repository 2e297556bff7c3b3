package ports

import (
	"image"
)

// DebugSink receives intermediate results of an editing session so they can be
// inspected after the fact.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveGestureFrame saves the composited output after a completed gesture.
	SaveGestureFrame(index int, img image.Image) error

	// SaveLayerImage saves a single layer's pixels.
	SaveLayerImage(index int, name string, img image.Image) error

	// SaveHistoryJSON saves a description of the undo and redo stacks.
	SaveHistoryJSON(data []byte) error

	// SaveScriptJSON saves the normalized replay script.
	SaveScriptJSON(data []byte) error
}
