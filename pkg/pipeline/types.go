package pipeline

import (
	"image"
	"image/color"
	"time"

	"github.com/user/layerpaint/pkg/config"
)

// =============================================================================
// Script Types
// =============================================================================

// Script is a timed sequence of pointer events and commands.
type Script struct {
	Name            string `yaml:"name" json:"name,omitempty"`
	Width           int    `yaml:"width" json:"width"`
	Height          int    `yaml:"height" json:"height"`
	FrameIntervalMs int    `yaml:"frame_interval_ms" json:"frameIntervalMs"`
	Steps           []Step `yaml:"steps" json:"steps"`
}

// Step is one scripted operation. At is the time in milliseconds from the
// start of the script; when it is zero the step follows the previous one
// after Wait milliseconds. Layers are referenced by name; an empty Layer
// means the active layer.
type Step struct {
	At   int    `yaml:"at" json:"at"`
	Wait int    `yaml:"wait" json:"wait,omitempty"`
	Op   string `yaml:"op" json:"op"`

	// Pointer
	X          float64      `yaml:"x" json:"x,omitempty"`
	Y          float64      `yaml:"y" json:"y,omitempty"`
	Points     [][2]float64 `yaml:"points" json:"points,omitempty"`
	IntervalMs int          `yaml:"interval_ms" json:"intervalMs,omitempty"`

	// Commands
	Layer  string             `yaml:"layer" json:"layer,omitempty"`
	Target string             `yaml:"target" json:"target,omitempty"`
	Name   string             `yaml:"name" json:"name,omitempty"`
	Value  float64            `yaml:"value" json:"value,omitempty"`
	Mode   string             `yaml:"mode" json:"mode,omitempty"`
	Filter string             `yaml:"filter" json:"filter,omitempty"`
	Width  int                `yaml:"width" json:"width,omitempty"`
	Height int                `yaml:"height" json:"height,omitempty"`
	Tool   *config.ToolConfig `yaml:"tool" json:"tool,omitempty"`
}

// Duration returns how long the step occupies the timeline.
func (s Step) Duration() time.Duration {
	if s.Op != "stroke" || len(s.Points) < 2 {
		return 0
	}
	return time.Duration((len(s.Points)-1)*s.IntervalMs) * time.Millisecond
}

// ScriptInput is the raw script file.
type ScriptInput struct {
	Name string
	Data []byte
}

// =============================================================================
// Replay Stage Types
// =============================================================================

// ReplayInput contains the script to replay.
type ReplayInput struct {
	Script   Script
	Realtime bool // pace steps against the wall clock
}

// ReplayResult describes a finished replay.
type ReplayResult struct {
	Steps          int
	Events         int
	Failures       []StepFailure
	ScriptDuration time.Duration
	Elapsed        time.Duration
	Ticks          int
}

// StepFailure records a step that failed; the replay continues after it.
type StepFailure struct {
	Index int    `json:"index"`
	Op    string `json:"op"`
	Error string `json:"error"`
}

// =============================================================================
// Export Stage Types
// =============================================================================

// ExportInput contains the composited image to export.
type ExportInput struct {
	Image      image.Image
	Background color.Color // nil keeps transparency
	PDF        bool
	Title      string
}

// ExportResult contains the encoded outputs.
type ExportResult struct {
	PNG []byte
	PDF []byte
}
