package config

import (
	"fmt"
	"strings"
)

// CanvasPreset names a common document size.
type CanvasPreset string

const (
	PresetDefault CanvasPreset = "default"
	PresetSquare  CanvasPreset = "square"
	PresetHD      CanvasPreset = "hd"
	PresetA4      CanvasPreset = "a4"
)

// PresetSize returns the canvas size of a preset.
func PresetSize(p CanvasPreset) (width, height int, err error) {
	switch CanvasPreset(strings.ToLower(string(p))) {
	case PresetDefault, "":
		return 800, 600, nil
	case PresetSquare:
		return 1024, 1024, nil
	case PresetHD:
		return 1920, 1080, nil
	case PresetA4:
		// A4 portrait at 150 dpi.
		return 1240, 1754, nil
	default:
		return 0, 0, fmt.Errorf("unknown canvas preset %q", p)
	}
}

// Builder applies command-line overrides on top of a loaded Config.
type Builder struct {
	config Config
	errs   []error
}

// NewBuilder starts from base.
func NewBuilder(base Config) *Builder {
	return &Builder{config: base}
}

// WithPreset sets the canvas size from a preset.
func (b *Builder) WithPreset(p CanvasPreset) *Builder {
	w, h, err := PresetSize(p)
	if err != nil {
		b.errs = append(b.errs, err)
		return b
	}
	b.config.Width, b.config.Height = w, h
	return b
}

// WithSize sets the canvas size. Non-positive values are ignored.
func (b *Builder) WithSize(width, height int) *Builder {
	if width > 0 {
		b.config.Width = width
	}
	if height > 0 {
		b.config.Height = height
	}
	return b
}

// WithBackground sets the export background color.
func (b *Builder) WithBackground(hex string) *Builder {
	b.config.Background = hex
	return b
}

// WithHistoryDepth sets the undo depth.
func (b *Builder) WithHistoryDepth(depth int) *Builder {
	b.config.HistoryDepth = depth
	return b
}

// WithFrameInterval sets the refresh interval in milliseconds.
func (b *Builder) WithFrameInterval(ms int) *Builder {
	b.config.FrameIntervalMs = ms
	return b
}

// WithRestoreWorkers sets the number of decode workers.
func (b *Builder) WithRestoreWorkers(n int) *Builder {
	b.config.RestoreWorkers = n
	return b
}

// WithTool overlays tool fields. Zero fields keep the current value.
func (b *Builder) WithTool(t ToolConfig) *Builder {
	if t.Kind != "" {
		b.config.Tool.Kind = t.Kind
	}
	if t.Size != 0 {
		b.config.Tool.Size = t.Size
	}
	if t.Opacity != 0 {
		b.config.Tool.Opacity = t.Opacity
	}
	if t.Color != "" {
		b.config.Tool.Color = t.Color
	}
	if t.Stabilization != nil {
		b.config.Tool.Stabilization = t.Stabilization
	}
	return b
}

// WithLogLevel sets the log level.
func (b *Builder) WithLogLevel(level string) *Builder {
	b.config.LogLevel = level
	return b
}

// WithDebug enables debug output into dir. An empty dir keeps the current one.
func (b *Builder) WithDebug(enabled bool, dir string) *Builder {
	b.config.Debug = enabled
	if dir != "" {
		b.config.DebugDir = dir
	}
	return b
}

// Build validates and returns the Config.
func (b *Builder) Build() (Config, error) {
	if len(b.errs) > 0 {
		return b.config, b.errs[0]
	}
	if err := b.config.Validate(); err != nil {
		return b.config, err
	}
	return b.config, nil
}
