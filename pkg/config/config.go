// Package config provides configuration loading and management.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/user/layerpaint/pkg/ports"
	"github.com/user/layerpaint/pkg/session"
	"github.com/user/layerpaint/pkg/stroke"
)

// Config represents the full configuration for layerpaint.
type Config struct {
	// Document
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Background string `yaml:"background"`

	// Engine
	HistoryDepth    int `yaml:"history_depth"`
	FrameIntervalMs int `yaml:"frame_interval_ms"`
	RestoreWorkers  int `yaml:"restore_workers"`

	// Initial tool
	Tool ToolConfig `yaml:"tool"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Debug
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`
}

// ToolConfig is the YAML form of a tool. Replay scripts use the same shape
// for tool changes, where zero fields keep the current value.
type ToolConfig struct {
	Kind          string  `yaml:"kind" json:"kind,omitempty"`
	Size          float64 `yaml:"size" json:"size,omitempty"`
	Opacity       float64 `yaml:"opacity" json:"opacity,omitempty"`
	Color         string  `yaml:"color" json:"color,omitempty"`
	Stabilization *int    `yaml:"stabilization" json:"stabilization,omitempty"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	stabilization := 5
	return Config{
		Width:           800,
		Height:          600,
		HistoryDepth:    50,
		FrameIntervalMs: 16,
		RestoreWorkers:  runtime.NumCPU(),
		Tool: ToolConfig{
			Kind:          string(stroke.Brush),
			Size:          5,
			Opacity:       1,
			Color:         "#000000",
			Stabilization: &stabilization,
		},
		LogLevel: "info",
		DebugDir: "./debug",
	}
}

// LoadFromFile loads configuration from a YAML file on top of Defaults.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Defaults(), err
	}
	return Parse(data)
}

// Parse decodes YAML on top of Defaults. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Defaults()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("%w: canvas %dx%d", ports.ErrInvalidDimension, c.Width, c.Height))
	}
	if c.HistoryDepth < 1 {
		errs = append(errs, fmt.Errorf("history_depth must be at least 1, got %d", c.HistoryDepth))
	}
	if c.FrameIntervalMs < 1 {
		errs = append(errs, fmt.Errorf("frame_interval_ms must be at least 1, got %d", c.FrameIntervalMs))
	}
	if c.RestoreWorkers < 0 {
		errs = append(errs, fmt.Errorf("restore_workers must not be negative, got %d", c.RestoreWorkers))
	}
	if c.Background != "" {
		if _, err := ParseColor(c.Background); err != nil {
			errs = append(errs, fmt.Errorf("background: %w", err))
		}
	}
	if _, err := c.Tool.Apply(stroke.DefaultTool()); err != nil {
		errs = append(errs, fmt.Errorf("tool: %w", err))
	}
	if _, ok := ports.LookupLogLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("unknown log_level %q", c.LogLevel))
	}
	return errors.Join(errs...)
}

// FrameInterval returns the refresh interval as a duration.
func (c Config) FrameInterval() time.Duration {
	return time.Duration(c.FrameIntervalMs) * time.Millisecond
}

// BackgroundColor returns the parsed background, or nil for a transparent
// export.
func (c Config) BackgroundColor() color.Color {
	if c.Background == "" {
		return nil
	}
	bg, err := ParseColor(c.Background)
	if err != nil {
		return nil
	}
	return bg
}

// ToSessionConfig converts Config to session.Config.
func (c Config) ToSessionConfig() (session.Config, error) {
	tool, err := c.Tool.Apply(stroke.DefaultTool())
	if err != nil {
		return session.Config{}, err
	}
	return session.Config{
		Width:          c.Width,
		Height:         c.Height,
		HistoryDepth:   c.HistoryDepth,
		FrameInterval:  c.FrameInterval(),
		RestoreWorkers: c.RestoreWorkers,
		Tool:           tool,
	}, nil
}

// Apply overlays the non-zero fields onto base.
func (t ToolConfig) Apply(base stroke.Tool) (stroke.Tool, error) {
	out := base
	if t.Kind != "" {
		kind, err := stroke.ParseKind(t.Kind)
		if err != nil {
			return base, err
		}
		out.Kind = kind
	}
	if t.Size != 0 {
		if t.Size < 0 {
			return base, fmt.Errorf("size must be positive, got %g", t.Size)
		}
		out.Size = t.Size
	}
	if t.Opacity != 0 {
		if t.Opacity < 0 || t.Opacity > 1 {
			return base, fmt.Errorf("opacity must be within [0, 1], got %g", t.Opacity)
		}
		out.Opacity = t.Opacity
	}
	if t.Color != "" {
		c, err := ParseColor(t.Color)
		if err != nil {
			return base, err
		}
		out.Color = c
	}
	if t.Stabilization != nil {
		if *t.Stabilization < 0 {
			return base, fmt.Errorf("stabilization must not be negative, got %d", *t.Stabilization)
		}
		out.Stabilization = *t.Stabilization
	}
	return out, nil
}
