package replay

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/user/layerpaint/pkg/filters"
	"github.com/user/layerpaint/pkg/pipeline"
	"github.com/user/layerpaint/pkg/ports"
)

// DefaultPointIntervalMs spaces stroke points when neither the step nor the
// script sets an interval.
const DefaultPointIntervalMs = 16

var knownOps = map[string]bool{
	"down": true, "move": true, "up": true, "stroke": true, "tool": true,
	"add_layer": true, "remove_layer": true, "select": true, "opacity": true,
	"blend": true, "toggle": true, "reorder": true, "rename": true,
	"duplicate": true, "merge_down": true, "filter": true, "resize": true,
	"undo": true, "redo": true,
}

// ParseScript decodes a YAML script, checks every step and resolves step
// times to absolute offsets.
func ParseScript(data []byte) (pipeline.Script, error) {
	var script pipeline.Script
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&script); err != nil {
		if errors.Is(err, io.EOF) {
			return script, errors.New("parse script: empty script")
		}
		return script, fmt.Errorf("parse script: %w", err)
	}
	if err := Normalize(&script); err != nil {
		return script, fmt.Errorf("parse script: %w", err)
	}
	return script, nil
}

// Normalize validates script in place, fills stroke intervals and converts
// relative step times to absolute ones.
func Normalize(script *pipeline.Script) error {
	if script.Width < 0 || script.Height < 0 {
		return fmt.Errorf("%w: script canvas %dx%d", ports.ErrInvalidDimension, script.Width, script.Height)
	}
	if script.FrameIntervalMs < 0 {
		return fmt.Errorf("frame_interval_ms must not be negative")
	}
	defaultInterval := script.FrameIntervalMs
	if defaultInterval == 0 {
		defaultInterval = DefaultPointIntervalMs
	}

	cursor := 0
	var errs []error
	for i := range script.Steps {
		step := &script.Steps[i]
		if err := checkStep(*step); err != nil {
			errs = append(errs, fmt.Errorf("step %d (%s): %w", i, step.Op, err))
			continue
		}
		if step.Op == "stroke" && step.IntervalMs <= 0 {
			step.IntervalMs = defaultInterval
		}

		switch {
		case step.At == 0:
			step.At = cursor + step.Wait
		case step.At < cursor:
			errs = append(errs, fmt.Errorf("step %d (%s): at %dms is before the previous step ends at %dms",
				i, step.Op, step.At, cursor))
			continue
		}
		cursor = step.At + int(step.Duration().Milliseconds())
	}
	return errors.Join(errs...)
}

func checkStep(s pipeline.Step) error {
	if !knownOps[s.Op] {
		return fmt.Errorf("unknown op")
	}
	if s.At < 0 || s.Wait < 0 {
		return fmt.Errorf("negative time")
	}
	switch s.Op {
	case "stroke":
		if len(s.Points) == 0 {
			return fmt.Errorf("stroke needs at least one point")
		}
	case "tool":
		if s.Tool == nil {
			return fmt.Errorf("missing tool")
		}
	case "blend":
		if s.Mode == "" {
			return fmt.Errorf("missing mode")
		}
	case "filter":
		if _, err := filters.Parse(s.Filter); err != nil {
			return err
		}
	case "resize":
		if s.Width <= 0 || s.Height <= 0 {
			return fmt.Errorf("%w: resize to %dx%d", ports.ErrInvalidDimension, s.Width, s.Height)
		}
	case "rename":
		if s.Name == "" {
			return fmt.Errorf("missing name")
		}
	case "reorder":
		if s.Layer == "" || s.Target == "" {
			return fmt.Errorf("reorder needs layer and target")
		}
	}
	return nil
}

// Parser is the stage that turns a script file into a Script.
type Parser struct {
	logger ports.Logger
}

// NewParser creates a Parser.
func NewParser(logger ports.Logger) *Parser {
	return &Parser{logger: logger.WithComponent("replay")}
}

// Execute implements pipeline.Stage.
func (p *Parser) Execute(ctx context.Context, input pipeline.ScriptInput) (pipeline.Script, error) {
	script, err := ParseScript(input.Data)
	if err != nil {
		return script, err
	}
	if script.Name == "" {
		script.Name = input.Name
	}
	p.logger.Debug("Parsed script %s: %d steps", script.Name, len(script.Steps))
	return script, nil
}

var _ pipeline.Stage[pipeline.ScriptInput, pipeline.Script] = (*Parser)(nil)
