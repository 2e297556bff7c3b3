// Package stroke turns pointer samples into line segments on a surface,
// smoothing the input with a short moving average.
package stroke

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/user/layerpaint/pkg/ports"
)

// Kind selects the active tool.
type Kind string

const (
	Pencil    Kind = "pencil"
	Brush     Kind = "brush"
	Marker    Kind = "marker"
	Airbrush  Kind = "airbrush"
	Eraser    Kind = "eraser"
	Selection Kind = "selection"
	Gradient  Kind = "gradient"
)

// ParseKind parses a tool name case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case Pencil, Brush, Marker, Airbrush, Eraser, Selection, Gradient:
		return k, nil
	default:
		return "", fmt.Errorf("unknown tool %q", s)
	}
}

// Draws reports whether the tool paints strokes. Selection and gradient are
// dispatched elsewhere.
func (k Kind) Draws() bool {
	switch k {
	case Pencil, Brush, Marker, Airbrush, Eraser:
		return true
	default:
		return false
	}
}

// Tool holds the parameters of the active tool.
type Tool struct {
	Kind          Kind
	Size          float64
	Opacity       float64
	Color         color.Color
	Stabilization int
}

// DefaultTool returns a 5px black brush with stabilization 5.
func DefaultTool() Tool {
	return Tool{
		Kind:          Brush,
		Size:          5,
		Opacity:       1,
		Color:         color.Black,
		Stabilization: 5,
	}
}

// Normalized returns a copy with a finite size of at least 1, opacity in
// [0, 1], a non-negative stabilization level and a color.
func (t Tool) Normalized() Tool {
	if t.Size < 1 || math.IsNaN(t.Size) || math.IsInf(t.Size, 0) {
		t.Size = 1
	}
	switch {
	case t.Opacity != t.Opacity || t.Opacity < 0:
		t.Opacity = 0
	case t.Opacity > 1:
		t.Opacity = 1
	}
	if t.Stabilization < 0 {
		t.Stabilization = 0
	}
	if t.Color == nil {
		t.Color = color.Black
	}
	if t.Kind == "" {
		t.Kind = Brush
	}
	return t
}

// Style returns the frozen stroke style for the tool. Pencil uses square caps
// and miter joins; eraser removes pixels; every other tool uses round caps and
// joins.
func (t Tool) Style() ports.StrokeStyle {
	t = t.Normalized()
	style := ports.StrokeStyle{
		Color:     t.Color,
		Width:     t.Size,
		Cap:       ports.CapRound,
		Join:      ports.JoinRound,
		Alpha:     t.Opacity,
		Composite: ports.CompositeSourceOver,
	}
	switch t.Kind {
	case Pencil:
		style.Cap = ports.CapSquare
		style.Join = ports.JoinMiter
	case Eraser:
		style.Composite = ports.CompositeDestinationOut
	}
	return style
}

// Label is the history label of a stroke made with the tool.
func (t Tool) Label() string {
	return string(t.Kind) + " stroke"
}
