// Package layers implements the ordered layer stack of a document: layer
// attributes, paint order, the active layer and serialization to snapshots.
package layers

import (
	"encoding/json"
	"math"
	"time"

	"github.com/user/layerpaint/pkg/ports"
)

// ID identifies a layer within a session. Zero means "no layer".
type ID int64

// None is the zero ID.
const None ID = 0

// Metadata is an opaque tag attached by external producers, for example a
// reference render imported from the posing studio. The store never
// interprets it.
type Metadata struct {
	Type      string          `json:"type,omitempty"`
	Timestamp time.Time       `json:"timestamp,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Clone returns a deep copy, or nil for nil.
func (m *Metadata) Clone() *Metadata {
	if m == nil {
		return nil
	}
	c := *m
	if m.Payload != nil {
		c.Payload = append(json.RawMessage(nil), m.Payload...)
	}
	return &c
}

// Layer is a named raster surface with compositing attributes.
type Layer struct {
	id        ID
	name      string
	surface   ports.Surface
	visible   bool
	opacity   float64
	blendMode ports.BlendMode
	metadata  *Metadata
}

// ID returns the layer's stable identifier.
func (l *Layer) ID() ID { return l.id }

// Name returns the display name.
func (l *Layer) Name() string { return l.name }

// Surface returns the layer's exclusively owned surface.
func (l *Layer) Surface() ports.Surface { return l.surface }

// Visible reports whether the layer takes part in compositing.
func (l *Layer) Visible() bool { return l.visible }

// Opacity returns the layer opacity in [0, 1].
func (l *Layer) Opacity() float64 { return l.opacity }

// BlendMode returns the layer's blend mode; never an unsupported value.
func (l *Layer) BlendMode() ports.BlendMode { return l.blendMode }

// Metadata returns a copy of the layer's metadata, or nil.
func (l *Layer) Metadata() *Metadata { return l.metadata.Clone() }

// Info is a read-only view of a layer's attributes.
type Info struct {
	ID        ID
	Name      string
	Visible   bool
	Opacity   float64
	BlendMode ports.BlendMode
	Metadata  *Metadata
}

// Info returns the layer's attributes.
func (l *Layer) Info() Info {
	return Info{
		ID:        l.id,
		Name:      l.name,
		Visible:   l.visible,
		Opacity:   l.opacity,
		BlendMode: l.blendMode,
		Metadata:  l.metadata.Clone(),
	}
}

// ClampOpacity limits v to [0, 1]. NaN becomes 0.
func ClampOpacity(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
