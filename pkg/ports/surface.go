package ports

import (
	"image"
	"image/color"
)

// Point is a position in surface coordinates.
type Point struct {
	X float64
	Y float64
}

// LineCap selects how open stroke ends are drawn.
type LineCap int

const (
	CapButt LineCap = iota
	CapRound
	CapSquare
)

// LineJoin selects how consecutive segments meet.
type LineJoin int

const (
	JoinMiter LineJoin = iota
	JoinRound
	JoinBevel
)

// CompositeOp is the operator used when a stroke is applied to a surface.
type CompositeOp int

const (
	// CompositeSourceOver paints the stroke color over existing pixels.
	CompositeSourceOver CompositeOp = iota
	// CompositeDestinationOut removes existing pixels under the stroke.
	CompositeDestinationOut
)

// String returns the canvas name of the operator.
func (op CompositeOp) String() string {
	switch op {
	case CompositeDestinationOut:
		return "destination-out"
	default:
		return "source-over"
	}
}

// StrokeStyle describes how a segment is drawn.
type StrokeStyle struct {
	Color     color.Color
	Width     float64
	Cap       LineCap
	Join      LineJoin
	Alpha     float64
	Composite CompositeOp
}

// Surface is an exclusively owned raster pixel buffer.
//
// Surfaces are not safe for concurrent use.
type Surface interface {
	// Width returns the surface width in pixels.
	Width() int

	// Height returns the surface height in pixels.
	Height() int

	// Resize reallocates the buffer. Existing pixels are kept anchored at the
	// top-left corner: cropped when shrinking, padded with transparency when
	// growing. Returns ErrInvalidDimension for non-positive sizes.
	Resize(width, height int) error

	// StrokeSegment draws a line segment from one point to another.
	StrokeSegment(from, to Point, style StrokeStyle) error

	// Clear resets every pixel to transparent.
	Clear() error

	// ClearRect resets the pixels inside r to transparent.
	ClearRect(r image.Rectangle) error

	// DrawSurface composites src onto this surface with its top-left corner at
	// the given position.
	DrawSurface(src Surface, at image.Point, opacity float64, mode BlendMode) error

	// Image returns the live premultiplied buffer. Callers must not retain or
	// modify it.
	Image() image.Image

	// EncodePNG encodes the content losslessly.
	EncodePNG() ([]byte, error)

	// DecodePNG replaces the content with a decoded image, anchored at the
	// top-left corner. Returns an error wrapping ErrDecode for malformed data.
	DecodePNG(data []byte) error

	// Load replaces the content with img, anchored at the top-left corner.
	Load(img image.Image) error

	// ReadPixels returns a straight-alpha copy of the content.
	ReadPixels() *image.NRGBA

	// WritePixels replaces the content. The bounds of img must match the surface.
	WritePixels(img image.Image) error

	// Release frees the buffer. Drawing on a released surface returns
	// ErrInvalidSurface.
	Release()

	// Released reports whether Release has been called.
	Released() bool
}

// SurfaceProvider creates surfaces and converts portable images.
//
// DecodeImage and EncodeImage must be safe for concurrent use.
type SurfaceProvider interface {
	// NewSurface creates a fully transparent surface.
	NewSurface(width, height int) (Surface, error)

	// DecodeImage decodes portable image bytes.
	DecodeImage(data []byte) (image.Image, error)

	// EncodeImage encodes an image to portable (PNG) bytes.
	EncodeImage(img image.Image) ([]byte, error)
}
