// Package ggsurface provides raster surfaces backed by the gg library.
package ggsurface

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/anthonynsimon/bild/clone"
	"github.com/fogleman/gg"
	"golang.org/x/image/draw"

	"github.com/user/layerpaint/pkg/blend"
	"github.com/user/layerpaint/pkg/ports"
)

// DefaultMaxPixels bounds a single surface allocation (64 megapixels).
const DefaultMaxPixels = 1 << 26

// Provider implements ports.SurfaceProvider.
type Provider struct {
	maxPixels int
}

// New creates a Provider with the default allocation limit.
func New() *Provider {
	return &Provider{maxPixels: DefaultMaxPixels}
}

// NewWithLimit creates a Provider that refuses surfaces larger than maxPixels.
func NewWithLimit(maxPixels int) *Provider {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	return &Provider{maxPixels: maxPixels}
}

// NewSurface creates a fully transparent surface.
func (p *Provider) NewSurface(width, height int) (ports.Surface, error) {
	img, err := p.alloc(width, height)
	if err != nil {
		return nil, err
	}
	return &Surface{
		provider: p,
		img:      img,
		dc:       gg.NewContextForRGBA(img),
	}, nil
}

// DecodeImage decodes PNG bytes.
func (p *Provider) DecodeImage(data []byte) (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrDecode, err)
	}
	return img, nil
}

// EncodeImage encodes an image as PNG. Premultiplied RGBA input is converted
// to straight alpha so that Load restores the same bytes.
func (p *Provider) EncodeImage(img image.Image) ([]byte, error) {
	if rgba, ok := img.(*image.RGBA); ok {
		img = toStraight(rgba)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *Provider) alloc(width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ports.ErrInvalidDimension, width, height)
	}
	if width > p.maxPixels/height {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ports.ErrAllocation, width, height, p.maxPixels)
	}
	return image.NewRGBA(image.Rect(0, 0, width, height)), nil
}

// Ensure Provider implements ports.SurfaceProvider
var _ ports.SurfaceProvider = (*Provider)(nil)

// Surface implements ports.Surface on a premultiplied RGBA buffer.
type Surface struct {
	provider *Provider
	img      *image.RGBA
	dc       *gg.Context
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int {
	if s.img == nil {
		return 0
	}
	return s.img.Rect.Dx()
}

// Height returns the surface height in pixels.
func (s *Surface) Height() int {
	if s.img == nil {
		return 0
	}
	return s.img.Rect.Dy()
}

// Resize reallocates the buffer, keeping existing pixels anchored top-left.
func (s *Surface) Resize(width, height int) error {
	if s.img == nil {
		return ports.ErrInvalidSurface
	}
	img, err := s.provider.alloc(width, height)
	if err != nil {
		return err
	}
	draw.Draw(img, s.img.Rect, s.img, image.Point{}, draw.Src)
	s.img = img
	s.dc = gg.NewContextForRGBA(img)
	return nil
}

// StrokeSegment draws a line segment with the given style.
func (s *Surface) StrokeSegment(from, to ports.Point, style ports.StrokeStyle) error {
	if s.img == nil {
		return ports.ErrInvalidSurface
	}
	if !finite(from) || !finite(to) {
		return fmt.Errorf("stroke segment: non-finite point %v -> %v", from, to)
	}
	if style.Width <= 0 || style.Alpha <= 0 {
		return nil
	}

	if style.Composite == ports.CompositeDestinationOut {
		s.erase(from, to, style)
		return nil
	}

	c := color.NRGBAModel.Convert(colorOrBlack(style.Color)).(color.NRGBA)
	applyLine(s.dc, style)
	s.dc.SetRGBA(
		float64(c.R)/255,
		float64(c.G)/255,
		float64(c.B)/255,
		float64(c.A)/255*math.Min(style.Alpha, 1),
	)
	s.dc.DrawLine(from.X, from.Y, to.X, to.Y)
	s.dc.Stroke()
	return nil
}

// erase rasterizes the segment into a coverage mask restricted to its
// bounding box and punches it out of the buffer.
func (s *Surface) erase(from, to ports.Point, style ports.StrokeStyle) {
	pad := style.Width/2 + 2
	box := image.Rect(
		int(math.Floor(math.Min(from.X, to.X)-pad)),
		int(math.Floor(math.Min(from.Y, to.Y)-pad)),
		int(math.Ceil(math.Max(from.X, to.X)+pad)),
		int(math.Ceil(math.Max(from.Y, to.Y)+pad)),
	).Intersect(s.img.Rect)
	if box.Empty() {
		return
	}

	scratch := gg.NewContext(box.Dx(), box.Dy())
	applyLine(scratch, style)
	scratch.SetRGBA(1, 1, 1, 1)
	scratch.DrawLine(from.X-float64(box.Min.X), from.Y-float64(box.Min.Y), to.X-float64(box.Min.X), to.Y-float64(box.Min.Y))
	scratch.Stroke()

	mask := scratch.AsMask()
	mask.Rect = mask.Rect.Add(box.Min)
	blend.Erase(s.img, mask, style.Alpha)
}

// Clear resets every pixel to transparent.
func (s *Surface) Clear() error {
	if s.img == nil {
		return ports.ErrInvalidSurface
	}
	clear(s.img.Pix)
	return nil
}

// ClearRect resets the pixels inside r to transparent.
func (s *Surface) ClearRect(r image.Rectangle) error {
	if s.img == nil {
		return ports.ErrInvalidSurface
	}
	draw.Draw(s.img, r.Intersect(s.img.Rect), image.Transparent, image.Point{}, draw.Src)
	return nil
}

// DrawSurface composites src onto this surface.
func (s *Surface) DrawSurface(src ports.Surface, at image.Point, opacity float64, mode ports.BlendMode) error {
	if s.img == nil || src == nil || src.Released() {
		return ports.ErrInvalidSurface
	}
	srcImg, ok := src.Image().(*image.RGBA)
	if !ok {
		srcImg = clone.AsRGBA(src.Image())
	}
	blend.Composite(s.img, srcImg, at, opacity, mode)
	return nil
}

// Image returns the live buffer, or nil after Release.
func (s *Surface) Image() image.Image {
	if s.img == nil {
		return nil
	}
	return s.img
}

// EncodePNG encodes the content as PNG.
func (s *Surface) EncodePNG() ([]byte, error) {
	if s.img == nil {
		return nil, ports.ErrInvalidSurface
	}
	return s.provider.EncodeImage(s.img)
}

// DecodePNG replaces the content with the decoded PNG.
func (s *Surface) DecodePNG(data []byte) error {
	if s.img == nil {
		return ports.ErrInvalidSurface
	}
	img, err := s.provider.DecodeImage(data)
	if err != nil {
		return err
	}
	return s.Load(img)
}

// Load replaces the content with img anchored at the top-left corner.
func (s *Surface) Load(img image.Image) error {
	if s.img == nil {
		return ports.ErrInvalidSurface
	}
	clear(s.img.Pix)
	copyInto(s.img, img)
	return nil
}

// ReadPixels returns a straight-alpha copy of the content.
func (s *Surface) ReadPixels() *image.NRGBA {
	if s.img == nil {
		return image.NewNRGBA(image.Rectangle{})
	}
	return toStraight(s.img)
}

// WritePixels replaces the content with img, which must match the surface size.
func (s *Surface) WritePixels(img image.Image) error {
	if s.img == nil {
		return ports.ErrInvalidSurface
	}
	b := img.Bounds()
	if b.Dx() != s.img.Rect.Dx() || b.Dy() != s.img.Rect.Dy() {
		return fmt.Errorf("%w: write %dx%d pixels into %dx%d surface",
			ports.ErrInvalidDimension, b.Dx(), b.Dy(), s.img.Rect.Dx(), s.img.Rect.Dy())
	}
	copyInto(s.img, img)
	return nil
}

// Release frees the buffer.
func (s *Surface) Release() {
	s.img = nil
	s.dc = nil
}

// Released reports whether Release has been called.
func (s *Surface) Released() bool {
	return s.img == nil
}

// Ensure Surface implements ports.Surface
var _ ports.Surface = (*Surface)(nil)

func applyLine(dc *gg.Context, style ports.StrokeStyle) {
	dc.SetLineWidth(style.Width)
	switch style.Cap {
	case ports.CapRound:
		dc.SetLineCap(gg.LineCapRound)
	case ports.CapSquare:
		dc.SetLineCap(gg.LineCapSquare)
	default:
		dc.SetLineCap(gg.LineCapButt)
	}
	// gg has no miter join; bevel is the closest shape.
	if style.Join == ports.JoinRound {
		dc.SetLineJoin(gg.LineJoinRound)
	} else {
		dc.SetLineJoin(gg.LineJoinBevel)
	}
}

func colorOrBlack(c color.Color) color.Color {
	if c == nil {
		return color.Black
	}
	return c
}

func finite(p ports.Point) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}
