// Package filters applies whole-surface image filters through the surface
// pixel read/write boundary.
package filters

import (
	"fmt"
	"image"
	"image/color"
	"sort"
	"strings"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/transform"

	"github.com/user/layerpaint/pkg/ports"
)

// Name identifies a filter.
type Name string

const (
	Grayscale Name = "grayscale"
	Sepia     Name = "sepia"
	Invert    Name = "invert"
	Blur      Name = "blur"
	Brighten  Name = "brighten"
	Darken    Name = "darken"
	FlipH     Name = "flip-h"
	FlipV     Name = "flip-v"
)

// filter describes how a filter treats alpha. Color filters see an opaque
// copy of the pixels and get the original alpha back afterwards; geometric
// filters move alpha with the pixels.
type filter struct {
	fn        func(image.Image) *image.RGBA
	geometric bool
}

var registry = map[Name]filter{
	Grayscale: {fn: func(img image.Image) *image.RGBA { return effect.Grayscale(img) }},
	Sepia:     {fn: func(img image.Image) *image.RGBA { return effect.Sepia(img) }},
	Invert:    {fn: func(img image.Image) *image.RGBA { return effect.Invert(img) }},
	Brighten:  {fn: func(img image.Image) *image.RGBA { return adjust.Brightness(img, 0.2) }},
	Darken:    {fn: func(img image.Image) *image.RGBA { return adjust.Brightness(img, -0.2) }},
	Blur:      {fn: func(img image.Image) *image.RGBA { return blur.Gaussian(img, 2) }, geometric: true},
	FlipH:     {fn: func(img image.Image) *image.RGBA { return transform.FlipH(img) }, geometric: true},
	FlipV:     {fn: func(img image.Image) *image.RGBA { return transform.FlipV(img) }, geometric: true},
}

// Names returns the registered filter names, sorted.
func Names() []Name {
	out := make([]Name, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Parse looks up a filter by name, case-insensitively.
func Parse(s string) (Name, error) {
	n := Name(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := registry[n]; !ok {
		return "", fmt.Errorf("unknown filter %q", s)
	}
	return n, nil
}

// Apply runs the named filter over the whole surface.
func Apply(surface ports.Surface, name Name) error {
	f, ok := registry[name]
	if !ok {
		return fmt.Errorf("unknown filter %q", name)
	}
	if surface == nil || surface.Released() {
		return fmt.Errorf("apply %s: %w", name, ports.ErrInvalidSurface)
	}

	if f.geometric {
		// Surface images are premultiplied, which is what bild works on.
		return surface.WritePixels(f.fn(surface.Image()))
	}

	src := surface.ReadPixels()
	out := f.fn(opaque(src))
	return surface.WritePixels(withAlpha(out, src))
}

// opaque copies the color channels of src with alpha forced to 255.
func opaque(src *image.NRGBA) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := src.NRGBAAt(x, y)
			dst.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
		}
	}
	return dst
}

// withAlpha combines the color channels of filtered with the alpha of orig.
func withAlpha(filtered *image.RGBA, orig *image.NRGBA) *image.NRGBA {
	b := orig.Bounds()
	dst := image.NewNRGBA(b)
	fb := filtered.Bounds()
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := filtered.RGBAAt(fb.Min.X+x, fb.Min.Y+y)
			a := orig.NRGBAAt(b.Min.X+x, b.Min.Y+y).A
			dst.SetNRGBA(b.Min.X+x, b.Min.Y+y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: a})
		}
	}
	return dst
}
