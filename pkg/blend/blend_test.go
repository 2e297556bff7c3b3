package blend

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/user/layerpaint/pkg/ports"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img
}

func near(a, b uint8, tol int) bool {
	d := int(a) - int(b)
	return d >= -tol && d <= tol
}

func TestFor_Functions(t *testing.T) {
	tests := []struct {
		mode ports.BlendMode
		cb   float64
		cs   float64
		want float64
	}{
		{ports.BlendNormal, 0.2, 0.7, 0.7},
		{ports.BlendMultiply, 0.5, 0.5, 0.25},
		{ports.BlendScreen, 0.5, 0.5, 0.75},
		{ports.BlendOverlay, 0.25, 0.5, 0.25},
		{ports.BlendOverlay, 0.75, 0.5, 0.75},
		{ports.BlendDarken, 0.3, 0.6, 0.3},
		{ports.BlendLighten, 0.3, 0.6, 0.6},
		{ports.BlendColorDodge, 0.5, 1, 1},
		{ports.BlendColorDodge, 0, 0.5, 0},
		{ports.BlendColorBurn, 1, 0, 1},
		{ports.BlendColorBurn, 0.5, 0, 0},
		{ports.BlendHardLight, 0.5, 0.25, 0.25},
		{ports.BlendSoftLight, 0.5, 0.5, 0.5},
		{ports.BlendSoftLight, 0.25, 1, 0.5},
		{ports.BlendDifference, 0.2, 0.7, 0.5},
		{ports.BlendExclusion, 0.5, 0.5, 0.5},
		{ports.BlendMode("nonexistent-mode"), 0.2, 0.7, 0.7},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			got := For(tt.mode)(tt.cb, tt.cs)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("B(%v, %v) = %v, want %v", tt.cb, tt.cs, got, tt.want)
			}
		})
	}
}

func TestComposite_NormalOverTransparent(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 4, 4))
	src := solid(4, 4, color.RGBA{R: 255, A: 255})

	Composite(dst, src, image.Point{}, 1, ports.BlendNormal)

	if got := dst.RGBAAt(1, 1); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("expected opaque red, got %v", got)
	}
}

func TestComposite_Opacity(t *testing.T) {
	dst := solid(2, 2, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	src := solid(2, 2, color.RGBA{A: 255})

	Composite(dst, src, image.Point{}, 0.5, ports.BlendNormal)

	got := dst.RGBAAt(0, 0)
	if !near(got.R, 128, 1) || got.A != 255 {
		t.Errorf("expected mid gray, got %v", got)
	}
}

func TestComposite_ZeroOpacityIsNoop(t *testing.T) {
	dst := solid(2, 2, color.RGBA{G: 255, A: 255})
	src := solid(2, 2, color.RGBA{R: 255, A: 255})

	Composite(dst, src, image.Point{}, 0, ports.BlendNormal)

	if got := dst.RGBAAt(0, 0); got != (color.RGBA{G: 255, A: 255}) {
		t.Errorf("expected unchanged green, got %v", got)
	}
}

func TestComposite_Multiply(t *testing.T) {
	dst := solid(2, 2, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	src := solid(2, 2, color.RGBA{R: 128, G: 64, B: 0, A: 255})

	Composite(dst, src, image.Point{}, 1, ports.BlendMultiply)

	got := dst.RGBAAt(0, 0)
	if !near(got.R, 128, 1) || !near(got.G, 64, 1) || got.B != 0 || got.A != 255 {
		t.Errorf("multiply over white should keep the source, got %v", got)
	}
}

func TestComposite_ScreenOverBlack(t *testing.T) {
	dst := solid(2, 2, color.RGBA{A: 255})
	src := solid(2, 2, color.RGBA{R: 100, G: 150, B: 200, A: 255})

	Composite(dst, src, image.Point{}, 1, ports.BlendScreen)

	got := dst.RGBAAt(0, 0)
	if !near(got.R, 100, 1) || !near(got.G, 150, 1) || !near(got.B, 200, 1) {
		t.Errorf("screen over black should keep the source, got %v", got)
	}
}

func TestComposite_UnknownModeMatchesNormal(t *testing.T) {
	base := solid(3, 3, color.RGBA{R: 40, G: 80, B: 120, A: 255})
	src := solid(3, 3, color.RGBA{R: 100, G: 50, B: 0, A: 200})

	a := image.NewRGBA(base.Bounds())
	copy(a.Pix, base.Pix)
	b := image.NewRGBA(base.Bounds())
	copy(b.Pix, base.Pix)

	Composite(a, src, image.Point{}, 0.8, ports.BlendNormal)
	Composite(b, src, image.Point{}, 0.8, ports.BlendMode("nonexistent-mode"))

	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("pixel byte %d differs: %d vs %d", i, a.Pix[i], b.Pix[i])
		}
	}
}

func TestComposite_Offset(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 4, 4))
	src := solid(2, 2, color.RGBA{B: 255, A: 255})

	Composite(dst, src, image.Pt(3, 3), 1, ports.BlendNormal)

	if got := dst.RGBAAt(3, 3); got.B != 255 {
		t.Errorf("expected blue at (3,3), got %v", got)
	}
	if got := dst.RGBAAt(2, 2); got.A != 0 {
		t.Errorf("expected transparent at (2,2), got %v", got)
	}
}

func TestErase(t *testing.T) {
	dst := solid(4, 1, color.RGBA{R: 200, A: 255})
	mask := image.NewAlpha(dst.Bounds())
	mask.SetAlpha(0, 0, color.Alpha{A: 255})
	mask.SetAlpha(1, 0, color.Alpha{A: 128})

	Erase(dst, mask, 1)

	if got := dst.RGBAAt(0, 0); got.A != 0 || got.R != 0 {
		t.Errorf("expected fully erased pixel, got %v", got)
	}
	if got := dst.RGBAAt(1, 0); !near(got.A, 127, 1) {
		t.Errorf("expected half erased pixel, got %v", got)
	}
	if got := dst.RGBAAt(2, 0); got.A != 255 {
		t.Errorf("expected untouched pixel, got %v", got)
	}
}
