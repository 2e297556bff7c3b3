// Package blend implements layer compositing on premultiplied RGBA buffers,
// following the separable blend modes of W3C Compositing and Blending Level 1:
//
//	co = cs·αs·(1-αb) + cb·αb·(1-αs) + αs·αb·B(cb, cs)
//	αo = αs + αb·(1-αs)
//
// cs and cb are the unmultiplied source and backdrop colors, co is the
// premultiplied result.
package blend

import (
	"image"
	"math"

	"github.com/user/layerpaint/pkg/ports"
)

// Func combines an unmultiplied backdrop channel cb with a source channel cs.
// Both values and the result are in [0, 1].
type Func func(cb, cs float64) float64

// For returns the blend function for mode. Unsupported modes use normal.
func For(mode ports.BlendMode) Func {
	switch mode.Normalize() {
	case ports.BlendMultiply:
		return multiply
	case ports.BlendScreen:
		return screen
	case ports.BlendOverlay:
		return overlay
	case ports.BlendDarken:
		return math.Min
	case ports.BlendLighten:
		return math.Max
	case ports.BlendColorDodge:
		return colorDodge
	case ports.BlendColorBurn:
		return colorBurn
	case ports.BlendHardLight:
		return hardLight
	case ports.BlendSoftLight:
		return softLight
	case ports.BlendDifference:
		return difference
	case ports.BlendExclusion:
		return exclusion
	default:
		return normal
	}
}

func normal(cb, cs float64) float64 { return cs }

func multiply(cb, cs float64) float64 { return cb * cs }

func screen(cb, cs float64) float64 { return cb + cs - cb*cs }

func overlay(cb, cs float64) float64 { return hardLight(cs, cb) }

func hardLight(cb, cs float64) float64 {
	if cs <= 0.5 {
		return multiply(cb, 2*cs)
	}
	return screen(cb, 2*cs-1)
}

func colorDodge(cb, cs float64) float64 {
	switch {
	case cb == 0:
		return 0
	case cs >= 1:
		return 1
	default:
		return math.Min(1, cb/(1-cs))
	}
}

func colorBurn(cb, cs float64) float64 {
	switch {
	case cb >= 1:
		return 1
	case cs <= 0:
		return 0
	default:
		return 1 - math.Min(1, (1-cb)/cs)
	}
}

func softLight(cb, cs float64) float64 {
	if cs <= 0.5 {
		return cb - (1-2*cs)*cb*(1-cb)
	}
	var d float64
	if cb <= 0.25 {
		d = ((16*cb-12)*cb + 4) * cb
	} else {
		d = math.Sqrt(cb)
	}
	return cb + (2*cs-1)*(d-cb)
}

func difference(cb, cs float64) float64 { return math.Abs(cb - cs) }

func exclusion(cb, cs float64) float64 { return cb + cs - 2*cb*cs }

// Composite draws src onto dst with src's top-left corner at the given
// position, scaling source alpha by opacity and mixing colors with mode.
// Pixels outside dst are ignored.
func Composite(dst, src *image.RGBA, at image.Point, opacity float64, mode ports.BlendMode) {
	opacity = clamp01(opacity)
	if opacity == 0 {
		return
	}
	fn := For(mode)
	isNormal := mode.Normalize() == ports.BlendNormal

	target := src.Bounds().Sub(src.Bounds().Min).Add(at).Intersect(dst.Bounds())
	if target.Empty() {
		return
	}
	offset := src.Bounds().Min.Sub(at)

	for y := target.Min.Y; y < target.Max.Y; y++ {
		for x := target.Min.X; x < target.Max.X; x++ {
			si := src.PixOffset(x+offset.X, y+offset.Y)
			sp := src.Pix[si : si+4 : si+4]
			if sp[3] == 0 {
				continue
			}
			di := dst.PixOffset(x, y)
			dp := dst.Pix[di : di+4 : di+4]

			srcA := float64(sp[3]) / 255
			as := srcA * opacity
			ab := float64(dp[3]) / 255

			if isNormal || ab == 0 {
				// Plain source-over; B(cb, cs) only matters where both are present.
				for c := 0; c < 3; c++ {
					cs := float64(sp[c]) / 255 * opacity
					cb := float64(dp[c]) / 255
					dp[c] = toByte(cs + cb*(1-as))
				}
				dp[3] = toByte(as + ab*(1-as))
				continue
			}

			for c := 0; c < 3; c++ {
				cs := float64(sp[c]) / 255 / srcA
				cb := float64(dp[c]) / 255 / ab
				co := cs*as*(1-ab) + cb*ab*(1-as) + as*ab*clamp01(fn(clamp01(cb), clamp01(cs)))
				dp[c] = toByte(co)
			}
			dp[3] = toByte(as + ab*(1-as))
		}
	}
}

// Erase applies destination-out: every dst pixel is scaled by one minus the
// mask coverage times alpha. The mask must share dst's coordinate space.
func Erase(dst *image.RGBA, mask *image.Alpha, alpha float64) {
	alpha = clamp01(alpha)
	if alpha == 0 {
		return
	}
	r := dst.Bounds().Intersect(mask.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			m := mask.Pix[mask.PixOffset(x, y)]
			if m == 0 {
				continue
			}
			keep := 1 - float64(m)/255*alpha
			di := dst.PixOffset(x, y)
			dp := dst.Pix[di : di+4 : di+4]
			for c := 0; c < 4; c++ {
				dp[c] = toByte(float64(dp[c]) / 255 * keep)
			}
		}
	}
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func toByte(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 255))
}
