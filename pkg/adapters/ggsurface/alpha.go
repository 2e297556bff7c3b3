package ggsurface

import (
	"image"

	"golang.org/x/image/draw"
)

// Conversions between the premultiplied buffer and straight-alpha images.
// Both directions round to nearest, so for any valid premultiplied pixel
// (channel <= alpha) premultiply(unpremultiply(p)) == p.

func unpremul(c uint8, a uint32) uint8 {
	v := (uint32(c)*255 + a/2) / a
	if v > 255 {
		v = 255
	}
	return uint8(v)
}

func premul(c uint8, a uint32) uint8 {
	return uint8((uint32(c)*a + 127) / 255)
}

// toStraight returns a straight-alpha copy of src anchored at the origin.
func toStraight(src *image.RGBA) *image.NRGBA {
	b := src.Rect
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	n := 4 * b.Dx()
	for y := 0; y < b.Dy(); y++ {
		sp := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):][:n]
		dp := dst.Pix[y*dst.Stride:][:n]
		for i := 0; i < n; i += 4 {
			a := uint32(sp[i+3])
			switch a {
			case 0:
			case 255:
				copy(dp[i:i+4], sp[i:i+4])
			default:
				dp[i] = unpremul(sp[i], a)
				dp[i+1] = unpremul(sp[i+1], a)
				dp[i+2] = unpremul(sp[i+2], a)
				dp[i+3] = uint8(a)
			}
		}
	}
	return dst
}

// copyInto writes img into dst with img's top-left corner at dst's origin.
// Pixels outside dst are dropped.
func copyInto(dst *image.RGBA, img image.Image) {
	b := img.Bounds()
	src, ok := img.(*image.NRGBA)
	if !ok {
		draw.Draw(dst, b.Sub(b.Min).Add(dst.Rect.Min), img, b.Min, draw.Src)
		return
	}

	w := min(b.Dx(), dst.Rect.Dx())
	h := min(b.Dy(), dst.Rect.Dy())
	n := 4 * w
	for y := 0; y < h; y++ {
		sp := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):][:n]
		dp := dst.Pix[dst.PixOffset(dst.Rect.Min.X, dst.Rect.Min.Y+y):][:n]
		for i := 0; i < n; i += 4 {
			a := uint32(sp[i+3])
			switch a {
			case 0:
				dp[i], dp[i+1], dp[i+2], dp[i+3] = 0, 0, 0, 0
			case 255:
				copy(dp[i:i+4], sp[i:i+4])
			default:
				dp[i] = premul(sp[i], a)
				dp[i+1] = premul(sp[i+1], a)
				dp[i+2] = premul(sp[i+2], a)
				dp[i+3] = uint8(a)
			}
		}
	}
}
