package ports

import "strings"

// BlendMode is the per-pixel function used to combine a layer with the
// pixels beneath it. Values use the 2D canvas names.
type BlendMode string

const (
	BlendNormal     BlendMode = "normal"
	BlendMultiply   BlendMode = "multiply"
	BlendScreen     BlendMode = "screen"
	BlendOverlay    BlendMode = "overlay"
	BlendDarken     BlendMode = "darken"
	BlendLighten    BlendMode = "lighten"
	BlendColorDodge BlendMode = "color-dodge"
	BlendColorBurn  BlendMode = "color-burn"
	BlendHardLight  BlendMode = "hard-light"
	BlendSoftLight  BlendMode = "soft-light"
	BlendDifference BlendMode = "difference"
	BlendExclusion  BlendMode = "exclusion"
)

var knownBlendModes = map[BlendMode]bool{
	BlendNormal:     true,
	BlendMultiply:   true,
	BlendScreen:     true,
	BlendOverlay:    true,
	BlendDarken:     true,
	BlendLighten:    true,
	BlendColorDodge: true,
	BlendColorBurn:  true,
	BlendHardLight:  true,
	BlendSoftLight:  true,
	BlendDifference: true,
	BlendExclusion:  true,
}

// Valid reports whether m is a supported blend mode.
func (m BlendMode) Valid() bool {
	return knownBlendModes[m]
}

// Normalize returns m, or BlendNormal when m is not supported.
func (m BlendMode) Normalize() BlendMode {
	if m.Valid() {
		return m
	}
	return BlendNormal
}

// ParseBlendMode parses a blend mode name case-insensitively. Unknown names
// fall back to BlendNormal; ok reports whether the name was recognized.
func ParseBlendMode(s string) (mode BlendMode, ok bool) {
	m := BlendMode(strings.ToLower(strings.TrimSpace(s)))
	if m.Valid() {
		return m, true
	}
	return BlendNormal, false
}
