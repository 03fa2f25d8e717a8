// Package colorutil normalises a Node's colour field (CSS name or hex) to
// a canonical #RRGGBB, and judges whether light or dark label text reads
// better against it. It is grounded on the teacher's
// github.com/mazznoer/csscolorparser and github.com/lucasb-eyer/go-colorful
// dependencies, repurposed here for validation/canonicalisation rather than
// gradient generation (which stays out of the core's scope).
package colorutil

import (
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mazznoer/csscolorparser"
)

// Normalize parses a CSS colour name or hex string and returns its
// canonical #RRGGBB form. ok is false when raw fails to parse (or is
// empty); callers should fall back to config.Config.DefaultNodeColour and
// record a NumericDegenerate diagnostic.
func Normalize(raw string) (hex string, ok bool) {
	if raw == "" {
		return "", false
	}
	c, err := csscolorparser.Parse(raw)
	if err != nil {
		return "", false
	}
	cf := colorful.Color{R: c.R, G: c.G, B: c.B}
	return cf.Hex(), true
}

// ReadableLabelColour picks "#000000" or "#ffffff" for label text placed
// over bgHex, using go-colorful's perceived-lightness channel so labels
// stay legible regardless of the node's chosen colour.
func ReadableLabelColour(bgHex string) string {
	cf, err := colorful.Hex(bgHex)
	if err != nil {
		return "#000000"
	}
	_, _, l := cf.Hsl()
	if l < 0.55 {
		return "#ffffff"
	}
	return "#000000"
}
