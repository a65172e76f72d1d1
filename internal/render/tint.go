package render

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"
)

var White = mgl32.Vec4{1, 1, 1, 1}

// Tint converts a colour to an RGBA tint.
func Tint(c colorful.Color, alpha float32) mgl32.Vec4 {
	r, g, b := c.Clamped().LinearRgb()
	return mgl32.Vec4{float32(r), float32(g), float32(b), alpha}
}

// ParseTint reads a "#rrggbb" colour.
func ParseTint(hex string) (mgl32.Vec4, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return mgl32.Vec4{}, fmt.Errorf("parse tint %q: %w", hex, err)
	}
	return Tint(c, 1), nil
}

// LevelTint returns a distinct debug tint for level of detail lod out of
// count levels, walking the hue wheel from green (most detail) to red.
func LevelTint(lod, count int) mgl32.Vec4 {
	hue := 120.0
	if count > 1 {
		hue = 120 * (1 - float64(lod)/float64(count-1))
	}
	return Tint(colorful.Hsv(hue, 0.55, 0.95), 1)
}
