package csm

import (
	"image/color"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

// Opaque is the alpha value of a fully opaque color.
const Opaque = 255

// Color is a non-premultiplied 8 bit RGBA color.
type Color struct {
	R, G, B, A uint8
}

var (
	// ErrorColor is written by fragments of a material without a fragment shader.
	ErrorColor = Color{R: 255, G: 0, B: 255, A: Opaque}
	// Transparent is the zero Color.
	Transparent = Color{}
	Black       = Color{A: Opaque}
	White       = Color{R: 255, G: 255, B: 255, A: Opaque}
)

// RGB returns an opaque color.
func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b, A: Opaque} }

// RGBA returns a color with the given components.
func RGBA(r, g, b, a uint8) Color { return Color{R: r, G: g, B: b, A: a} }

// ColorFromFloats returns a color from components in the 0..255 range.
// Values are clamped.
func ColorFromFloats(r, g, b, a float32) Color {
	return Color{R: clampByte(r), G: clampByte(g), B: clampByte(b), A: clampByte(a)}
}

// ColorFromVec returns an opaque color from a 0..255 ranged vector.
func ColorFromVec(v ms3.Vec) Color {
	return Color{R: clampByte(v.X), G: clampByte(v.Y), B: clampByte(v.Z), A: Opaque}
}

// Vec returns the RGB components of c as a vector in the 0..255 range.
func (c Color) Vec() ms3.Vec {
	return ms3.Vec{X: float32(c.R), Y: float32(c.G), Z: float32(c.B)}
}

// RGBA implements the [color.Color] interface.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}.RGBA()
}

// Blend composites above over below using the alpha of above.
// The result is always opaque.
func Blend(below, above Color) Color {
	alpha := float32(above.A) / 255
	inv := 1 - alpha
	return Color{
		R: clampByte(float32(above.R)*alpha + float32(below.R)*inv),
		G: clampByte(float32(above.G)*alpha + float32(below.G)*inv),
		B: clampByte(float32(above.B)*alpha + float32(below.B)*inv),
		A: Opaque,
	}
}

// BlendWeighted blends c2 over c1 using factor in [0, 1] as the alpha of c2.
func BlendWeighted(c1, c2 Color, factor float32) Color {
	factor = math32.Min(1, math32.Max(0, factor))
	c2.A = uint8(factor*255 + 0.5)
	return Blend(c1, c2)
}

func clampByte(v float32) uint8 {
	if !(v > 0) { // NaN included.
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
