package csm

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms2"
)

const (
	// FarDepth is the depth buffer sentinel for "nothing drawn yet".
	FarDepth float32 = math32.MaxFloat32
	// DepthEpsilon is the tolerance of the depth test. A fragment must be
	// closer than the stored depth by more than DepthEpsilon to pass.
	DepthEpsilon float32 = 1e-3
)

// RenderTarget is a fixed size color and depth buffer. Row 0 is the bottom
// row of the target. RenderTarget implements [image.Image] with rows flipped so
// the image is upright.
//
// Smaller depth values are closer to the viewer.
type RenderTarget struct {
	width, height int
	color         []Color
	depth         []float32
}

// NewRenderTarget returns a width x height render target cleared to
// [Transparent] and [FarDepth].
func NewRenderTarget(width, height int) (*RenderTarget, error) {
	if width <= 0 || height <= 0 {
		return nil, errMsg(ErrInvalidDimensions, "render target width and height must be positive")
	}
	rt := &RenderTarget{
		width:  width,
		height: height,
		color:  make([]Color, width*height),
		depth:  make([]float32, width*height),
	}
	rt.Clear(Transparent, FarDepth)
	return rt, nil
}

// NewRenderTargetFromImage copies img into a new render target with depth at
// [FarDepth]. It is typically used to build textures for [FragmentContext.Sample].
func NewRenderTargetFromImage(img image.Image) (*RenderTarget, error) {
	b := img.Bounds()
	rt, err := NewRenderTarget(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	for y := 0; y < rt.height; y++ {
		row := rt.height - 1 - y
		for x := 0; x < rt.width; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			rt.color[row*rt.width+x] = Color{R: c.R, G: c.G, B: c.B, A: c.A}
		}
	}
	return rt, nil
}

// Width returns the width of the target in pixels.
func (rt *RenderTarget) Width() int { return rt.width }

// Height returns the height of the target in pixels.
func (rt *RenderTarget) Height() int { return rt.height }

func (rt *RenderTarget) inBounds(x, y int) bool {
	return x >= 0 && x < rt.width && y >= 0 && y < rt.height
}

// Fragment returns the color and depth stored at (x, y).
func (rt *RenderTarget) Fragment(x, y int) (Color, float32, error) {
	if !rt.inBounds(x, y) {
		return Color{}, 0, errMsg(ErrOutOfBounds, "get fragment")
	}
	c, d := rt.UnsafeFragment(x, y)
	return c, d, nil
}

// SetFragment depth tests depth at (x, y) and writes the color and depth
// only if the test passes. It reports whether the fragment was written.
func (rt *RenderTarget) SetFragment(x, y int, c Color, depth float32) (bool, error) {
	if !rt.inBounds(x, y) {
		return false, errMsg(ErrOutOfBounds, "set fragment")
	}
	if !rt.UnsafeDepthTest(x, y, depth) {
		return false, nil
	}
	rt.UnsafeSetFragment(x, y, c, depth)
	return true, nil
}

// DepthTest reports whether a fragment at depth would pass the depth test at
// (x, y). It does not modify the target.
func (rt *RenderTarget) DepthTest(x, y int, depth float32) (bool, error) {
	if !rt.inBounds(x, y) {
		return false, errMsg(ErrOutOfBounds, "depth test")
	}
	return rt.UnsafeDepthTest(x, y, depth), nil
}

// Clear sets every color cell to c and every depth cell to depth.
// Use [FarDepth] to reset the depth buffer.
func (rt *RenderTarget) Clear(c Color, depth float32) {
	if len(rt.color) == 0 {
		return
	}
	rt.color[0] = c
	rt.depth[0] = depth
	// Doubling copies.
	for i := 1; i < len(rt.color); i *= 2 {
		copy(rt.color[i:], rt.color[:i])
		copy(rt.depth[i:], rt.depth[:i])
	}
}

// UnsafeFragment is [RenderTarget.Fragment] without bounds checking.
func (rt *RenderTarget) UnsafeFragment(x, y int) (Color, float32) {
	i := y*rt.width + x
	return rt.color[i], rt.depth[i]
}

// UnsafeSetFragment writes color and depth at (x, y) unconditionally and
// without bounds checking.
func (rt *RenderTarget) UnsafeSetFragment(x, y int, c Color, depth float32) {
	i := y*rt.width + x
	rt.color[i] = c
	rt.depth[i] = depth
}

// UnsafeDepthTest is [RenderTarget.DepthTest] without bounds checking.
func (rt *RenderTarget) UnsafeDepthTest(x, y int, depth float32) bool {
	return depth < rt.depth[y*rt.width+x]-DepthEpsilon
}

// SampleMode selects how texture coordinates outside [0, 1) are handled.
type SampleMode uint8

const (
	// SampleClamp returns [Transparent] outside [0, 1).
	SampleClamp SampleMode = iota
	// SampleClampToEdge clamps coordinates to the edge texels.
	SampleClampToEdge
	// SampleRepeat wraps coordinates.
	SampleRepeat
)

// Sample returns the color of the texel nearest to uv, where (0,0) is the
// bottom left corner of the target and (1,1) the top right.
func (rt *RenderTarget) Sample(uv ms2.Vec, mode SampleMode) Color {
	switch mode {
	case SampleClamp:
		if uv.X < 0 || uv.X >= 1 || uv.Y < 0 || uv.Y >= 1 {
			return Transparent
		}
	case SampleClampToEdge:
		uv.X = math32.Max(0, math32.Min(uv.X, 1))
		uv.Y = math32.Max(0, math32.Min(uv.Y, 1))
	case SampleRepeat:
		uv.X = uv.X - math32.Floor(uv.X)
		uv.Y = uv.Y - math32.Floor(uv.Y)
	default:
		return Transparent
	}
	x := int(uv.X * float32(rt.width))
	y := int(uv.Y * float32(rt.height))
	x = max(0, min(x, rt.width-1))
	y = max(0, min(y, rt.height-1))
	c, _ := rt.UnsafeFragment(x, y)
	return c
}

// ColorModel implements [image.Image].
func (rt *RenderTarget) ColorModel() color.Model { return color.NRGBAModel }

// Bounds implements [image.Image].
func (rt *RenderTarget) Bounds() image.Rectangle { return image.Rect(0, 0, rt.width, rt.height) }

// At implements [image.Image]. Image row 0 is the top row of the target.
func (rt *RenderTarget) At(x, y int) color.Color {
	y = rt.height - 1 - y
	if !rt.inBounds(x, y) {
		return color.NRGBA{}
	}
	c, _ := rt.UnsafeFragment(x, y)
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}
