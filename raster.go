package csm

import (
	"github.com/chewxy/math32"
)

// RasterStats counts what happened to the fragments of a RasterContext.
type RasterStats struct {
	// Fragments is the number of covered pixels that reached the depth test.
	Fragments int
	// DepthRejected fragments failed the depth test. No shader ran for them.
	DepthRejected int
	// Discarded fragments were dropped by the shader or had zero alpha.
	Discarded int
	// Written fragments updated the target.
	Written int
}

func (s *RasterStats) add(o RasterStats) {
	s.Fragments += o.Fragments
	s.DepthRejected += o.DepthRejected
	s.Discarded += o.Discarded
	s.Written += o.Written
}

// RasterContext holds the state shared by the triangles rasterized into one
// row band of a target. Rows outside [MinY, MaxY) are never touched, which
// lets several contexts rasterize into the same target concurrently.
type RasterContext struct {
	Target     *RenderTarget
	MinY, MaxY int
	Material   *Material
	Class      *RenderClass
	TriangleID int
	InstanceID int
	Stats      RasterStats

	frag FragmentContext
}

// NewRasterContext returns a context covering every row of target.
func NewRasterContext(target *RenderTarget, m *Material) *RasterContext {
	return &RasterContext{Target: target, MaxY: target.Height(), Material: m}
}

// Rasterize scan converts the pixel space triangle t into rc.Target.
//
// A pixel is covered when its center lies inside t. Rows whose center lies
// exactly on the split height belong to the upper half and the right edge of
// each span is exclusive, so triangles sharing an edge never draw a pixel twice.
// Degenerate triangles and halves with non finite edge slopes produce no
// fragments.
func Rasterize(rc *RasterContext, t *Triangle) {
	tri := *t
	// Sort by descending Y, vertex 0 on top. order[i] is the input index of
	// sorted vertex i.
	order := [3]uint8{0, 1, 2}
	if tri.V[0].Y < tri.V[1].Y {
		tri.swap(0, 1)
		order[0], order[1] = order[1], order[0]
	}
	if tri.V[0].Y < tri.V[2].Y {
		tri.swap(0, 2)
		order[0], order[2] = order[2], order[0]
	}
	if tri.V[1].Y < tri.V[2].Y {
		tri.swap(1, 2)
		order[1], order[2] = order[2], order[1]
	}
	p0, p1, p2 := tri.V[0], tri.V[1], tri.V[2]
	ix := int(math32.Floor(p0.X))
	if ix == int(math32.Floor(p1.X)) && ix == int(math32.Floor(p2.X)) {
		return
	}
	var r rasterizer
	r.rc = rc
	r.tri = &tri
	r.order = order
	r.bary.init(&tri)
	if math32.IsInf(r.bary.invDenom, 0) || math32.IsNaN(r.bary.invDenom) {
		return // Zero area.
	}
	r.mask = tri.Attr[0].usedMask()
	for slot := range rc.frag.attr {
		if r.mask&(1<<slot) == 0 {
			rc.frag.attr[slot].N = 0
		}
	}
	rc.frag.class = rc.Class

	// Split the long edge 0->2 at the height of vertex 1.
	s := (p1.Y - p0.Y) / (p2.Y - p0.Y)
	splitX := p0.X + (p2.X-p0.X)*s
	if math32.IsNaN(splitX) {
		splitX = p1.X
	}
	xa, xb := p1.X, splitX
	if xa > xb {
		xa, xb = xb, xa
	}
	midY := p1.Y

	// Flat bottom half: rows with centers in [midY, p0.Y].
	{
		dy := p0.Y - midY
		r.half(xa, xb, (p0.X-xa)/dy, (p0.X-xb)/dy, midY,
			int(math32.Ceil(midY-0.5)), int(math32.Floor(p0.Y-0.5)))
	}
	// Flat top half: rows with centers in [p2.Y, midY).
	{
		dy := midY - p2.Y
		r.half(xa, xb, (xa-p2.X)/dy, (xb-p2.X)/dy, midY,
			int(math32.Ceil(p2.Y-0.5)), int(math32.Ceil(midY-0.5))-1)
	}
}

type rasterizer struct {
	rc    *RasterContext
	tri   *Triangle
	bary  barycentricSolver
	mask  uint16
	order [3]uint8
}

// half fills rows rowStart..rowEnd of one flat sided half. The span of the
// row with center yc is [xl, xr) where xl = xLeft + slopeL*(yc-flatY).
func (r *rasterizer) half(xLeft, xRight, slopeL, slopeR, flatY float32, rowStart, rowEnd int) {
	if !finite(slopeL) || !finite(slopeR) {
		return
	}
	rc := r.rc
	target := rc.Target
	rowStart = max(rowStart, rc.MinY, 0)
	rowEnd = min(rowEnd, rc.MaxY-1, target.height-1)
	for y := rowStart; y <= rowEnd; y++ {
		yc := float32(y) + 0.5
		xl := xLeft + slopeL*(yc-flatY)
		xr := xRight + slopeR*(yc-flatY)
		colStart := max(int(math32.Ceil(xl-0.5)), 0)
		colEnd := min(int(math32.Ceil(xr-0.5))-1, target.width-1)
		for x := colStart; x <= colEnd; x++ {
			r.fragment(x, y, yc)
		}
	}
}

func (r *rasterizer) fragment(x, y int, yc float32) {
	rc := r.rc
	tri := r.tri
	target := rc.Target
	w := r.bary.weights(float32(x)+0.5, yc)
	sum := w[0]*tri.InvDepth[0] + w[1]*tri.InvDepth[1] + w[2]*tri.InvDepth[2]
	if !(sum > 0) {
		return
	}
	depth := 1 / sum
	rc.Stats.Fragments++
	if !target.UnsafeDepthTest(x, y, depth) {
		rc.Stats.DepthRejected++
		return
	}
	frag := &rc.frag
	if r.mask != 0 {
		inv := 1 / sum
		pw := [3]float32{
			tri.InvDepth[0] * w[0] * inv,
			tri.InvDepth[1] * w[1] * inv,
			tri.InvDepth[2] * w[2] * inv,
		}
		interpAttributes(&frag.attr, &tri.Attr, pw, r.mask)
	}
	below, _ := target.UnsafeFragment(x, y)
	// Weights are reported in the vertex order of the input triangle.
	for i, k := range r.order {
		frag.weights[k] = w[i]
	}
	frag.below = below

	var c Color
	m := rc.Material
	if m == nil || m.fragment == nil {
		c = ErrorColor
	} else if !m.fragment.ShadeFragment(frag, rc.TriangleID, rc.InstanceID, FragPos{X: x, Y: y, Depth: depth}, &c) {
		rc.Stats.Discarded++
		return
	}
	if c.A == 0 {
		rc.Stats.Discarded++
		return
	}
	if c.A < Opaque {
		c = Blend(below, c)
	}
	target.UnsafeSetFragment(x, y, c, depth)
	rc.Stats.Written++
}

func finite(f float32) bool {
	return !math32.IsInf(f, 0) && !math32.IsNaN(f)
}
