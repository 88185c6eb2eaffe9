package csm

import (
	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms2"
	"github.com/soypat/glgl/math/ms3"
)

// Triangle is the unit of work passed between pipeline stages. Positions are
// in view space before projection and in pixel space after it. InvDepth
// caches the inverse view distance of each vertex and is set exactly once,
// at the clip stage.
type Triangle struct {
	V        [3]ms3.Vec
	Attr     [3]AttributeSet
	InvDepth [3]float32
}

// PrimeInverseDepth caches 1/-z for each view space vertex.
func (t *Triangle) PrimeInverseDepth() {
	for i := range t.V {
		t.InvDepth[i] = -1 / t.V[i].Z
	}
}

// ScreenTriangle returns a triangle already in pixel space with Z holding the
// positive view distance of each vertex. It has no vertex outputs.
func ScreenTriangle(a, b, c ms3.Vec) Triangle {
	return Triangle{
		V:        [3]ms3.Vec{a, b, c},
		InvDepth: [3]float32{1 / a.Z, 1 / b.Z, 1 / c.Z},
	}
}

// swap exchanges vertex i and j together with their outputs and inverse depths.
func (t *Triangle) swap(i, j int) {
	t.V[i], t.V[j] = t.V[j], t.V[i]
	t.Attr[i], t.Attr[j] = t.Attr[j], t.Attr[i]
	t.InvDepth[i], t.InvDepth[j] = t.InvDepth[j], t.InvDepth[i]
}

// Barycentric returns the barycentric weights of p with respect to the XY
// projection of t. Weights of a degenerate triangle are NaN or infinite.
func Barycentric(t *Triangle, p ms2.Vec) [3]float32 {
	var b barycentricSolver
	b.init(t)
	return b.weights(p.X, p.Y)
}

// barycentricSolver caches the per triangle terms of the barycentric weight
// equations so the per pixel cost is a handful of multiplies.
type barycentricSolver struct {
	x2, y2   float32
	a, b     float32 // y1-y2, x2-x1
	c, d     float32 // y2-y0, x0-x2
	invDenom float32
}

func (bs *barycentricSolver) init(t *Triangle) {
	p0, p1, p2 := t.V[0], t.V[1], t.V[2]
	bs.x2, bs.y2 = p2.X, p2.Y
	bs.a = p1.Y - p2.Y
	bs.b = p2.X - p1.X
	bs.c = p2.Y - p0.Y
	bs.d = p0.X - p2.X
	bs.invDenom = 1 / (bs.a*(p0.X-p2.X) + bs.b*(p0.Y-p2.Y))
}

func (bs *barycentricSolver) weights(x, y float32) (w [3]float32) {
	dx, dy := x-bs.x2, y-bs.y2
	w[0] = (bs.a*dx + bs.b*dy) * bs.invDenom
	w[1] = (bs.c*dx + bs.d*dy) * bs.invDenom
	w[2] = 1 - w[0] - w[1]
	return w
}

// FastDistance approximates the XY distance between p1 and p2 within a few
// percent using an octagonal metric. Z is ignored.
func FastDistance(p1, p2 ms3.Vec) float32 {
	dx := math32.Abs(p2.X - p1.X)
	dy := math32.Abs(p2.Y - p1.Y)
	return 0.96*math32.Max(dx, dy) + 0.4*math32.Min(dx, dy)
}
