package csm

import (
	"fmt"

	"github.com/soypat/glgl/math/ms3"
)

// DefaultClipZ is the view space z of the near clip plane used when none
// is configured.
const DefaultClipZ float32 = -0.5

// ClipResult is the outcome of clipping a triangle against a ClipPlane.
type ClipResult uint8

const (
	// ClipCull means every vertex was behind the plane. Nothing is drawn.
	ClipCull ClipResult = iota
	// ClipUnchanged means no vertex was behind the plane. The input triangle
	// is drawn as is and the destination is left untouched.
	ClipUnchanged
	// ClipSplitIntoTwo means one vertex was behind the plane and the visible
	// quadrilateral was written as two triangles.
	ClipSplitIntoTwo
	// ClipSplitIntoOne means two vertices were behind the plane and the
	// visible part was written as one triangle.
	ClipSplitIntoOne
)

// Count returns the number of triangles written to the destination.
func (r ClipResult) Count() int {
	switch r {
	case ClipSplitIntoTwo:
		return 2
	case ClipSplitIntoOne:
		return 1
	}
	return 0
}

func (r ClipResult) String() string {
	switch r {
	case ClipCull:
		return "cull"
	case ClipUnchanged:
		return "unchanged"
	case ClipSplitIntoTwo:
		return "split into two"
	case ClipSplitIntoOne:
		return "split into one"
	}
	return fmt.Sprintf("ClipResult(%d)", uint8(r))
}

// ClipPlane is a near plane perpendicular to the view axis at z = Z.
// The viewer looks down -z so visible geometry has z <= Z.
type ClipPlane struct {
	Z float32
}

// distance returns the signed distance of v to the plane, negative behind it.
func (cp ClipPlane) distance(v ms3.Vec) float32 {
	return ms3.Dot(ms3.Vec{Z: -1}, v) + cp.Z
}

// Behind reports whether v is behind the plane. A vertex lying on the plane
// is in front.
func (cp ClipPlane) Behind(v ms3.Vec) bool { return cp.distance(v) < 0 }

// Clip clips t against the plane. Split results are written to dst with
// inverse depths primed and winding order preserved. New vertices lie
// exactly on the plane. t is never modified.
func (cp ClipPlane) Clip(dst *[2]Triangle, t *Triangle) ClipResult {
	var behind [3]bool
	n := 0
	for i, v := range t.V {
		if cp.Behind(v) {
			behind[i] = true
			n++
		}
	}
	switch n {
	case 0:
		return ClipUnchanged
	case 3:
		return ClipCull
	case 1:
		b := 0
		for !behind[b] {
			b++
		}
		a, c := (b+1)%3, (b+2)%3
		// Visible polygon in winding order is p1, A, C, p2.
		var p1, p2 Triangle
		cp.intersect(&p1, 0, t, b, a)
		cp.intersect(&p2, 0, t, c, b)
		dst[0].setVertex(0, &p1, 0)
		dst[0].setVertex(1, t, a)
		dst[0].setVertex(2, t, c)
		dst[1].setVertex(0, &p1, 0)
		dst[1].setVertex(1, t, c)
		dst[1].setVertex(2, &p2, 0)
		dst[0].PrimeInverseDepth()
		dst[1].PrimeInverseDepth()
		return ClipSplitIntoTwo
	case 2:
		f := 0
		for behind[f] {
			f++
		}
		d := &dst[0]
		d.setVertex(0, t, f)
		cp.intersect(d, 1, t, f, (f+1)%3)
		cp.intersect(d, 2, t, f, (f+2)%3)
		d.PrimeInverseDepth()
		return ClipSplitIntoOne
	}
	fatalf("clip: %d of 3 vertices behind plane z=%g, triangle %v", n, cp.Z, t.V)
	return ClipCull
}

// intersect writes the intersection of edge a->b of t with the plane to
// vertex i of dst. Outputs are interpolated by the distance travelled along
// the edge.
func (cp ClipPlane) intersect(dst *Triangle, i int, t *Triangle, a, b int) {
	pa, pb := t.V[a], t.V[b]
	edge := ms3.Sub(pb, pa)
	s := (cp.Z - pa.Z) / edge.Z
	p := ms3.Add(pa, ms3.Scale(s, edge))
	p.Z = cp.Z
	ratio := s
	if length := ms3.Norm(edge); length > 0 {
		ratio = ms3.Norm(ms3.Sub(p, pa)) / length
	}
	dst.V[i] = p
	lerpAttributes(&dst.Attr[i], &t.Attr[a], &t.Attr[b], ratio)
}

func (t *Triangle) setVertex(i int, src *Triangle, j int) {
	t.V[i] = src.V[j]
	t.Attr[i] = src.Attr[j]
	t.InvDepth[i] = src.InvDepth[j]
}
