package csm

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms3"
)

// viewTriangle returns a view space triangle whose output slot 0 holds the
// z coordinate of each vertex and slot 3 the vertex index.
func viewTriangle(a, b, c ms3.Vec) Triangle {
	t := Triangle{V: [3]ms3.Vec{a, b, c}}
	for i, v := range t.V {
		t.Attr[i][0] = Attribute{N: 1, V: [MaxComponents]float32{v.Z}}
		t.Attr[i][3] = Attribute{N: 2, V: [MaxComponents]float32{float32(i), -float32(i)}}
	}
	return t
}

func signedArea(t *Triangle) float32 {
	e1 := ms3.Sub(t.V[1], t.V[0])
	e2 := ms3.Sub(t.V[2], t.V[0])
	return e1.X*e2.Y - e1.Y*e2.X
}

func TestClipUnchanged(t *testing.T) {
	cp := ClipPlane{Z: DefaultClipZ}
	for _, tri := range []Triangle{
		viewTriangle(ms3.Vec{X: 0, Y: 0, Z: -1}, ms3.Vec{X: 1, Y: 0, Z: -2}, ms3.Vec{X: 0, Y: 1, Z: -3}),
		// On plane vertices are in front.
		viewTriangle(ms3.Vec{Z: -0.5}, ms3.Vec{X: 1, Z: -0.5}, ms3.Vec{Y: 1, Z: -0.5}),
	} {
		orig := tri
		var dst [2]Triangle
		res := cp.Clip(&dst, &tri)
		if res != ClipUnchanged {
			t.Fatalf("got %v, want unchanged", res)
		}
		if res.Count() != 0 {
			t.Errorf("unchanged count %d", res.Count())
		}
		if tri != orig {
			t.Error("input triangle modified")
		}
		if dst != ([2]Triangle{}) {
			t.Error("destination written for unchanged triangle")
		}
	}
}

func TestClipCull(t *testing.T) {
	cp := ClipPlane{Z: DefaultClipZ}
	tri := viewTriangle(ms3.Vec{Z: 0}, ms3.Vec{X: 1, Z: 2}, ms3.Vec{Y: 1, Z: -0.4})
	var dst [2]Triangle
	res := cp.Clip(&dst, &tri)
	if res != ClipCull || res.Count() != 0 {
		t.Fatalf("got %v, want cull", res)
	}
	if dst != ([2]Triangle{}) {
		t.Error("destination written for culled triangle")
	}
}

func TestClipOneBehind(t *testing.T) {
	cp := ClipPlane{Z: DefaultClipZ}
	for shift := 0; shift < 3; shift++ {
		// Rotate vertex order so every behind index is exercised.
		verts := [3]ms3.Vec{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: -2}, {X: 0, Y: 1, Z: -2}}
		tri := viewTriangle(verts[shift], verts[(shift+1)%3], verts[(shift+2)%3])
		area := signedArea(&tri)
		var dst [2]Triangle
		res := cp.Clip(&dst, &tri)
		if res != ClipSplitIntoTwo || res.Count() != 2 {
			t.Fatalf("shift %d: got %v, want split into two", shift, res)
		}
		onPlane := 0
		for k := range dst {
			out := &dst[k]
			if a := signedArea(out); a*area <= 0 {
				t.Errorf("shift %d: output %d winding flipped (area %g vs %g)", shift, k, a, area)
			}
			for i, v := range out.V {
				if v.Z > cp.Z {
					t.Errorf("shift %d: output vertex behind plane: %v", shift, v)
				}
				if v.Z == cp.Z {
					onPlane++
					// Slot 0 carries z so it must interpolate to the plane.
					if got := out.Attr[i][0].V[0]; math32.Abs(got-cp.Z) > 1e-5 {
						t.Errorf("shift %d: interpolated z output %g, want %g", shift, got, cp.Z)
					}
				}
				if out.Attr[i][3].N != 2 || out.Attr[i][0].N != 1 {
					t.Errorf("shift %d: output component counts not preserved", shift)
				}
				if want := -1 / v.Z; out.InvDepth[i] != want {
					t.Errorf("shift %d: inverse depth %g, want %g", shift, out.InvDepth[i], want)
				}
			}
		}
		// p1 is shared by both outputs, p2 belongs to the second.
		if onPlane != 3 {
			t.Errorf("shift %d: %d vertices on plane, want 3", shift, onPlane)
		}
		if dst[0].V[0] != dst[1].V[0] {
			t.Errorf("shift %d: outputs do not share the first plane vertex", shift)
		}
	}
}

func TestClipTwoBehind(t *testing.T) {
	cp := ClipPlane{Z: DefaultClipZ}
	front := ms3.Vec{X: 0, Y: 0, Z: -2}
	tri := viewTriangle(ms3.Vec{X: 1, Z: 0}, ms3.Vec{Y: 1, Z: 0}, front)
	area := signedArea(&tri)
	var dst [2]Triangle
	res := cp.Clip(&dst, &tri)
	if res != ClipSplitIntoOne || res.Count() != 1 {
		t.Fatalf("got %v, want split into one", res)
	}
	out := &dst[0]
	if out.V[0] != front {
		t.Errorf("front vertex moved: %v", out.V[0])
	}
	for i := 1; i < 3; i++ {
		if out.V[i].Z != cp.Z {
			t.Errorf("new vertex %d z=%g, want %g", i, out.V[i].Z, cp.Z)
		}
	}
	// Edge from front (z=-2) to (1,0,0) meets z=-0.5 at 3/4 of the way.
	if want := (ms3.Vec{X: 0.75, Z: -0.5}); !ms3.EqualElem(out.V[2], want, 1e-6) && !ms3.EqualElem(out.V[1], want, 1e-6) {
		t.Errorf("intersection not found on edge, got %v and %v", out.V[1], out.V[2])
	}
	if a := signedArea(out); a*area <= 0 {
		t.Errorf("winding flipped")
	}
	if dst[1] != (Triangle{}) {
		t.Error("second destination written")
	}
}

func TestClipResultCount(t *testing.T) {
	for _, test := range []struct {
		res  ClipResult
		want int
	}{
		{ClipCull, 0}, {ClipUnchanged, 0}, {ClipSplitIntoTwo, 2}, {ClipSplitIntoOne, 1},
	} {
		if got := test.res.Count(); got != test.want {
			t.Errorf("%v.Count() = %d, want %d", test.res, got, test.want)
		}
	}
}

func TestPrimeInverseDepth(t *testing.T) {
	tri := Triangle{V: [3]ms3.Vec{{Z: -1}, {Z: -2}, {Z: -4}}}
	tri.PrimeInverseDepth()
	want := [3]float32{1, 0.5, 0.25}
	if tri.InvDepth != want {
		t.Errorf("got %v, want %v", tri.InvDepth, want)
	}
}

func TestProject(t *testing.T) {
	tri := Triangle{V: [3]ms3.Vec{
		{X: 0, Y: 0, Z: -1},
		{X: 1, Y: 1, Z: -2},
		{X: -0.5, Y: 0.25, Z: -0.5},
	}}
	Project(200, 100, &tri)
	want := [3]ms3.Vec{
		{X: 100, Y: 50, Z: 1},
		{X: 125, Y: 75, Z: 2},
		{X: 50, Y: 75, Z: 0.5},
	}
	for i := range want {
		if !ms3.EqualElem(tri.V[i], want[i], 1e-5) {
			t.Errorf("vertex %d: got %v, want %v", i, tri.V[i], want[i])
		}
	}
}
