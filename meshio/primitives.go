package meshio

import (
	"github.com/soypat/csm/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// boxFaces lists the corners of each box face in counter clockwise order seen
// from outside. Corner bits select the max side: x=1, y=2, z=4.
var boxFaces = [6][4]int{
	{0, 2, 3, 1}, // -z
	{4, 5, 7, 6}, // +z
	{0, 1, 5, 4}, // -y
	{2, 6, 7, 3}, // +y
	{0, 4, 6, 2}, // -x
	{1, 3, 7, 5}, // +x
}

// Box returns the 12 outward facing triangles of an axis aligned box.
func Box(center, size r3.Vec) []Triangle {
	tf := d3.Transform{}.Scale(r3.Vec{}, size).Translate(center)
	var corners [8]r3.Vec
	for i := range corners {
		unit := r3.Vec{X: -0.5, Y: -0.5, Z: -0.5}
		if i&1 != 0 {
			unit.X = 0.5
		}
		if i&2 != 0 {
			unit.Y = 0.5
		}
		if i&4 != 0 {
			unit.Z = 0.5
		}
		corners[i] = tf.Transform(unit)
	}
	model := make([]Triangle, 0, 12)
	for _, f := range boxFaces {
		a, b, c, d := corners[f[0]], corners[f[1]], corners[f[2]], corners[f[3]]
		model = append(model, Triangle{V: [3]r3.Vec{a, b, c}}, Triangle{V: [3]r3.Vec{a, c, d}})
	}
	return model
}
