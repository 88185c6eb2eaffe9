package csm

import (
	"github.com/fogleman/fauxgl"
	"github.com/soypat/csm/internal/d3"
	"github.com/soypat/glgl/math/ms3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Instance transforms are composed in float64 and stored as row major
// ms3.Mat4 for the float32 vertex stage.

// TranslateMat4 returns a translation by v.
func TranslateMat4(v ms3.Vec) ms3.Mat4 {
	return fromTransform(d3.Transform{}.Translate(toR3(v)))
}

// ScaleMat4 returns a scaling about the origin by factor.
func ScaleMat4(factor ms3.Vec) ms3.Mat4 {
	return fromTransform(d3.Transform{}.Scale(r3.Vec{}, toR3(factor)))
}

// RotateMat4 returns a rotation of angle radians about axis. The axis need
// not be normalized.
func RotateMat4(angle float32, axis ms3.Vec) ms3.Mat4 {
	q := r3.NewRotation(float64(angle), toR3(axis))
	return fromTransform(d3.ComposeTransform(r3.Vec{}, d3.Elem(1), q))
}

// RotateToVecMat4 returns the rotation that turns direction a onto direction b.
func RotateToVecMat4(a, b ms3.Vec) ms3.Mat4 {
	return fromTransform(d3.RotateToVec(toR3(a), toR3(b)))
}

// LookAtMat4 returns the view transform of a camera at eye looking at center.
// The camera looks down -z in view space with up along +y.
func LookAtMat4(eye, center, up ms3.Vec) ms3.Mat4 {
	m := fauxgl.LookAt(toFaux(eye), toFaux(center), toFaux(up))
	return ms3.NewMat4([]float32{
		float32(m.X00), float32(m.X01), float32(m.X02), float32(m.X03),
		float32(m.X10), float32(m.X11), float32(m.X12), float32(m.X13),
		float32(m.X20), float32(m.X21), float32(m.X22), float32(m.X23),
		float32(m.X30), float32(m.X31), float32(m.X32), float32(m.X33),
	})
}

// MulMat4 returns a*b. Applied to a position, b acts first.
func MulMat4(a, b ms3.Mat4) ms3.Mat4 {
	return fromTransform(toTransform(a).Mul(toTransform(b)))
}

// InverseMat4 returns the inverse of m, or the zero matrix if m is singular.
func InverseMat4(m ms3.Mat4) ms3.Mat4 {
	return fromTransform(toTransform(m).Inv())
}

// TransformPosition applies m to the point p, dividing by the resulting w
// when m is projective.
func TransformPosition(m ms3.Mat4, p ms3.Vec) ms3.Vec {
	a := m.Array()
	v := ms3.Vec{
		X: a[0]*p.X + a[1]*p.Y + a[2]*p.Z + a[3],
		Y: a[4]*p.X + a[5]*p.Y + a[6]*p.Z + a[7],
		Z: a[8]*p.X + a[9]*p.Y + a[10]*p.Z + a[11],
	}
	w := a[12]*p.X + a[13]*p.Y + a[14]*p.Z + a[15]
	if w != 1 && w != 0 {
		v = ms3.Scale(1/w, v)
	}
	return v
}

// TransformDirection applies the linear part of m to v, ignoring translation.
func TransformDirection(m ms3.Mat4, v ms3.Vec) ms3.Vec {
	a := m.Array()
	return ms3.Vec{
		X: a[0]*v.X + a[1]*v.Y + a[2]*v.Z,
		Y: a[4]*v.X + a[5]*v.Y + a[6]*v.Z,
		Z: a[8]*v.X + a[9]*v.Y + a[10]*v.Z,
	}
}

func toR3(v ms3.Vec) r3.Vec {
	return r3.Vec{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

func toFaux(v ms3.Vec) fauxgl.Vector {
	return fauxgl.Vector{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

func toTransform(m ms3.Mat4) d3.Transform {
	a := m.Array()
	var f [16]float64
	for i, v := range a {
		f[i] = float64(v)
	}
	return d3.NewTransform(f[:])
}

func fromTransform(t d3.Transform) ms3.Mat4 {
	var f [16]float32
	for i, v := range t.SliceCopy() {
		f[i] = float32(v)
	}
	return ms3.NewMat4(f[:])
}
