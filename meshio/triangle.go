// Package meshio reads and writes triangle soups and turns them into indexed
// meshes ready to be drawn.
package meshio

import (
	"io"

	"github.com/soypat/csm/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle is a triangle in model space with counter clockwise winding.
type Triangle struct {
	V [3]r3.Vec
}

// Normal returns the unit normal of the triangle. Degenerate triangles
// return the zero vector.
func (t Triangle) Normal() r3.Vec {
	n := r3.Cross(r3.Sub(t.V[1], t.V[0]), r3.Sub(t.V[2], t.V[0]))
	if r3.Norm2(n) == 0 {
		return r3.Vec{}
	}
	return r3.Unit(n)
}

// Degenerate reports whether two vertices of t are within tol of each other.
func (t Triangle) Degenerate(tol float64) bool {
	return d3.EqualWithin(t.V[0], t.V[1], tol) ||
		d3.EqualWithin(t.V[1], t.V[2], tol) ||
		d3.EqualWithin(t.V[2], t.V[0], tol)
}

// Bounds returns the bounding box of a set of triangles.
func Bounds(model []Triangle) r3.Box {
	if len(model) == 0 {
		return r3.Box{}
	}
	bb := d3.Box{Min: model[0].V[0], Max: model[0].V[0]}
	for _, t := range model {
		for _, v := range t.V {
			bb = bb.Include(v)
		}
	}
	return r3.Box(bb)
}

// TriangleReader streams triangles. ReadTriangles returns io.EOF once no
// more triangles remain.
type TriangleReader interface {
	ReadTriangles(dst []Triangle) (int, error)
}

// NewSliceReader returns a TriangleReader over model.
func NewSliceReader(model []Triangle) TriangleReader {
	return &sliceReader{buf: model}
}

type sliceReader struct {
	buf []Triangle
}

func (b *sliceReader) ReadTriangles(t []Triangle) (int, error) {
	if len(b.buf) == 0 {
		return 0, io.EOF
	}
	n := copy(t, b.buf)
	b.buf = b.buf[n:]
	return n, nil
}

// ReadAll reads the full contents of a TriangleReader. It does not return
// an error on io.EOF.
func ReadAll(r TriangleReader) ([]Triangle, error) {
	var err error
	var nt int
	result := make([]Triangle, 0, 1<<12)
	buf := make([]Triangle, 1024)
	for {
		nt, err = r.ReadTriangles(buf)
		result = append(result, buf[:nt]...)
		if err != nil {
			break
		}
	}
	if err == io.EOF {
		return result, nil
	}
	return result, err
}
