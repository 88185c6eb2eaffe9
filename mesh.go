package csm

import (
	"fmt"

	"github.com/soypat/glgl/math/ms3"
)

// Mesh is an indexed triangle list. Every 3 consecutive indices form one
// triangle. A Mesh is immutable once created.
type Mesh struct {
	positions []ms3.Vec
	indices   []uint32
}

// NewMesh copies positions and indices into a new Mesh.
func NewMesh(positions []ms3.Vec, indices []uint32) (*Mesh, error) {
	switch {
	case len(positions) == 0:
		return nil, errMsg(ErrInvalidMesh, "no vertex positions")
	case len(indices) == 0 || len(indices)%3 != 0:
		return nil, errMsg(ErrInvalidMesh, fmt.Sprintf("index count %d not a positive multiple of 3", len(indices)))
	}
	for i, idx := range indices {
		if int(idx) >= len(positions) {
			return nil, errMsg(ErrInvalidMesh, fmt.Sprintf("index %d references vertex %d of %d", i, idx, len(positions)))
		}
	}
	m := &Mesh{
		positions: append([]ms3.Vec(nil), positions...),
		indices:   append([]uint32(nil), indices...),
	}
	return m, nil
}

// VertexCount returns the number of vertex positions.
func (m *Mesh) VertexCount() int { return len(m.positions) }

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int { return len(m.indices) / 3 }

// Position returns the ith vertex position.
func (m *Mesh) Position(i int) ms3.Vec { return m.positions[i] }

// Triangle returns the vertex indices of the ith triangle.
func (m *Mesh) Triangle(i int) [3]uint32 {
	return [3]uint32{m.indices[3*i], m.indices[3*i+1], m.indices[3*i+2]}
}

// Bounds returns the axis aligned bounding box of the mesh positions.
func (m *Mesh) Bounds() ms3.Box {
	bb := ms3.Box{Min: m.positions[0], Max: m.positions[0]}
	for _, p := range m.positions[1:] {
		bb.Min = ms3.MinElem(bb.Min, p)
		bb.Max = ms3.MaxElem(bb.Max, p)
	}
	return bb
}
