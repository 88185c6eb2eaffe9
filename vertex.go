package csm

import (
	"fmt"

	"github.com/soypat/glgl/math/ms3"
)

// processTriangle runs the vertex stage of material m over the three
// vertices of mesh triangle tri and writes the view space result to out.
// Inverse depths of out are not set.
func processTriangle(vc *VertexContext, rc *RenderClass, m *Material, tri, instance int, transform ms3.Mat4, out *Triangle) error {
	idx := rc.mesh.Triangle(tri)
	vc.class = rc
	vc.triangleID = tri
	vc.instanceID = instance
	for i, vi := range idx {
		out.Attr[i] = AttributeSet{}
		pos := rc.mesh.positions[vi]
		if m.vertex == nil {
			out.V[i] = pos
			continue
		}
		vc.vertexID = int(vi)
		vc.out = &out.Attr[i]
		out.V[i] = m.vertex.ShadeVertex(vc, int(vi), tri, instance, transform, pos)
	}
	vc.out = nil
	if slot := checkAttributes(&out.Attr); slot >= 0 {
		return errMsg(ErrAttributeMismatch, fmt.Sprintf("triangle %d output slot %d has %d/%d/%d components",
			tri, slot, out.Attr[0][slot].N, out.Attr[1][slot].N, out.Attr[2][slot].N))
	}
	return nil
}
