package csm

import (
	"fmt"

	"github.com/soypat/glgl/math/ms3"
)

const (
	// MaxClassMaterials is the number of material slots of a RenderClass.
	MaxClassMaterials = 8
	// MaxClassVertexBuffers is the number of vertex buffer slots of a RenderClass.
	MaxClassVertexBuffers = 16
	// MaxClassStaticBuffers is the number of static buffer slots of a RenderClass.
	MaxClassStaticBuffers = 32
	// BadID is returned by name lookups that find nothing.
	BadID = -1
)

// VertexShader transforms a single mesh vertex. It is called once per
// triangle vertex and may write vertex outputs through ctx. The returned
// position is in view space, looking down -z.
type VertexShader interface {
	ShadeVertex(ctx *VertexContext, vertexID, triangleID, instanceID int, transform ms3.Mat4, pos ms3.Vec) ms3.Vec
}

// FragmentShader shades a single covered pixel. color is the color to
// write and starts out as the zero Color. Returning false discards the
// fragment. Fragment shaders may be called concurrently from several
// goroutines and must not mutate shared state.
type FragmentShader interface {
	ShadeFragment(ctx *FragmentContext, triangleID, instanceID int, frag FragPos, color *Color) (keep bool)
}

// VertexFunc adapts a function to the [VertexShader] interface.
type VertexFunc func(ctx *VertexContext, vertexID, triangleID, instanceID int, transform ms3.Mat4, pos ms3.Vec) ms3.Vec

// ShadeVertex calls f.
func (f VertexFunc) ShadeVertex(ctx *VertexContext, vertexID, triangleID, instanceID int, transform ms3.Mat4, pos ms3.Vec) ms3.Vec {
	return f(ctx, vertexID, triangleID, instanceID, transform, pos)
}

// FragmentFunc adapts a function to the [FragmentShader] interface.
type FragmentFunc func(ctx *FragmentContext, triangleID, instanceID int, frag FragPos, color *Color) bool

// ShadeFragment calls f.
func (f FragmentFunc) ShadeFragment(ctx *FragmentContext, triangleID, instanceID int, frag FragPos, color *Color) bool {
	return f(ctx, triangleID, instanceID, frag, color)
}

// FragPos is the pixel position and interpolated depth of a fragment.
type FragPos struct {
	X, Y  int
	Depth float32
}

// Material is an immutable pair of shaders. Either may be nil: a nil vertex
// shader passes positions through untouched and a nil fragment shader
// writes [ErrorColor].
type Material struct {
	name     string
	vertex   VertexShader
	fragment FragmentShader
}

// NewMaterial returns a new material.
func NewMaterial(name string, vs VertexShader, fs FragmentShader) *Material {
	return &Material{name: name, vertex: vs, fragment: fs}
}

// Name returns the material name.
func (m *Material) Name() string { return m.name }

// RenderClass binds a mesh to its materials and per-class data buffers.
// A render class is not safe for concurrent modification; draws only read it.
type RenderClass struct {
	name           string
	mesh           *Mesh
	materials      [MaxClassMaterials]*Material
	singleMaterial bool
	triMaterials   []uint8
	vertexBuffers  [MaxClassVertexBuffers]*VertexBuffer
	staticBuffers  [MaxClassStaticBuffers]*StaticBuffer
}

// NewRenderClass creates a render class that draws every triangle of mesh
// with material until per-triangle materials are enabled.
func NewRenderClass(name string, mesh *Mesh, material *Material) (*RenderClass, error) {
	if mesh == nil {
		return nil, errMsg(ErrNilResource, "render class mesh")
	}
	if material == nil {
		return nil, errMsg(ErrNilResource, "render class default material")
	}
	rc := &RenderClass{
		name:           name,
		mesh:           mesh,
		singleMaterial: true,
		triMaterials:   make([]uint8, mesh.TriangleCount()),
	}
	rc.materials[0] = material
	return rc, nil
}

// Name returns the class name.
func (rc *RenderClass) Name() string { return rc.name }

// Mesh returns the class mesh.
func (rc *RenderClass) Mesh() *Mesh { return rc.mesh }

// SetMaterial sets material slot id. Slot 0 is the default material and
// may not be cleared.
func (rc *RenderClass) SetMaterial(id int, m *Material) error {
	if id < 0 || id >= MaxClassMaterials {
		return errMsg(ErrBadID, fmt.Sprintf("material slot %d", id))
	}
	if id == 0 && m == nil {
		return errMsg(ErrNilResource, "default material")
	}
	rc.materials[id] = m
	return nil
}

// Material returns the material in slot id.
func (rc *RenderClass) Material(id int) (*Material, error) {
	if id < 0 || id >= MaxClassMaterials {
		return nil, errMsg(ErrBadID, fmt.Sprintf("material slot %d", id))
	}
	return rc.materials[id], nil
}

// MaterialID returns the slot of the first material named name.
func (rc *RenderClass) MaterialID(name string) (int, error) {
	for id, m := range rc.materials {
		if m != nil && m.name == name {
			return id, nil
		}
	}
	return BadID, errMsg(ErrBadID, fmt.Sprintf("no material named %q", name))
}

// SetSingleMaterial selects whether every triangle uses the default
// material (true) or its per-triangle material (false).
func (rc *RenderClass) SetSingleMaterial(single bool) { rc.singleMaterial = single }

// SingleMaterial reports whether per-triangle materials are ignored.
func (rc *RenderClass) SingleMaterial() bool { return rc.singleMaterial }

// SetTriangleMaterials sets the material slot of every mesh triangle.
// ids must have one entry per triangle.
func (rc *RenderClass) SetTriangleMaterials(ids []uint8) error {
	if len(ids) != len(rc.triMaterials) {
		return errMsg(ErrInvalidDimensions, fmt.Sprintf("got %d triangle materials, mesh has %d triangles", len(ids), len(rc.triMaterials)))
	}
	for i, id := range ids {
		if int(id) >= MaxClassMaterials {
			return errMsg(ErrBadID, fmt.Sprintf("triangle %d material slot %d", i, id))
		}
	}
	copy(rc.triMaterials, ids)
	return nil
}

// TriangleMaterialID returns the material slot assigned to triangle tri.
func (rc *RenderClass) TriangleMaterialID(tri int) (int, error) {
	if tri < 0 || tri >= len(rc.triMaterials) {
		return BadID, errMsg(ErrBadID, fmt.Sprintf("triangle %d of %d", tri, len(rc.triMaterials)))
	}
	return int(rc.triMaterials[tri]), nil
}

// triangleMaterial resolves the material that draws triangle tri. Unset
// per-triangle slots fall back to the default material.
func (rc *RenderClass) triangleMaterial(tri int) *Material {
	if !rc.singleMaterial {
		if m := rc.materials[rc.triMaterials[tri]]; m != nil {
			return m
		}
	}
	m := rc.materials[0]
	if m == nil {
		fatalf("render class %q has no default material (triangle %d)", rc.name, tri)
	}
	return m
}

// SetVertexBuffer binds vb to slot id. The buffer must have one element per
// mesh vertex. A nil vb clears the slot.
func (rc *RenderClass) SetVertexBuffer(id int, vb *VertexBuffer) error {
	if id < 0 || id >= MaxClassVertexBuffers {
		return errMsg(ErrBadID, fmt.Sprintf("vertex buffer slot %d", id))
	}
	if vb != nil && vb.Len() < rc.mesh.VertexCount() {
		return errMsg(ErrInvalidDimensions, fmt.Sprintf("vertex buffer %q has %d elements, mesh has %d vertices", vb.name, vb.Len(), rc.mesh.VertexCount()))
	}
	rc.vertexBuffers[id] = vb
	return nil
}

// VertexBuffer returns the vertex buffer in slot id, which may be nil.
func (rc *RenderClass) VertexBuffer(id int) (*VertexBuffer, error) {
	if id < 0 || id >= MaxClassVertexBuffers {
		return nil, errMsg(ErrBadID, fmt.Sprintf("vertex buffer slot %d", id))
	}
	return rc.vertexBuffers[id], nil
}

// VertexBufferID returns the slot of the vertex buffer named name.
func (rc *RenderClass) VertexBufferID(name string) (int, error) {
	for id, vb := range rc.vertexBuffers {
		if vb != nil && vb.name == name {
			return id, nil
		}
	}
	return BadID, errMsg(ErrBadID, fmt.Sprintf("no vertex buffer named %q", name))
}

// SetStaticBuffer binds sb to slot id. A nil sb clears the slot.
func (rc *RenderClass) SetStaticBuffer(id int, sb *StaticBuffer) error {
	if id < 0 || id >= MaxClassStaticBuffers {
		return errMsg(ErrBadID, fmt.Sprintf("static buffer slot %d", id))
	}
	rc.staticBuffers[id] = sb
	return nil
}

// StaticBuffer returns the static buffer in slot id, which may be nil.
func (rc *RenderClass) StaticBuffer(id int) (*StaticBuffer, error) {
	if id < 0 || id >= MaxClassStaticBuffers {
		return nil, errMsg(ErrBadID, fmt.Sprintf("static buffer slot %d", id))
	}
	return rc.staticBuffers[id], nil
}

// StaticBufferID returns the slot of the static buffer named name.
func (rc *RenderClass) StaticBufferID(name string) (int, error) {
	for id, sb := range rc.staticBuffers {
		if sb != nil && sb.name == name {
			return id, nil
		}
	}
	return BadID, errMsg(ErrBadID, fmt.Sprintf("no static buffer named %q", name))
}
