package csm

import (
	"fmt"

	"github.com/soypat/glgl/math/ms2"
)

// MaxDrawInputs is the number of per-draw input slots of a DrawContext.
const MaxDrawInputs = 32

// drawInputs are values set on a DrawContext and visible to both shader stages.
type drawInputs [MaxDrawInputs][]float32

func (in *drawInputs) get(id int) []float32 {
	if in == nil || id < 0 || id >= MaxDrawInputs {
		return nil
	}
	return in[id]
}

// VertexContext is the side channel of a vertex shader invocation. It is
// only valid for the duration of the call.
type VertexContext struct {
	class      *RenderClass
	inputs     *drawInputs
	out        *AttributeSet
	vertexID   int
	triangleID int
	instanceID int
}

// VertexID returns the mesh vertex index being shaded.
func (vc *VertexContext) VertexID() int { return vc.vertexID }

// TriangleID returns the mesh triangle index being shaded.
func (vc *VertexContext) TriangleID() int { return vc.triangleID }

// InstanceID returns the instance index being drawn.
func (vc *VertexContext) InstanceID() int { return vc.instanceID }

// SetOutput writes values to vertex output slot. Every vertex of a triangle
// must write the same number of components to a given slot.
func (vc *VertexContext) SetOutput(slot int, values ...float32) error {
	if slot < 0 || slot >= MaxVertexOutputs {
		return errMsg(ErrBadID, fmt.Sprintf("vertex output slot %d", slot))
	}
	if len(values) > MaxComponents {
		Logger().Warn("csm: vertex output dropped", "slot", slot, "components", len(values), "vertex", vc.vertexID, "triangle", vc.triangleID)
		return errMsg(ErrComponents, fmt.Sprintf("vertex output slot %d got %d components", slot, len(values)))
	}
	a := &vc.out[slot]
	a.N = uint8(copy(a.V[:], values))
	return nil
}

// SetOutputFromVertexData copies the current vertex's element of vertex
// buffer buf into output slot.
func (vc *VertexContext) SetOutputFromVertexData(buf, slot int) error {
	if slot < 0 || slot >= MaxVertexOutputs {
		return errMsg(ErrBadID, fmt.Sprintf("vertex output slot %d", slot))
	}
	var tmp [MaxComponents]float32
	n, err := vc.VertexData(buf, tmp[:])
	if err != nil {
		return err
	}
	a := &vc.out[slot]
	a.N = uint8(n)
	a.V = tmp
	return nil
}

// VertexData copies the current vertex's element of vertex buffer buf into dst.
func (vc *VertexContext) VertexData(buf int, dst []float32) (int, error) {
	vb, err := vc.class.VertexBuffer(buf)
	if err != nil {
		return 0, err
	}
	if vb == nil {
		return 0, errMsg(ErrBadID, fmt.Sprintf("vertex buffer slot %d unset", buf))
	}
	return vb.Element(vc.vertexID, dst)
}

// StaticData copies static buffer buf into dst.
func (vc *VertexContext) StaticData(buf int, dst []float32) (int, error) {
	return readStatic(vc.class, buf, dst)
}

// DrawInput returns the value of draw input id or nil if unset. The
// returned slice must not be modified.
func (vc *VertexContext) DrawInput(id int) []float32 { return vc.inputs.get(id) }

// FragmentContext is the side channel of a fragment shader invocation. One
// context is reused for every fragment of a row band and must not be
// retained by the shader.
type FragmentContext struct {
	class   *RenderClass
	inputs  *drawInputs
	attr    AttributeSet
	weights [3]float32
	below   Color
}

// Output returns the perspective correct interpolated value of vertex
// output slot, or nil if the slot is unused.
func (fc *FragmentContext) Output(slot int) []float32 {
	if slot < 0 || slot >= MaxVertexOutputs {
		return nil
	}
	a := &fc.attr[slot]
	if a.N == 0 {
		return nil
	}
	return a.V[:a.N]
}

// OutputComponents returns the number of components of vertex output slot.
func (fc *FragmentContext) OutputComponents(slot int) int {
	if slot < 0 || slot >= MaxVertexOutputs {
		return 0
	}
	return int(fc.attr[slot].N)
}

// Weights returns the screen space barycentric weights of the fragment.
func (fc *FragmentContext) Weights() [3]float32 { return fc.weights }

// Below returns the color currently stored under the fragment.
func (fc *FragmentContext) Below() Color { return fc.below }

// StaticData copies static buffer buf into dst.
func (fc *FragmentContext) StaticData(buf int, dst []float32) (int, error) {
	return readStatic(fc.class, buf, dst)
}

// DrawInput returns the value of draw input id or nil if unset.
func (fc *FragmentContext) DrawInput(id int) []float32 { return fc.inputs.get(id) }

// Sample samples texture at uv. See [RenderTarget.Sample].
func (fc *FragmentContext) Sample(texture *RenderTarget, uv ms2.Vec, mode SampleMode) Color {
	if texture == nil {
		return ErrorColor
	}
	return texture.Sample(uv, mode)
}

func readStatic(rc *RenderClass, buf int, dst []float32) (int, error) {
	sb, err := rc.StaticBuffer(buf)
	if err != nil {
		return 0, err
	}
	if sb == nil {
		return 0, errMsg(ErrBadID, fmt.Sprintf("static buffer slot %d unset", buf))
	}
	return sb.Read(dst), nil
}
