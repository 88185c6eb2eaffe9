package csm

import (
	"fmt"
	"sync"
)

// MaxComponents is the maximum number of float components of a vertex
// buffer element or vertex output.
const MaxComponents = 8

// VertexBuffer holds per-vertex data of a render class, such as normals or
// texture coordinates. Element i belongs to mesh vertex i.
type VertexBuffer struct {
	name       string
	components int
	data       []float32
}

// NewVertexBuffer creates a buffer of len(data)/components elements.
// The data is copied.
func NewVertexBuffer(name string, components int, data []float32) (*VertexBuffer, error) {
	if components <= 0 || components > MaxComponents {
		return nil, errMsg(ErrComponents, fmt.Sprintf("vertex buffer %q has %d components", name, components))
	}
	if len(data) == 0 || len(data)%components != 0 {
		return nil, errMsg(ErrInvalidDimensions, fmt.Sprintf("vertex buffer %q data length %d not a positive multiple of %d", name, len(data), components))
	}
	return &VertexBuffer{
		name:       name,
		components: components,
		data:       append([]float32(nil), data...),
	}, nil
}

// Name returns the buffer name.
func (vb *VertexBuffer) Name() string { return vb.name }

// Components returns the number of float components per element.
func (vb *VertexBuffer) Components() int { return vb.components }

// Len returns the number of elements.
func (vb *VertexBuffer) Len() int { return len(vb.data) / vb.components }

// Element copies element i into dst and returns the number of components copied.
func (vb *VertexBuffer) Element(i int, dst []float32) (int, error) {
	if i < 0 || i >= vb.Len() {
		return 0, errMsg(ErrBadID, fmt.Sprintf("vertex buffer %q element %d of %d", vb.name, i, vb.Len()))
	}
	return copy(dst, vb.data[i*vb.components:(i+1)*vb.components]), nil
}

// SetElement overwrites element i with src. src must hold at least
// Components values.
func (vb *VertexBuffer) SetElement(i int, src []float32) error {
	if i < 0 || i >= vb.Len() {
		return errMsg(ErrBadID, fmt.Sprintf("vertex buffer %q element %d of %d", vb.name, i, vb.Len()))
	}
	if len(src) < vb.components {
		return errMsg(ErrComponents, fmt.Sprintf("got %d values, want %d", len(src), vb.components))
	}
	copy(vb.data[i*vb.components:], src[:vb.components])
	return nil
}

// StaticBuffer is per-class uniform data readable from both shader stages.
// It is safe to update concurrently with draws.
type StaticBuffer struct {
	name string
	mu   sync.RWMutex
	data []float32
}

// NewStaticBuffer creates a static buffer holding a copy of data.
func NewStaticBuffer(name string, data []float32) (*StaticBuffer, error) {
	if len(data) == 0 {
		return nil, errMsg(ErrInvalidDimensions, fmt.Sprintf("static buffer %q is empty", name))
	}
	return &StaticBuffer{name: name, data: append([]float32(nil), data...)}, nil
}

// Name returns the buffer name.
func (sb *StaticBuffer) Name() string { return sb.name }

// Len returns the number of float32 values held.
func (sb *StaticBuffer) Len() int { return len(sb.data) }

// Read copies the buffer contents into dst and returns the number of values copied.
func (sb *StaticBuffer) Read(dst []float32) int {
	sb.mu.RLock()
	n := copy(dst, sb.data)
	sb.mu.RUnlock()
	return n
}

// Update calls fn with exclusive access to the buffer contents.
func (sb *StaticBuffer) Update(fn func(data []float32)) {
	sb.mu.Lock()
	defer sb.mu.Unlock()
	fn(sb.data)
}
