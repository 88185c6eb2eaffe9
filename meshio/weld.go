package meshio

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/csm"
	"github.com/soypat/csm/internal/d3"
	"github.com/soypat/glgl/math/ms3"
	"gonum.org/v1/gonum/spatial/r3"
)

// WeldMethod selects how coincident vertices are found.
type WeldMethod int

const (
	// WeldGrid snaps vertices to a grid of Tolerance spacing and merges
	// vertices that land in the same cell.
	WeldGrid WeldMethod = iota
	// WeldNearest merges every vertex within Tolerance of the first vertex
	// seen in its neighbourhood. Slower than WeldGrid but not sensitive to
	// vertices straddling a grid cell boundary.
	WeldNearest
)

func (m WeldMethod) String() string {
	switch m {
	case WeldGrid:
		return "grid"
	case WeldNearest:
		return "nearest"
	}
	return fmt.Sprintf("WeldMethod(%d)", int(m))
}

// WeldConfig configures Weld.
type WeldConfig struct {
	// Tolerance is the distance under which two vertices are merged.
	// If zero it is inferred from the shortest edge of the model.
	Tolerance float64
	Method    WeldMethod
}

// Model is an indexed mesh with its per-vertex data, ready to be bound to a
// render class.
type Model struct {
	Mesh *csm.Mesh
	// Normals holds one unit normal (3 components) per mesh vertex.
	Normals *csm.VertexBuffer
	// UVs holds texture coordinates (2 components) per mesh vertex. Nil when
	// the source carries none.
	UVs    *csm.VertexBuffer
	Bounds ms3.Box
	// Dropped counts input triangles discarded for being degenerate.
	Dropped int
}

// Vertex buffer slots used by Model.RenderClass.
const (
	NormalSlot = 0
	UVSlot     = 1
)

// RenderClass creates a render class for the model with its normals bound to
// NormalSlot and its texture coordinates, if any, bound to UVSlot.
func (m *Model) RenderClass(name string, material *csm.Material) (*csm.RenderClass, error) {
	rc, err := csm.NewRenderClass(name, m.Mesh, material)
	if err != nil {
		return nil, err
	}
	if err = rc.SetVertexBuffer(NormalSlot, m.Normals); err != nil {
		return nil, err
	}
	if m.UVs != nil {
		if err = rc.SetVertexBuffer(UVSlot, m.UVs); err != nil {
			return nil, err
		}
	}
	return rc, nil
}

// Weld merges shared vertices of a triangle soup into an indexed mesh and
// computes angle weighted vertex normals. Triangles that collapse when
// welded are dropped.
func Weld(model []Triangle, cfg WeldConfig) (*Model, error) {
	if len(model) == 0 {
		return nil, errors.New("no triangles to weld")
	}
	tol, err := weldTolerance(model, cfg.Tolerance)
	if err != nil {
		return nil, err
	}
	var (
		verts  []r3.Vec
		corner []int // welded vertex index of every triangle corner.
	)
	switch cfg.Method {
	case WeldGrid:
		verts, corner, err = weldGrid(model, tol)
	case WeldNearest:
		verts, corner = weldNearest(model, tol)
	default:
		err = fmt.Errorf("unknown weld method %v", cfg.Method)
	}
	if err != nil {
		return nil, err
	}

	normals := make([]r3.Vec, len(verts))
	remap := make([]int, len(verts))
	for i := range remap {
		remap[i] = -1
	}
	var (
		positions []ms3.Vec
		indices   = make([]uint32, 0, 3*len(model))
		dropped   int
	)
	for i, tri := range model {
		c := [3]int{corner[3*i], corner[3*i+1], corner[3*i+2]}
		norm := tri.Normal()
		if c[0] == c[1] || c[1] == c[2] || c[2] == c[0] || norm == (r3.Vec{}) {
			dropped++
			continue
		}
		for j, vert := range tri.V {
			// Weight by the opening angle of the triangle at this corner.
			s1, s2 := r3.Sub(vert, tri.V[(j+1)%3]), r3.Sub(vert, tri.V[(j+2)%3])
			alpha := math.Acos(math.Max(-1, math.Min(1, r3.Cos(s1, s2))))
			if !math.IsNaN(alpha) {
				normals[c[j]] = r3.Add(normals[c[j]], r3.Scale(alpha, norm))
			}
			if remap[c[j]] < 0 {
				remap[c[j]] = len(positions)
				positions = append(positions, toMS3(verts[c[j]]))
			}
			indices = append(indices, uint32(remap[c[j]]))
		}
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("all %d triangles degenerate at weld tolerance %g", len(model), tol)
	}
	ndata := make([]float32, 3*len(positions))
	for old, idx := range remap {
		if idx < 0 {
			continue
		}
		n := normals[old]
		if r3.Norm2(n) > 0 {
			n = r3.Unit(n)
		}
		ndata[3*idx] = float32(n.X)
		ndata[3*idx+1] = float32(n.Y)
		ndata[3*idx+2] = float32(n.Z)
	}
	if dropped > 0 {
		csm.Logger().Debug("weld dropped degenerate triangles", "dropped", dropped, "tolerance", tol)
	}
	return newModel(positions, indices, ndata, nil, dropped)
}

// Flat builds a model where every triangle owns its three vertices and
// carries its face normal. Degenerate triangles are dropped.
func Flat(model []Triangle) (*Model, error) {
	var (
		positions = make([]ms3.Vec, 0, 3*len(model))
		indices   = make([]uint32, 0, 3*len(model))
		normals   = make([]float32, 0, 9*len(model))
		dropped   int
	)
	for _, tri := range model {
		n := tri.Normal()
		if n == (r3.Vec{}) {
			dropped++
			continue
		}
		for _, v := range tri.V {
			indices = append(indices, uint32(len(positions)))
			positions = append(positions, toMS3(v))
			normals = append(normals, float32(n.X), float32(n.Y), float32(n.Z))
		}
	}
	if len(indices) == 0 {
		return nil, errors.New("no non-degenerate triangles")
	}
	return newModel(positions, indices, normals, nil, dropped)
}

func newModel(positions []ms3.Vec, indices []uint32, normals, uvs []float32, dropped int) (*Model, error) {
	mesh, err := csm.NewMesh(positions, indices)
	if err != nil {
		return nil, err
	}
	m := &Model{Mesh: mesh, Bounds: mesh.Bounds(), Dropped: dropped}
	m.Normals, err = csm.NewVertexBuffer("normal", 3, normals)
	if err != nil {
		return nil, err
	}
	if uvs != nil {
		m.UVs, err = csm.NewVertexBuffer("uv", 2, uvs)
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

// weldTolerance validates tol or infers it from the shortest non zero edge.
func weldTolerance(model []Triangle, tol float64) (float64, error) {
	if tol < 0 || math.IsNaN(tol) {
		return 0, fmt.Errorf("invalid weld tolerance %g", tol)
	}
	minDist2 := math.MaxFloat64
	maxDist2 := 0.0
	for i := range model {
		for j, vert := range model[i].V {
			side2 := r3.Norm2(r3.Sub(model[i].V[(j+1)%3], vert))
			if side2 > 0 {
				minDist2 = math.Min(minDist2, side2)
			}
			maxDist2 = math.Max(maxDist2, side2)
		}
	}
	if maxDist2 == 0 {
		return 0, errors.New("model has no non-degenerate edges")
	}
	suggested := math.Sqrt(minDist2) / 256
	if tol > math.Sqrt(maxDist2)/2 {
		return 0, fmt.Errorf("vertex tolerance is too large to generate appropiate mesh, suggested tolerance: %g", suggested)
	}
	if tol == 0 {
		tol = suggested
	}
	return tol, nil
}

// weldGrid merges vertices that round to the same cell of a grid with
// spacing tol.
func weldGrid(model []Triangle, tol float64) (verts []r3.Vec, corner []int, err error) {
	bb := d3.Box(Bounds(model))
	extent := d3.MaxElem(d3.AbsElem(bb.Min), d3.AbsElem(bb.Max))
	if d3.Max(extent)/tol > math.MaxInt64/2 {
		return nil, nil, errors.New("tolerance too small. overflowed int64")
	}
	// vertex index cache
	cache := make(map[[3]int64]int)
	corner = make([]int, 0, 3*len(model))
	ri := 1 / tol
	for _, tri := range model {
		for _, vert := range tri.V {
			// Scale vert to be integer in resolution-space.
			v := r3.Scale(ri, vert)
			vi := [3]int64{int64(math.Round(v.X)), int64(math.Round(v.Y)), int64(math.Round(v.Z))}
			vertexIdx, ok := cache[vi]
			if !ok {
				vertexIdx = len(verts)
				cache[vi] = vertexIdx
				verts = append(verts, vert)
			}
			corner = append(corner, vertexIdx)
		}
	}
	return verts, corner, nil
}

func toMS3(v r3.Vec) ms3.Vec {
	return ms3.Vec{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}
