package meshio

import (
	"errors"

	"github.com/fogleman/fauxgl"
	"github.com/soypat/glgl/math/ms3"
	"gonum.org/v1/gonum/spatial/r3"
)

// LoadConfig configures Load.
type LoadConfig struct {
	// Normalize fits the model inside the bi-unit cube centered at the origin.
	Normalize bool
	// Weld merges shared vertices and computes smooth normals when set.
	// Otherwise every triangle keeps its own three vertices along with the
	// normals and texture coordinates stored in the file.
	Weld *WeldConfig
}

// Load reads a mesh file. The format is chosen by file extension and may be
// any of .stl, .obj, .ply or .3ds.
func Load(path string, cfg LoadConfig) (*Model, error) {
	mesh, err := fauxgl.LoadMesh(path)
	if err != nil {
		return nil, err
	}
	if len(mesh.Triangles) == 0 {
		return nil, errors.New("mesh file contains no triangles")
	}
	if cfg.Normalize {
		mesh.BiUnitCube()
	}
	if cfg.Weld != nil {
		model := make([]Triangle, len(mesh.Triangles))
		for i, t := range mesh.Triangles {
			model[i] = Triangle{V: [3]r3.Vec{
				fromFaux(t.V1.Position), fromFaux(t.V2.Position), fromFaux(t.V3.Position),
			}}
		}
		return Weld(model, *cfg.Weld)
	}
	return flatModel(mesh)
}

// flatModel keeps three vertices per triangle.
func flatModel(mesh *fauxgl.Mesh) (*Model, error) {
	var (
		positions []ms3.Vec
		indices   []uint32
		normals   []float32
		uvs       []float32
		textured  bool
		dropped   int
	)
	for _, t := range mesh.Triangles {
		if t.V1.Texture != (fauxgl.Vector{}) || t.V2.Texture != (fauxgl.Vector{}) || t.V3.Texture != (fauxgl.Vector{}) {
			textured = true
			break
		}
	}
	for _, t := range mesh.Triangles {
		verts := [3]fauxgl.Vertex{t.V1, t.V2, t.V3}
		tri := Triangle{V: [3]r3.Vec{fromFaux(t.V1.Position), fromFaux(t.V2.Position), fromFaux(t.V3.Position)}}
		face := tri.Normal()
		if face == (r3.Vec{}) {
			dropped++
			continue
		}
		for _, v := range verts {
			n := fromFaux(v.Normal)
			if r3.Norm2(n) == 0 {
				n = face
			} else {
				n = r3.Unit(n)
			}
			indices = append(indices, uint32(len(positions)))
			positions = append(positions, toMS3(fromFaux(v.Position)))
			normals = append(normals, float32(n.X), float32(n.Y), float32(n.Z))
			if textured {
				uvs = append(uvs, float32(v.Texture.X), float32(v.Texture.Y))
			}
		}
	}
	if len(indices) == 0 {
		return nil, errors.New("all mesh triangles are degenerate")
	}
	return newModel(positions, indices, normals, uvs, dropped)
}

func fromFaux(v fauxgl.Vector) r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}
