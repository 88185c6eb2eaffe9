package meshio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func cubeModel(center r3.Vec, size float64) []Triangle {
	return Box(center, r3.Vec{X: size, Y: size, Z: size})
}

func TestBoxOutward(t *testing.T) {
	center := r3.Vec{X: 1, Y: 2, Z: 3}
	for i, tri := range cubeModel(center, 2) {
		c := r3.Scale(1.0/3, r3.Add(tri.V[0], r3.Add(tri.V[1], tri.V[2])))
		if r3.Dot(tri.Normal(), r3.Sub(c, center)) <= 0 {
			t.Errorf("triangle %d faces inward", i)
		}
	}
}

func TestBoxBounds(t *testing.T) {
	bb := Bounds(Box(r3.Vec{X: 1, Y: -2, Z: 3}, r3.Vec{X: 2, Y: 4, Z: 6}))
	want := r3.Box{Min: r3.Vec{X: 0, Y: -4, Z: 0}, Max: r3.Vec{X: 2, Y: 0, Z: 6}}
	if bb != want {
		t.Errorf("box bounds %+v, want %+v", bb, want)
	}
}

func TestSTLWriteRead(t *testing.T) {
	model := cubeModel(r3.Vec{}, 1)
	var b bytes.Buffer
	if err := WriteSTL(&b, model); err != nil {
		t.Fatal(err)
	}
	if want := stlHeaderSize + stlTriangleSize*len(model); b.Len() != want {
		t.Fatalf("wrote %d bytes, want %d", b.Len(), want)
	}
	got, err := ReadSTL(bytes.NewReader(b.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(model) {
		t.Fatalf("read %d triangles, want %d", len(got), len(model))
	}
	for i := range got {
		if got[i] != model[i] {
			t.Errorf("triangle %d: got %v, want %v", i, got[i], model[i])
		}
	}
}

func TestSTLCreateMatchesWrite(t *testing.T) {
	// More triangles than fit in a single read buffer.
	var model []Triangle
	for i := 0; i < 100; i++ {
		model = append(model, cubeModel(r3.Vec{X: float64(i)}, 0.5)...)
	}
	path := filepath.Join(t.TempDir(), "cubes.stl")
	if err := CreateSTL(path, NewSliceReader(model)); err != nil {
		t.Fatal(err)
	}
	bfile, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	if err := WriteSTL(&b, model); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b.Bytes(), bfile) {
		t.Fatal("WriteSTL and CreateSTL output mismatch")
	}
	loaded, err := LoadSTL(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != len(model) {
		t.Errorf("loaded %d triangles, want %d", len(loaded), len(model))
	}
	if err := CreateSTL(filepath.Join(t.TempDir(), "empty.stl"), NewSliceReader(nil)); err == nil {
		t.Error("expected error creating empty STL")
	}
}

func TestSTLReadErrors(t *testing.T) {
	if _, err := ReadSTL(bytes.NewReader(make([]byte, 10))); err == nil {
		t.Error("expected error on short header")
	}
	if _, err := ReadSTL(bytes.NewReader(make([]byte, stlHeaderSize))); err == nil {
		t.Error("expected error on zero triangle count")
	}
	var b bytes.Buffer
	WriteSTL(&b, cubeModel(r3.Vec{}, 1))
	if _, err := ReadSTL(bytes.NewReader(b.Bytes()[:b.Len()-10])); err == nil {
		t.Error("expected error on truncated file")
	}

	// Flip the stored normal of the first triangle.
	data := append([]byte(nil), b.Bytes()...)
	binary.LittleEndian.PutUint32(data[stlHeaderSize+8:], math.Float32bits(1))
	model, err := ReadSTL(bytes.NewReader(data))
	if !errors.Is(err, ErrNormalMismatch) {
		t.Errorf("got %v, want normal mismatch", err)
	}
	if len(model) != 12 {
		t.Errorf("normal mismatch should still return the model, got %d triangles", len(model))
	}

	// Zero normals are accepted.
	for i := 0; i < 12; i++ {
		copy(data[stlHeaderSize+i*stlTriangleSize:], make([]byte, 12))
	}
	if _, err := ReadSTL(bytes.NewReader(data)); err != nil {
		t.Errorf("zero normals: %v", err)
	}
}

func TestWeldCube(t *testing.T) {
	for _, method := range []WeldMethod{WeldGrid, WeldNearest} {
		m, err := Weld(cubeModel(r3.Vec{}, 1), WeldConfig{Method: method})
		if err != nil {
			t.Fatalf("%v: %v", method, err)
		}
		if m.Mesh.VertexCount() != 8 || m.Mesh.TriangleCount() != 12 || m.Dropped != 0 {
			t.Fatalf("%v: got %d vertices %d triangles %d dropped", method, m.Mesh.VertexCount(), m.Mesh.TriangleCount(), m.Dropped)
		}
		// Every face contributes a right angle at each corner so normals
		// point diagonally out of the cube.
		var n [3]float32
		for i := 0; i < m.Mesh.VertexCount(); i++ {
			m.Normals.Element(i, n[:])
			p := m.Mesh.Position(i)
			want := 1 / math.Sqrt(3)
			for k, pk := range [3]float32{p.X, p.Y, p.Z} {
				if math.Abs(float64(n[k])-math.Copysign(want, float64(pk))) > 1e-5 {
					t.Errorf("%v: vertex %v normal %v", method, p, n)
					break
				}
			}
		}
	}
}

func TestWeldNearestJitter(t *testing.T) {
	model := cubeModel(r3.Vec{}, 1)
	for i := range model {
		for j := range model[i].V {
			k := float64(3*i + j)
			model[i].V[j] = r3.Add(model[i].V[j], r3.Vec{X: 1e-5 * math.Sin(k), Y: 1e-5 * math.Cos(k), Z: -1e-5 * math.Sin(2*k)})
		}
	}
	m, err := Weld(model, WeldConfig{Tolerance: 1e-3, Method: WeldNearest})
	if err != nil {
		t.Fatal(err)
	}
	if m.Mesh.VertexCount() != 8 {
		t.Errorf("got %d vertices, want 8", m.Mesh.VertexCount())
	}
}

func TestWeldDropsCollapsed(t *testing.T) {
	model := cubeModel(r3.Vec{}, 1)
	a := model[0].V[0]
	model = append(model, Triangle{V: [3]r3.Vec{a, r3.Add(a, r3.Vec{X: 1e-5}), r3.Vec{}}})
	m, err := Weld(model, WeldConfig{Tolerance: 1e-3})
	if err != nil {
		t.Fatal(err)
	}
	if m.Dropped != 1 || m.Mesh.TriangleCount() != 12 {
		t.Errorf("dropped %d, triangles %d", m.Dropped, m.Mesh.TriangleCount())
	}
	// The center vertex of the dropped triangle is not referenced.
	if m.Mesh.VertexCount() != 8 {
		t.Errorf("got %d vertices, want 8", m.Mesh.VertexCount())
	}
}

func TestFlat(t *testing.T) {
	model := append(cubeModel(r3.Vec{}, 1), Triangle{})
	m, err := Flat(model)
	if err != nil {
		t.Fatal(err)
	}
	if m.Mesh.VertexCount() != 36 || m.Dropped != 1 {
		t.Fatalf("got %d vertices %d dropped", m.Mesh.VertexCount(), m.Dropped)
	}
	var n [3]float32
	m.Normals.Element(0, n[:])
	if n != [3]float32{0, 0, -1} {
		t.Errorf("first face normal %v, want -z", n)
	}
	if _, err := Flat([]Triangle{{}}); err == nil {
		t.Error("expected error for all degenerate input")
	}
}

func TestWeldConfigErrors(t *testing.T) {
	model := cubeModel(r3.Vec{}, 1)
	for _, cfg := range []WeldConfig{
		{Tolerance: -1},
		{Tolerance: 1},
		{Method: 42},
	} {
		if _, err := Weld(model, cfg); err == nil {
			t.Errorf("%+v: expected error", cfg)
		}
	}
	if _, err := Weld(nil, WeldConfig{}); err == nil {
		t.Error("expected error welding no triangles")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cube.stl")
	if err := CreateSTL(path, NewSliceReader(cubeModel(r3.Vec{X: 5, Y: 5, Z: 5}, 2))); err != nil {
		t.Fatal(err)
	}
	flat, err := Load(path, LoadConfig{Normalize: true})
	if err != nil {
		t.Fatal(err)
	}
	if flat.Mesh.TriangleCount() != 12 || flat.Mesh.VertexCount() != 36 {
		t.Errorf("flat model has %d triangles %d vertices", flat.Mesh.TriangleCount(), flat.Mesh.VertexCount())
	}
	bb := flat.Bounds
	for _, v := range [][2]float32{{bb.Min.X, bb.Max.X}, {bb.Min.Y, bb.Max.Y}, {bb.Min.Z, bb.Max.Z}} {
		if math.Abs(float64(v[0]+1)) > 1e-5 || math.Abs(float64(v[1]-1)) > 1e-5 {
			t.Errorf("normalized bounds %+v", bb)
			break
		}
	}
	if flat.UVs != nil {
		t.Error("STL model should not have texture coordinates")
	}
	var n [3]float32
	for i := 0; i < flat.Normals.Len(); i++ {
		flat.Normals.Element(i, n[:])
		if l := n[0]*n[0] + n[1]*n[1] + n[2]*n[2]; math.Abs(float64(l)-1) > 1e-4 {
			t.Fatalf("normal %d not unit: %v", i, n)
		}
	}

	welded, err := Load(path, LoadConfig{Weld: &WeldConfig{}})
	if err != nil {
		t.Fatal(err)
	}
	if welded.Mesh.VertexCount() != 8 {
		t.Errorf("welded model has %d vertices", welded.Mesh.VertexCount())
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.stl"), LoadConfig{}); err == nil {
		t.Error("expected error loading missing file")
	}
}
