package meshio

import (
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	_ kdtree.Interface  = weldPoints{}
	_ kdtree.Comparable = (*weldPoint)(nil)
)

// weldNearest merges vertices using radius queries on a k-d tree of every
// triangle corner. Corners are visited in input order and each unassigned
// corner claims all unassigned corners within tol.
func weldNearest(model []Triangle, tol float64) (verts []r3.Vec, corner []int) {
	pts := make(weldPoints, 0, 3*len(model))
	for _, tri := range model {
		for _, v := range tri.V {
			pts = append(pts, weldPoint{p: v, corner: len(pts)})
		}
	}
	corner = make([]int, len(pts))
	for i := range corner {
		corner[i] = -1
	}
	// kdtree.New reorders its input.
	tree := kdtree.New(append(weldPoints(nil), pts...), false)
	for i := range pts {
		if corner[i] >= 0 {
			continue
		}
		id := len(verts)
		verts = append(verts, pts[i].p)
		corner[i] = id
		keep := kdtree.NewDistKeeper(tol * tol)
		tree.NearestSet(keep, &pts[i])
		for _, c := range keep.Heap {
			if c.Comparable == nil {
				continue
			}
			wp := c.Comparable.(*weldPoint)
			if corner[wp.corner] < 0 {
				corner[wp.corner] = id
			}
		}
	}
	return verts, corner
}

// weldPoint is a triangle corner stored in the weld tree.
type weldPoint struct {
	p      r3.Vec
	corner int // index of the corner in input order.
}

func (w *weldPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(*weldPoint)
	switch d {
	case 0:
		return w.p.X - q.p.X
	case 1:
		return w.p.Y - q.p.Y
	case 2:
		return w.p.Z - q.p.Z
	}
	panic("unreachable")
}

func (w *weldPoint) Dims() int { return 3 }

// Distance returns the squared euclidean distance.
func (w *weldPoint) Distance(c kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(w.p, c.(*weldPoint).p))
}

type weldPoints []weldPoint

func (wp weldPoints) Index(i int) kdtree.Comparable { return &wp[i] }

func (wp weldPoints) Len() int { return len(wp) }

func (wp weldPoints) Pivot(d kdtree.Dim) int {
	p := weldPlane{dim: d, points: wp}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

func (wp weldPoints) Slice(start, end int) kdtree.Interface { return wp[start:end] }

type weldPlane struct {
	dim    kdtree.Dim
	points weldPoints
}

func (p weldPlane) Less(i, j int) bool {
	return p.points[i].Compare(&p.points[j], p.dim) < 0
}

func (p weldPlane) Swap(i, j int) {
	p.points[i], p.points[j] = p.points[j], p.points[i]
}

func (p weldPlane) Len() int { return len(p.points) }

func (p weldPlane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}
