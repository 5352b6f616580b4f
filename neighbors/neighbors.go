// Package neighbors answers k-nearest-neighbour queries over a fixed set of
// Cartesian points. Indexes are built once and are safe for concurrent
// queries afterwards.
package neighbors

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

type Neighbor struct {
	ID   int // position of the point in the slice the index was built from
	Dist float64
}

type Index interface {
	// Nearest returns up to k neighbours of q sorted by ascending distance,
	// equal distances ordered by ID.
	Nearest(q [3]float64, k int) []Neighbor
	Len() int
}

type KDTree struct {
	tree *kdtree.Tree
	n    int
}

func NewKDTree(pts [][3]float64) (t *KDTree) {
	ps := make(points, len(pts))
	for i, p := range pts {
		ps[i] = point{x: p, id: i}
	}
	t = &KDTree{n: len(pts)}
	if len(pts) != 0 {
		t.tree = kdtree.New(ps, false)
	}
	return
}

func (t *KDTree) Len() int { return t.n }

func (t *KDTree) Nearest(q [3]float64, k int) (nb []Neighbor) {
	if k > t.n {
		k = t.n
	}
	if k < 1 {
		return
	}
	keep := kdtree.NewNKeeper(k)
	t.tree.NearestSet(keep, point{x: q, id: -1})
	nb = make([]Neighbor, 0, k)
	for _, c := range keep.Heap {
		if c.Comparable == nil { // sentinel
			continue
		}
		nb = append(nb, Neighbor{ID: c.Comparable.(point).id, Dist: math.Sqrt(c.Dist)})
	}
	sortNeighbors(nb)
	return
}

// BruteForce scans every point; it exists to cross check the tree.
type BruteForce struct {
	pts [][3]float64
}

func NewBruteForce(pts [][3]float64) *BruteForce { return &BruteForce{pts: pts} }

func (b *BruteForce) Len() int { return len(b.pts) }

func (b *BruteForce) Nearest(q [3]float64, k int) (nb []Neighbor) {
	nb = make([]Neighbor, len(b.pts))
	for i, p := range b.pts {
		nb[i] = Neighbor{ID: i, Dist: math.Sqrt(point{x: p}.Distance(point{x: q}))}
	}
	sortNeighbors(nb)
	if k < len(nb) {
		nb = nb[:k]
	}
	return
}

func sortNeighbors(nb []Neighbor) {
	sort.Slice(nb, func(i, j int) bool {
		if nb[i].Dist != nb[j].Dist {
			return nb[i].Dist < nb[j].Dist
		}
		return nb[i].ID < nb[j].ID
	})
}

type point struct {
	x  [3]float64
	id int
}

func (p point) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return p.x[d] - c.(point).x[d]
}

func (p point) Dims() int { return 3 }

// Distance is the squared Euclidean distance, as the tree pruning expects.
func (p point) Distance(c kdtree.Comparable) float64 {
	q := c.(point).x
	return r3.Norm2(r3.Sub(r3.Vec{X: p.x[0], Y: p.x[1], Z: p.x[2]}, r3.Vec{X: q[0], Y: q[1], Z: q[2]}))
}

type points []point

func (p points) Index(i int) kdtree.Comparable         { return p[i] }
func (p points) Len() int                              { return len(p) }
func (p points) Pivot(d kdtree.Dim) int                { return plane{points: p, Dim: d}.Pivot() }
func (p points) Slice(start, end int) kdtree.Interface { return p[start:end] }

type plane struct {
	points
	kdtree.Dim
}

func (p plane) Less(i, j int) bool { return p.points[i].x[p.Dim] < p.points[j].x[p.Dim] }
func (p plane) Swap(i, j int)      { p.points[i], p.points[j] = p.points[j], p.points[i] }
func (p plane) Pivot() int         { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	return plane{points: p.points[start:end], Dim: p.Dim}
}
