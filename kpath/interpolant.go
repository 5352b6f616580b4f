package kpath

import (
	"sort"

	"github.com/notargets/gowannier/lattice"
)

// Line is one connected piece of an interpolated path. Labels maps
// positions in Kpoints to the high-symmetry label found there.
type Line struct {
	Kpoints [][3]float64
	Labels  map[int]string
}

// Label is a named position in the flattened k-point list.
type Label struct {
	Index int
	Name  string
}

type Interpolant struct {
	Lines   []Line
	Basis   lattice.Lattice
	Setting CoordSystem
}

func (ip *Interpolant) Len() (n int) {
	for _, l := range ip.Lines {
		n += len(l.Kpoints)
	}
	return
}

// Kpoints concatenates all lines.
func (ip *Interpolant) Kpoints() (k [][3]float64) {
	k = make([][3]float64, 0, ip.Len())
	for _, l := range ip.Lines {
		k = append(k, l.Kpoints...)
	}
	return
}

// Cartesian returns the flattened k-points in Cartesian coordinates.
func (ip *Interpolant) Cartesian() (k [][3]float64) {
	k = ip.Kpoints()
	if ip.Setting == Fractional {
		for i := range k {
			k[i] = ip.Basis.Cartesian(k[i])
		}
	}
	return
}

// Labels lists every label by flattened index. The last label of a line and
// the first label of the next one are different points plotted at the same
// distance.
func (ip *Interpolant) Labels() (labels []Label) {
	var offset int
	for _, l := range ip.Lines {
		pos := make([]int, 0, len(l.Labels))
		for i := range l.Labels {
			pos = append(pos, i)
		}
		sort.Ints(pos)
		for _, i := range pos {
			labels = append(labels, Label{Index: offset + i, Name: l.Labels[i]})
		}
		offset += len(l.Kpoints)
	}
	return
}

// Distances is the cumulative Cartesian path length at every k-point, used
// as the x axis of band plots. It does not advance across a line break.
func (ip *Interpolant) Distances() (x []float64) {
	var (
		k    = ip.Cartesian()
		d    float64
		i    int
		prev [3]float64
	)
	x = make([]float64, len(k))
	for _, l := range ip.Lines {
		for j := range l.Kpoints {
			if j > 0 {
				d += lattice.Dist(k[i], prev)
			}
			x[i] = d
			prev = k[i]
			i++
		}
	}
	return
}
