package lattice

import (
	"fmt"
	"math"

	"github.com/notargets/gowannier/utils"
)

// KPointGrid is a uniform, unshifted Monkhorst-Pack grid given as an explicit
// list of fractional k-points with the origin first.
type KPointGrid struct {
	Dims    [3]int
	Kpoints [][3]float64
	nodes   []Vec3i
}

// NewUniformGrid generates the nx*ny*nz grid in Wannier90 order, last axis
// fastest.
func NewUniformGrid(nx, ny, nz int) (g KPointGrid, err error) {
	dims := [3]int{nx, ny, nz}
	if nx < 1 || ny < 1 || nz < 1 {
		err = fmt.Errorf("%w: grid dimensions must be positive, have %v", utils.ErrConfig, dims)
		return
	}
	kpts := make([][3]float64, 0, nx*ny*nz)
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for l := 0; l < nz; l++ {
				kpts = append(kpts, [3]float64{
					float64(i) / float64(nx),
					float64(j) / float64(ny),
					float64(l) / float64(nz),
				})
			}
		}
	}
	return NewKPointGrid(dims, kpts)
}

// NewKPointGrid validates a caller supplied k-point list against dims.
func NewKPointGrid(dims [3]int, kpts [][3]float64) (g KPointGrid, err error) {
	var (
		N = dims[0] * dims[1] * dims[2]
	)
	if dims[0] < 1 || dims[1] < 1 || dims[2] < 1 {
		err = fmt.Errorf("%w: grid dimensions must be positive, have %v", utils.ErrConfig, dims)
		return
	}
	if len(kpts) != N {
		err = fmt.Errorf("%w: dims %v need %d points, have %d", ErrGridSize, dims, N, len(kpts))
		return
	}
	if Norm(kpts[0]) > utils.GridTol {
		err = fmt.Errorf("%w: have %v", ErrGridOrigin, kpts[0])
		return
	}
	nodes := make([]Vec3i, N)
	seen := make(map[Vec3i]int, N)
	for ik, k := range kpts {
		var node Vec3i
		for d := 0; d < 3; d++ {
			x := k[d] * float64(dims[d])
			r := math.Round(x)
			if math.Abs(x-r) > utils.GridTol {
				err = fmt.Errorf("%w: point %d = %v", ErrOffGrid, ik, k)
				return
			}
			node[d] = utils.Mod(int(r), dims[d])
		}
		if prev, dup := seen[node]; dup {
			err = fmt.Errorf("%w: points %d and %d map to node %v", ErrOffGrid, prev, ik, node)
			return
		}
		seen[node] = ik
		nodes[ik] = node
	}
	g = KPointGrid{
		Dims:    dims,
		Kpoints: kpts,
		nodes:   nodes,
	}
	return
}

func (g KPointGrid) Len() int { return len(g.Kpoints) }

// GridIndex returns the integer grid node of k-point ik, each component in
// [0, n).
func (g KPointGrid) GridIndex(ik int) Vec3i { return g.nodes[ik] }
