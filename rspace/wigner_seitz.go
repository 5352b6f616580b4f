package rspace

import (
	"fmt"
	"math"

	"github.com/notargets/gowannier/lattice"
	"github.com/notargets/gowannier/neighbors"
	"github.com/notargets/gowannier/utils"
)

// WeightTol bounds the deviation of the summed weights 1/deg from the number
// of grid points that a complete domain may show.
const WeightTol = 1.e-8

// WignerSeitz is the set of R-vectors inside the Wigner-Seitz cell of the
// supercell spanned by the k-grid, with the number of supercell images each
// one is equidistant to.
type WignerSeitz struct {
	lat   lattice.Lattice
	dims  [3]int
	rvecs []lattice.Vec3i
	degen []int
}

func NewWignerSeitz(lat lattice.Lattice, dims [3]int, cfg utils.Config) (ws *WignerSeitz, err error) {
	if err = cfg.Validate(); err != nil {
		return
	}
	if dims[0] < 1 || dims[1] < 1 || dims[2] < 1 {
		err = fmt.Errorf("%w: grid dimensions must be positive, have %v", utils.ErrConfig, dims)
		return
	}
	var (
		ext = lattice.MakeSupercell(lattice.HomeCell(dims),
			utils.NewSymRange(cfg.MaxCell, dims[0]),
			utils.NewSymRange(cfg.MaxCell, dims[1]),
			utils.NewSymRange(cfg.MaxCell, dims[2]))
		// Candidates on the window edge need the images one period out
		T = lattice.MakeSupercell([][3]float64{{}},
			utils.NewSymRange(cfg.MaxCell+1, dims[0]),
			utils.NewSymRange(cfg.MaxCell+1, dims[1]),
			utils.NewSymRange(cfg.MaxCell+1, dims[2])).Translations
	)
	ext.Sort()
	var (
		idx     = neighbors.NewKDTree(cartesian(lat, T))
		R       = ext.IntPoints()
		inside  = make([]bool, len(R))
		degen   = make([]int, len(R))
		workers = cfg.Workers(len(R))
	)
	err = utils.ParallelFor(workers, len(R), func(_, k1, k2 int) (err error) {
		for i := k1; i < k2; i++ {
			var (
				r  = lat.CartesianInt(R[i])
				nb = idx.Nearest(r, cfg.SearchCap+1)
			)
			// The origin translation is at distance |r|
			if lattice.Norm(r)-nb[0].Dist >= cfg.Atol {
				continue
			}
			n := countTies(nb, cfg.Atol)
			if n > cfg.SearchCap {
				return &DegeneracyOverflowError{R: R[i], M: -1, N: -1, Count: n, Cap: cfg.SearchCap}
			}
			inside[i], degen[i] = true, n
		}
		return
	})
	if err != nil {
		return
	}
	var (
		N   = dims[0] * dims[1] * dims[2]
		sum float64
	)
	ws = &WignerSeitz{lat: lat, dims: dims}
	for i, in := range inside {
		if in {
			ws.rvecs = append(ws.rvecs, R[i])
			ws.degen = append(ws.degen, degen[i])
			sum += 1 / float64(degen[i])
		}
	}
	if math.Abs(sum-float64(N)) > WeightTol {
		ws = nil
		err = fmt.Errorf("%w: wigner-seitz weights sum to %g instead of %d, raise max cell above %d",
			utils.ErrConfig, sum, N, cfg.MaxCell)
		return
	}
	cfg.Log().Debug("wigner-seitz domain built",
		"dims", dims, "candidates", len(R), "rvectors", len(ws.rvecs))
	return
}

// countTies counts the neighbours within atol of the nearest one.
func countTies(nb []neighbors.Neighbor, atol float64) (n int) {
	for _, b := range nb {
		if b.Dist-nb[0].Dist < atol {
			n++
		}
	}
	return
}

func cartesian(lat lattice.Lattice, T []lattice.Vec3i) (pts [][3]float64) {
	pts = make([][3]float64, len(T))
	for i, t := range T {
		pts[i] = lat.CartesianInt(t)
	}
	return
}

func (ws *WignerSeitz) Lattice() lattice.Lattice       { return ws.lat }
func (ws *WignerSeitz) Dims() [3]int                   { return ws.dims }
func (ws *WignerSeitz) Len() int                       { return len(ws.rvecs) }
func (ws *WignerSeitz) Rvectors() []lattice.Vec3i      { return copyVecs(ws.rvecs) }
func (ws *WignerSeitz) Rvector(iR int) lattice.Vec3i   { return ws.rvecs[iR] }
func (ws *WignerSeitz) Degeneracy(iR int) int          { return ws.degen[iR] }
func (ws *WignerSeitz) Degeneracies() (d []int) {
	d = make([]int, len(ws.degen))
	copy(d, ws.degen)
	return
}
