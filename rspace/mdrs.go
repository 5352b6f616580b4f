package rspace

import (
	"fmt"
	"sort"

	"github.com/notargets/gowannier/lattice"
	"github.com/notargets/gowannier/neighbors"
	"github.com/notargets/gowannier/utils"
)

// MDRS refines a Wigner-Seitz domain with minimal-distance replica
// selection: for every R and orbital pair (m,n) it keeps every supercell
// vector T for which orbital n at R+T is closest to orbital m at the origin.
type MDRS struct {
	*WignerSeitz
	centers [][3]float64
	nw      int
	tr      [][][]lattice.Vec3i // [iR][m*nw+n]
}

// NewMDRS builds the translations for orbitals centred at the given
// fractional coordinates. The Wigner-Seitz R-vectors and degeneracies are
// shared, not copied.
func NewMDRS(ws *WignerSeitz, centers [][3]float64, cfg utils.Config) (md *MDRS, err error) {
	if err = cfg.Validate(); err != nil {
		return
	}
	if len(centers) == 0 {
		err = fmt.Errorf("%w: MDRS needs at least one orbital center", utils.ErrConfig)
		return
	}
	var (
		lat  = ws.lat
		dims = ws.dims
		nw   = len(centers)
		// One period wider than the Wigner-Seitz search, centers may sit
		// outside the home cell
		S = lattice.MakeSupercell([][3]float64{{}},
			utils.NewSymRange(cfg.MaxCell+1, dims[0]),
			utils.NewSymRange(cfg.MaxCell+1, dims[1]),
			utils.NewSymRange(cfg.MaxCell+1, dims[2])).Translations
		idx = neighbors.NewKDTree(cartesian(lat, S))
	)
	md = &MDRS{
		WignerSeitz: ws,
		centers:     make([][3]float64, nw),
		nw:          nw,
		tr:          make([][][]lattice.Vec3i, ws.Len()),
	}
	copy(md.centers, centers)
	err = utils.ParallelFor(cfg.Workers(ws.Len()), ws.Len(), func(_, k1, k2 int) (err error) {
		for iR := k1; iR < k2; iR++ {
			var (
				R  = ws.rvecs[iR].Float()
				Tr = make([][]lattice.Vec3i, nw*nw)
			)
			for m := 0; m < nw; m++ {
				for n := 0; n < nw; n++ {
					t0 := lat.Cartesian(lattice.Sub(lattice.Add(centers[n], R), centers[m]))
					// min |t0 + T| is the nearest neighbour of -t0
					nb := idx.Nearest([3]float64{-t0[0], -t0[1], -t0[2]}, cfg.SearchCap+1)
					nt := countTies(nb, cfg.Atol)
					if nt > cfg.SearchCap {
						return &DegeneracyOverflowError{R: ws.rvecs[iR], M: m, N: n, Count: nt, Cap: cfg.SearchCap}
					}
					ts := make([]lattice.Vec3i, nt)
					for i := 0; i < nt; i++ {
						ts[i] = S[nb[i].ID]
					}
					sort.Slice(ts, func(a, b int) bool { return ts[a].Less(ts[b]) })
					Tr[m*nw+n] = ts
				}
			}
			md.tr[iR] = Tr
		}
		return
	})
	if err != nil {
		md = nil
		return
	}
	cfg.Log().Debug("mdrs translations built", "rvectors", ws.Len(), "orbitals", nw)
	return
}

// CentersFromCartesian converts Cartesian orbital centers to fractional.
func CentersFromCartesian(lat lattice.Lattice, cart [][3]float64) (frac [][3]float64) {
	frac = make([][3]float64, len(cart))
	for i, c := range cart {
		frac[i] = lat.Fractional(c)
	}
	return
}

func (md *MDRS) NumOrbitals() int { return md.nw }

func (md *MDRS) Centers() (c [][3]float64) {
	c = make([][3]float64, md.nw)
	copy(c, md.centers)
	return
}

func (md *MDRS) Translations(iR, m, n int) []lattice.Vec3i {
	return copyVecs(md.tr[iR][m*md.nw+n])
}

func (md *MDRS) TDegeneracy(iR, m, n int) int { return len(md.tr[iR][m*md.nw+n]) }

// Images returns the translations without copying, for the transform loops.
func (md *MDRS) Images(iR, m, n int) []lattice.Vec3i { return md.tr[iR][m*md.nw+n] }
