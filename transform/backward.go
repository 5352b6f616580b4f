package transform

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gowannier/lattice"
	"github.com/notargets/gowannier/rspace"
	"github.com/notargets/gowannier/utils"
)

// imager is implemented by domains that can hand out their translation
// lists without copying.
type imager interface {
	Images(iR, m, n int) []lattice.Vec3i
}

// Backward evaluates op at arbitrary fractional k-points. The exponentials
// factor per axis, exp(2 pi i k.R) = px(R_x) py(R_y) pz(R_z), so each k-point
// costs one table of sines and cosines per axis plus the sum itself.
func Backward(op ROperator, kpts [][3]float64, cfg utils.Config) (out KOperator, err error) {
	if op.Domain == nil || op.Domain.Len() != len(op.Blocks) {
		err = fmt.Errorf("%w: operator blocks do not match its domain", ErrDimension)
		return
	}
	var nw int
	if nw, err = blockSize(op.Blocks); err != nil {
		return
	}
	var (
		rvecs   = op.Domain.Rvectors()
		tr, isT = op.Domain.(rspace.Translated)
		lo, hi  lattice.Vec3i
	)
	if isT && tr.NumOrbitals() != nw {
		err = fmt.Errorf("%w: domain has %d orbitals, operator is %dx%d", ErrDimension, tr.NumOrbitals(), nw, nw)
		return
	}
	images := func(iR, m, n int) []lattice.Vec3i {
		if im, ok := op.Domain.(imager); ok {
			return im.Images(iR, m, n)
		}
		return tr.Translations(iR, m, n)
	}
	grow := func(v lattice.Vec3i) {
		for d := 0; d < 3; d++ {
			lo[d], hi[d] = min(lo[d], v[d]), max(hi[d], v[d])
		}
	}
	for iR, R := range rvecs {
		grow(R)
		if isT {
			for e := 0; e < nw*nw; e++ {
				for _, T := range images(iR, e/nw, e%nw) {
					grow(R.Add(T))
				}
			}
		}
	}
	out = KOperator{
		Kpoints: kpts,
		Blocks:  make([]*mat.CDense, len(kpts)),
	}
	if len(kpts) == 0 {
		return
	}
	norm := complex(op.Norm, 0)
	err = utils.ParallelFor(cfg.Workers(len(kpts)), len(kpts), func(_, k1, k2 int) error {
		var (
			ph = newPhaseTable(lo, hi)
		)
		for ik := k1; ik < k2; ik++ {
			ph.set(kpts[ik])
			data := make([]complex128, nw*nw)
			for iR, R := range rvecs {
				b := op.Blocks[iR]
				if !isT {
					p := ph.at(R)
					for m := 0; m < nw; m++ {
						for n := 0; n < nw; n++ {
							data[m*nw+n] += p * element(b, m, n)
						}
					}
					continue
				}
				for m := 0; m < nw; m++ {
					for n := 0; n < nw; n++ {
						var (
							T = images(iR, m, n)
							p complex128
						)
						for _, t := range T {
							p += ph.at(R.Add(t))
						}
						p /= complex(float64(len(T)), 0)
						data[m*nw+n] += p * element(b, m, n)
					}
				}
			}
			for i := range data {
				data[i] *= norm
			}
			out.Blocks[ik] = mat.NewCDense(nw, nw, data)
		}
		return nil
	})
	if err != nil {
		out = KOperator{}
		return
	}
	cfg.Log().Debug("backward transform", "kpoints", len(kpts), "rvectors", len(rvecs), "size", nw)
	return
}

// phaseTable holds exp(2 pi i k_d x) for integer x in [lo_d, hi_d].
type phaseTable struct {
	lo  lattice.Vec3i
	tab [3][]complex128
}

func newPhaseTable(lo, hi lattice.Vec3i) (pt *phaseTable) {
	pt = &phaseTable{lo: lo}
	for d := 0; d < 3; d++ {
		pt.tab[d] = make([]complex128, hi[d]-lo[d]+1)
	}
	return
}

func (pt *phaseTable) set(k [3]float64) {
	for d := 0; d < 3; d++ {
		for i := range pt.tab[d] {
			s, c := math.Sincos(2 * math.Pi * k[d] * float64(pt.lo[d]+i))
			pt.tab[d][i] = complex(c, s)
		}
	}
}

func (pt *phaseTable) at(R lattice.Vec3i) complex128 {
	return pt.tab[0][R[0]-pt.lo[0]] * pt.tab[1][R[1]-pt.lo[1]] * pt.tab[2][R[2]-pt.lo[2]]
}
