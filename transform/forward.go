package transform

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gowannier/lattice"
	"github.com/notargets/gowannier/rspace"
	"github.com/notargets/gowannier/utils"
)

// Forward transforms Ok, one block per grid k-point in grid order, onto the
// R-vectors of dom. Each matrix element is transformed with a 3-D FFT over
// the grid and read back at R mod (nx,ny,nz).
func Forward(grid lattice.KPointGrid, Ok []*mat.CDense, dom rspace.Degenerate, cfg utils.Config) (op ROperator, err error) {
	var (
		nw   int
		dims = grid.Dims
		N    = grid.Len()
	)
	if nw, err = checkForward(grid, Ok, dom); err != nil {
		return
	}
	var (
		rvecs = dom.Rvectors()
		degen = dom.Degeneracies()
		nodes = make([]int, len(rvecs)) // flat grid node of R mod dims
		ne    = nw * nw
		// element e of R-vector iR lands in out[iR*ne+e]
		out = make([]complex128, len(rvecs)*ne)
	)
	for iR, R := range rvecs {
		nodes[iR] = flat(dims,
			utils.Mod(R[0], dims[0]), utils.Mod(R[1], dims[1]), utils.Mod(R[2], dims[2]))
	}
	err = utils.ParallelFor(cfg.Workers(ne), ne, func(_, e1, e2 int) error {
		f := newFFT3(dims)
		cube := make([]complex128, N)
		for e := e1; e < e2; e++ {
			m, n := e/nw, e%nw
			for ik := 0; ik < N; ik++ {
				g := grid.GridIndex(ik)
				cube[flat(dims, g[0], g[1], g[2])] = element(Ok[ik], m, n)
			}
			f.coefficients(cube)
			for iR := range rvecs {
				out[iR*ne+e] = cube[nodes[iR]] / complex(float64(degen[iR]), 0)
			}
		}
		return nil
	})
	if err != nil {
		return
	}
	op = ROperator{
		Domain: dom,
		Blocks: make([]*mat.CDense, len(rvecs)),
		Norm:   1 / float64(N),
	}
	for iR := range rvecs {
		op.Blocks[iR] = mat.NewCDense(nw, nw, out[iR*ne:(iR+1)*ne])
	}
	cfg.Log().Debug("forward transform", "kpoints", N, "rvectors", len(rvecs), "size", nw)
	return
}

// ForwardSum evaluates the forward sum directly over the k-points of grid.
// It is slower than Forward and serves as its reference.
func ForwardSum(grid lattice.KPointGrid, Ok []*mat.CDense, dom rspace.Degenerate, cfg utils.Config) (op ROperator, err error) {
	var (
		nw int
		N  = grid.Len()
	)
	if nw, err = checkForward(grid, Ok, dom); err != nil {
		return
	}
	var (
		rvecs = dom.Rvectors()
		degen = dom.Degeneracies()
	)
	op = ROperator{
		Domain: dom,
		Blocks: make([]*mat.CDense, len(rvecs)),
		Norm:   1 / float64(N),
	}
	err = utils.ParallelFor(cfg.Workers(len(rvecs)), len(rvecs), func(_, k1, k2 int) error {
		for iR := k1; iR < k2; iR++ {
			var (
				R    = rvecs[iR].Float()
				data = make([]complex128, nw*nw)
			)
			for ik, k := range grid.Kpoints {
				s, c := math.Sincos(-2 * math.Pi * lattice.Dot(k, R))
				ph := complex(c, s)
				for m := 0; m < nw; m++ {
					for n := 0; n < nw; n++ {
						data[m*nw+n] += ph * element(Ok[ik], m, n)
					}
				}
			}
			w := complex(1/float64(degen[iR]), 0)
			for i := range data {
				data[i] *= w
			}
			op.Blocks[iR] = mat.NewCDense(nw, nw, data)
		}
		return nil
	})
	return
}

func checkForward(grid lattice.KPointGrid, Ok []*mat.CDense, dom rspace.Degenerate) (nw int, err error) {
	if dom == nil {
		err = ErrNoDegeneracy
		return
	}
	if grid.Len() == 0 {
		err = fmt.Errorf("%w: empty k-point grid", ErrDimension)
		return
	}
	if lattice.Norm(grid.Kpoints[0]) > utils.GridTol {
		err = fmt.Errorf("%w: have %v", lattice.ErrGridOrigin, grid.Kpoints[0])
		return
	}
	if len(Ok) != grid.Len() {
		err = fmt.Errorf("%w: %d k-points, %d blocks", ErrDimension, grid.Len(), len(Ok))
		return
	}
	if d, ok := dom.(interface{ Dims() [3]int }); ok && d.Dims() != grid.Dims {
		err = fmt.Errorf("%w: domain built for grid %v, operator on %v", ErrDimension, d.Dims(), grid.Dims)
		return
	}
	if nw, err = blockSize(Ok); err != nil {
		return
	}
	if t, ok := dom.(rspace.Translated); ok && t.NumOrbitals() != nw {
		err = fmt.Errorf("%w: domain has %d orbitals, operator is %dx%d", ErrDimension, t.NumOrbitals(), nw, nw)
	}
	return
}

// DegenerateOf returns dom as a Degenerate domain, failing for bare domains.
func DegenerateOf(dom rspace.Domain) (d rspace.Degenerate, err error) {
	var ok bool
	if d, ok = dom.(rspace.Degenerate); !ok {
		err = fmt.Errorf("%w: %T", ErrNoDegeneracy, dom)
	}
	return
}

func flat(dims [3]int, i, j, l int) int { return (i*dims[1]+j)*dims[2] + l }

// fft3 holds one plan per axis plus scratch, it is not safe for concurrent
// use.
type fft3 struct {
	dims  [3]int
	plans [3]*fourier.CmplxFFT
	line  []complex128
	coef  []complex128
}

func newFFT3(dims [3]int) (f *fft3) {
	f = &fft3{dims: dims}
	nmax := 1
	for d := 0; d < 3; d++ {
		if dims[d] > 1 {
			f.plans[d] = fourier.NewCmplxFFT(dims[d])
		}
		nmax = max(nmax, dims[d])
	}
	f.line = make([]complex128, nmax)
	f.coef = make([]complex128, nmax)
	return
}

// coefficients replaces cube by its unnormalised forward DFT,
// X(q) = sum_p x(p) exp(-2 pi i p.q/n).
func (f *fft3) coefficients(cube []complex128) {
	var (
		nx, ny, nz = f.dims[0], f.dims[1], f.dims[2]
		strides    = [3]int{ny * nz, nz, 1}
	)
	for d := 0; d < 3; d++ {
		if f.plans[d] == nil {
			continue
		}
		var (
			n      = f.dims[d]
			stride = strides[d]
		)
		for base := 0; base < nx*ny*nz; base++ {
			// visit each line once, from its first element
			if (base/stride)%n != 0 {
				continue
			}
			line := f.line[:n]
			for i := 0; i < n; i++ {
				line[i] = cube[base+i*stride]
			}
			coef := f.plans[d].Coefficients(f.coef[:n], line)
			for i := 0; i < n; i++ {
				cube[base+i*stride] = coef[i]
			}
		}
	}
}
