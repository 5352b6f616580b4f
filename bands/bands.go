// Package bands interpolates band energies from Bloch data on a uniform
// grid to arbitrary k-points through the localized orbital Hamiltonian.
package bands

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gowannier/kpath"
	"github.com/notargets/gowannier/lattice"
	"github.com/notargets/gowannier/rspace"
	"github.com/notargets/gowannier/transform"
	"github.com/notargets/gowannier/utils"
)

var (
	ErrDimension = errors.New("bands: dimension mismatch")
	ErrEigen     = errors.New("bands: eigen decomposition failed")
)

// Bands holds ascending energies per k-point. Distances and Labels are set
// when the k-points come from a path.
type Bands struct {
	Kpoints   [][3]float64
	Energies  [][]float64
	Distances []float64
	Labels    []kpath.Label
}

func (b *Bands) NumBands() int {
	if len(b.Energies) == 0 {
		return 0
	}
	return len(b.Energies[0])
}

// Band returns band ib across all k-points.
func (b *Bands) Band(ib int) (e []float64) {
	e = make([]float64, len(b.Energies))
	for ik := range b.Energies {
		e[ik] = b.Energies[ik][ib]
	}
	return
}

func (b *Bands) Range() (lo, hi float64) {
	if b.NumBands() == 0 {
		return
	}
	lo, hi = floats.Min(b.Band(0)), floats.Max(b.Band(b.NumBands()-1))
	return
}

// Write emits one block per band of "x energy" lines separated by blank
// lines, x being the path distance or the k-point index.
func (b *Bands) Write(w io.Writer) (err error) {
	bw := bufio.NewWriter(w)
	for ib := 0; ib < b.NumBands(); ib++ {
		for ik, e := range b.Band(ib) {
			x := float64(ik)
			if b.Distances != nil {
				x = b.Distances[ik]
			}
			fmt.Fprintf(bw, "%16.8f %16.8f\n", x, e)
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

// Hamiltonian builds H(k) = A(k)^H diag(E(k)) A(k) for every k, A being
// nBands x nWann.
func Hamiltonian(gauge []*mat.CDense, eig [][]float64) (H []*mat.CDense, err error) {
	if len(gauge) != len(eig) {
		err = fmt.Errorf("%w: %d gauge matrices, %d eigenvalue sets", ErrDimension, len(gauge), len(eig))
		return
	}
	H = make([]*mat.CDense, len(gauge))
	for ik, A := range gauge {
		nb, nw := A.Dims()
		if nb != len(eig[ik]) {
			err = fmt.Errorf("%w: k-point %d has a %dx%d gauge and %d eigenvalues",
				ErrDimension, ik, nb, nw, len(eig[ik]))
			return nil, err
		}
		// EA = diag(E) A
		EA := mat.NewCDense(nb, nw, nil)
		for i := 0; i < nb; i++ {
			e := complex(eig[ik][i], 0)
			for j := 0; j < nw; j++ {
				EA.Set(i, j, e*A.At(i, j))
			}
		}
		H[ik] = mat.NewCDense(nw, nw, nil)
		cblas128.Gemm(blas.ConjTrans, blas.NoTrans, 1, A.RawCMatrix(), EA.RawCMatrix(), 0, H[ik].RawCMatrix())
	}
	return
}

// Hermitize returns (H + H^H)/2, H is left untouched.
func Hermitize(H *mat.CDense) (S *mat.CDense) {
	n, _ := H.Dims()
	S = mat.NewCDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			S.Set(i, j, (H.At(i, j)+conj(H.At(j, i)))/2)
		}
	}
	return
}

// Eigenvalues of a Hermitian H, ascending. The real symmetric matrix
// [[Re H, -Im H], [Im H, Re H]] has every eigenvalue of H twice.
func Eigenvalues(H *mat.CDense) (e []float64, err error) {
	n, c := H.Dims()
	if n != c {
		err = fmt.Errorf("%w: %dx%d matrix is not square", ErrDimension, n, c)
		return
	}
	if utils.IsNan(H) {
		err = fmt.Errorf("%w: matrix holds NaN", ErrEigen)
		return
	}
	S := mat.NewSymDense(2*n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			re, im := real(H.At(i, j)), imag(H.At(i, j))
			S.SetSym(i, j, re)
			S.SetSym(n+i, n+j, re)
			S.SetSym(i, n+j, -im)
			S.SetSym(j, n+i, im)
		}
	}
	var es mat.EigenSym
	if ok := es.Factorize(S, false); !ok {
		err = ErrEigen
		return
	}
	vals := es.Values(nil)
	e = make([]float64, n)
	for i := range e {
		e[i] = vals[2*i]
	}
	return
}

// Interpolate carries the Bloch data (gauge and energies per grid k-point,
// in grid order) through dom onto kpts and diagonalizes there.
func Interpolate(grid lattice.KPointGrid, gauge []*mat.CDense, eig [][]float64,
	dom rspace.Degenerate, kpts [][3]float64, cfg utils.Config) (b *Bands, err error) {
	var (
		H  []*mat.CDense
		Or transform.ROperator
		Hk transform.KOperator
	)
	if H, err = Hamiltonian(gauge, eig); err != nil {
		return
	}
	if Or, err = transform.Forward(grid, H, dom, cfg); err != nil {
		return
	}
	if Hk, err = transform.Backward(Or, kpts, cfg); err != nil {
		return
	}
	return diagonalize(Hk, cfg)
}

// InterpolatePath is Interpolate along a k-path, keeping its distances and
// labels for plotting.
func InterpolatePath(grid lattice.KPointGrid, gauge []*mat.CDense, eig [][]float64,
	dom rspace.Degenerate, ip *kpath.Interpolant, cfg utils.Config) (b *Bands, err error) {
	if b, err = Interpolate(grid, gauge, eig, dom, ip.Kpoints(), cfg); err != nil {
		return
	}
	b.Distances, b.Labels = ip.Distances(), ip.Labels()
	return
}

// FromTightBinding evaluates a real-space model directly at kpts.
func FromTightBinding(op transform.ROperator, kpts [][3]float64, cfg utils.Config) (b *Bands, err error) {
	var Hk transform.KOperator
	if Hk, err = transform.Backward(op, kpts, cfg); err != nil {
		return
	}
	return diagonalize(Hk, cfg)
}

func diagonalize(Hk transform.KOperator, cfg utils.Config) (b *Bands, err error) {
	b = &Bands{
		Kpoints:  Hk.Kpoints,
		Energies: make([][]float64, Hk.Len()),
	}
	err = utils.ParallelFor(cfg.Workers(Hk.Len()), Hk.Len(), func(_, k1, k2 int) (err error) {
		for ik := k1; ik < k2; ik++ {
			if b.Energies[ik], err = Eigenvalues(Hermitize(Hk.Blocks[ik])); err != nil {
				return fmt.Errorf("k-point %d: %w", ik, err)
			}
		}
		return
	})
	if err != nil {
		b = nil
		return
	}
	cfg.Log().Debug("bands interpolated", "kpoints", Hk.Len(), "bands", b.NumBands())
	return
}

func conj(z complex128) complex128 { return complex(real(z), -imag(z)) }
