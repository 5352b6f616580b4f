// Package transform moves matrix valued operators between a uniform k-grid
// and a real-space domain:
//
//	O(R) = (1/N_R) sum_k exp(-2 pi i k.R) O(k)        Forward
//	O(k) = (1/N)   sum_R exp(+2 pi i k.R) O(R)        Backward
//
// N is the number of grid points and N_R the Wigner-Seitz degeneracy of R.
// For MDRS domains every element (m,n) of O(R) is spread evenly over its
// translations R+T in the backward sum.
package transform

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gowannier/lattice"
	"github.com/notargets/gowannier/rspace"
)

var (
	ErrDimension    = errors.New("transform: dimension mismatch")
	ErrNoDegeneracy = errors.New("transform: domain carries no degeneracies")
)

// KOperator is a square matrix per k-point.
type KOperator struct {
	Kpoints [][3]float64
	Blocks  []*mat.CDense
}

// ROperator is a square matrix per R-vector of Domain. Backward scales its
// sum by Norm, 1/N after Forward and 1 for tight-binding models.
type ROperator struct {
	Domain rspace.Domain
	Blocks []*mat.CDense
	Norm   float64
}

func NewKOperator(kpts [][3]float64, blocks []*mat.CDense) (op KOperator, err error) {
	if len(kpts) != len(blocks) {
		err = fmt.Errorf("%w: %d k-points, %d blocks", ErrDimension, len(kpts), len(blocks))
		return
	}
	if _, err = blockSize(blocks); err != nil {
		return
	}
	op = KOperator{Kpoints: kpts, Blocks: blocks}
	return
}

// NewTightBinding wraps hopping matrices H(R), one per R-vector of dom, as
// an operator evaluated by Backward without Fourier normalisation.
func NewTightBinding(dom *rspace.Bare, blocks []*mat.CDense) (op ROperator, err error) {
	if dom.Len() != len(blocks) {
		err = fmt.Errorf("%w: %d R-vectors, %d blocks", ErrDimension, dom.Len(), len(blocks))
		return
	}
	if _, err = blockSize(blocks); err != nil {
		return
	}
	op = ROperator{Domain: dom, Blocks: blocks, Norm: 1}
	return
}

func (op KOperator) Len() int { return len(op.Blocks) }

func (op KOperator) Size() (n int) {
	if len(op.Blocks) != 0 {
		n, _ = op.Blocks[0].Dims()
	}
	return
}

func (op ROperator) Size() (n int) {
	if len(op.Blocks) != 0 {
		n, _ = op.Blocks[0].Dims()
	}
	return
}

// At returns the block of R when the domain supports direct lookup.
func (op ROperator) At(R lattice.Vec3i) (b *mat.CDense, ok bool) {
	var (
		i int
	)
	switch d := op.Domain.(type) {
	case rspace.Indexed:
		i, ok = d.Index(R)
	default:
		for j, r := range op.Domain.Rvectors() {
			if r == R {
				i, ok = j, true
				break
			}
		}
	}
	if ok {
		b = op.Blocks[i]
	}
	return
}

// blockSize checks that all blocks are square and of one size.
func blockSize(blocks []*mat.CDense) (n int, err error) {
	if len(blocks) == 0 {
		err = fmt.Errorf("%w: no blocks", ErrDimension)
		return
	}
	n, c := blocks[0].Dims()
	for i, b := range blocks {
		r, cc := b.Dims()
		if r != n || cc != c || r != cc {
			err = fmt.Errorf("%w: block %d is %dx%d, want %dx%d", ErrDimension, i, r, cc, n, n)
			return
		}
	}
	return
}

// element reads entry (i,j) of a CDense through its raw storage.
func element(b *mat.CDense, i, j int) complex128 {
	raw := b.RawCMatrix()
	return raw.Data[i*raw.Stride+j]
}
