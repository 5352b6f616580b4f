// Package rspace builds the real-space domains used to Fourier interpolate
// operators sampled on a uniform k-grid.
//
// All domains expose their lattice and an ordered list of distinct integer
// R-vectors. Capabilities beyond that are queried with type assertions:
//
//	Degenerate  Wigner-Seitz weights 1/N_R       (*WignerSeitz, *MDRS)
//	Translated  per orbital pair MDRS images T   (*MDRS)
//	Indexed     O(1) lookup of an R-vector        (*Bare)
//
// Domains are immutable once built; slices returned by accessors are copies.
package rspace

import (
	"errors"
	"fmt"

	"github.com/notargets/gowannier/lattice"
)

var (
	ErrDegeneracyOverflow = errors.New("rspace: degeneracy exceeds the neighbour search cap")
	ErrDuplicateRvector   = errors.New("rspace: duplicate R-vector")
	ErrEmptyDomain        = errors.New("rspace: empty R-vector list")
)

type Domain interface {
	Lattice() lattice.Lattice
	Rvectors() []lattice.Vec3i
	Len() int
}

type Degenerate interface {
	Domain
	Degeneracies() []int
}

type Translated interface {
	Degenerate
	NumOrbitals() int
	// Translations are the supercell vectors T minimising the distance
	// between orbital m at the origin and orbital n at R+T.
	Translations(iR, m, n int) []lattice.Vec3i
	TDegeneracy(iR, m, n int) int
}

type Indexed interface {
	Domain
	// Index returns the position of R in Rvectors().
	Index(R lattice.Vec3i) (i int, ok bool)
	Extent() (min, max lattice.Vec3i)
}

// DegeneracyOverflowError reports a point with at least Count equidistant
// images when only Cap can be resolved. Raising utils.Config.SearchCap and
// rebuilding the domain is the only remedy.
type DegeneracyOverflowError struct {
	R     lattice.Vec3i
	M, N  int // orbital pair, -1 for the Wigner-Seitz stage
	Count int
	Cap   int
}

func (e *DegeneracyOverflowError) Error() string {
	if e.M < 0 {
		return fmt.Sprintf("rspace: R = %v has at least %d equidistant supercell images, search cap is %d",
			e.R, e.Count, e.Cap)
	}
	return fmt.Sprintf("rspace: R = %v, orbitals (%d,%d) have at least %d equidistant translations, search cap is %d",
		e.R, e.M, e.N, e.Count, e.Cap)
}

func (e *DegeneracyOverflowError) Unwrap() error { return ErrDegeneracyOverflow }

func copyVecs(v []lattice.Vec3i) []lattice.Vec3i {
	r := make([]lattice.Vec3i, len(v))
	copy(r, v)
	return r
}
