package rspace

import (
	"fmt"

	"github.com/notargets/gowannier/lattice"
)

// Bare is an R-vector list with a dense (x,y,z) -> position table. It
// carries no degeneracies, so it only serves tight-binding models given
// directly in real space.
type Bare struct {
	lat      lattice.Lattice
	rvecs    []lattice.Vec3i
	min, max lattice.Vec3i
	stride   [3]int
	// 1-based list position per cell, 0 if the cell holds no R-vector
	table []int
}

func NewBare(lat lattice.Lattice, rvecs []lattice.Vec3i) (b *Bare, err error) {
	if len(rvecs) == 0 {
		err = ErrEmptyDomain
		return
	}
	b = &Bare{
		lat:   lat,
		rvecs: copyVecs(rvecs),
		min:   rvecs[0],
		max:   rvecs[0],
	}
	for _, R := range rvecs {
		for d := 0; d < 3; d++ {
			if R[d] < b.min[d] {
				b.min[d] = R[d]
			}
			if R[d] > b.max[d] {
				b.max[d] = R[d]
			}
		}
	}
	var (
		ext [3]int
	)
	for d := 0; d < 3; d++ {
		ext[d] = b.max[d] - b.min[d] + 1
	}
	b.stride = [3]int{ext[1] * ext[2], ext[2], 1}
	b.table = make([]int, ext[0]*ext[1]*ext[2])
	for i, R := range rvecs {
		cell := b.offset(R)
		if b.table[cell] != 0 {
			err = fmt.Errorf("%w: %v at positions %d and %d", ErrDuplicateRvector, R, b.table[cell]-1, i)
			b = nil
			return
		}
		b.table[cell] = i + 1
	}
	return
}

// NewBareFrom indexes the R-vectors of any other domain.
func NewBareFrom(dom Domain) (*Bare, error) { return NewBare(dom.Lattice(), dom.Rvectors()) }

func (b *Bare) offset(R lattice.Vec3i) (cell int) {
	for d := 0; d < 3; d++ {
		cell += (R[d] - b.min[d]) * b.stride[d]
	}
	return
}

func (b *Bare) Index(R lattice.Vec3i) (i int, ok bool) {
	for d := 0; d < 3; d++ {
		if R[d] < b.min[d] || R[d] > b.max[d] {
			return -1, false
		}
	}
	i = b.table[b.offset(R)] - 1
	return i, i >= 0
}

func (b *Bare) Extent() (min, max lattice.Vec3i) { return b.min, b.max }
func (b *Bare) Lattice() lattice.Lattice         { return b.lat }
func (b *Bare) Len() int                         { return len(b.rvecs) }
func (b *Bare) Rvectors() []lattice.Vec3i        { return copyVecs(b.rvecs) }
func (b *Bare) Rvector(i int) lattice.Vec3i      { return b.rvecs[i] }
