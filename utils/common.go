package utils

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
)

const (
	// Distance tolerance used by Wannier90 for Wigner-Seitz and MDRS ties
	WSDistTol = 1.e-5
	// Grid coordinates further than this (in units of one grid step) from a
	// grid node are considered off-grid
	GridTol = 1.e-6
)

var ErrConfig = errors.New("invalid configuration")

// Config carries the tolerances and search limits of the domain builders,
// the k-path generator and the transforms. Values are passed explicitly,
// there are no package level defaults that can be mutated.
type Config struct {
	// Atol is the absolute distance tolerance (Angstrom) used to detect
	// equidistant lattice images.
	Atol float64
	// MaxCell is the half width, in supercell periods, of the Wigner-Seitz
	// search window. MDRS searches one period further.
	MaxCell int
	// SearchCap is the maximum degeneracy resolved by the neighbour search.
	// Wannier90 compatible outputs need the default of 8.
	SearchCap int
	// ParallelDegree is the number of workers, 0 selects runtime.NumCPU().
	ParallelDegree int
	Logger         *slog.Logger
}

func DefaultConfig() Config {
	return Config{
		Atol:      WSDistTol,
		MaxCell:   3,
		SearchCap: 8,
		Logger:    slog.Default(),
	}
}

func (c Config) Validate() (err error) {
	switch {
	case !(c.Atol > 0):
		err = fmt.Errorf("%w: atol must be positive, have %v", ErrConfig, c.Atol)
	case c.MaxCell < 1:
		err = fmt.Errorf("%w: max cell must be at least 1, have %d", ErrConfig, c.MaxCell)
	case c.SearchCap < 1:
		err = fmt.Errorf("%w: search cap must be at least 1, have %d", ErrConfig, c.SearchCap)
	case c.ParallelDegree < 0:
		err = fmt.Errorf("%w: parallel degree must not be negative, have %d", ErrConfig, c.ParallelDegree)
	}
	return
}

// Workers returns the number of goroutines to use for n independent items.
func (c Config) Workers(n int) (np int) {
	np = c.ParallelDegree
	if np == 0 {
		np = runtime.NumCPU()
	}
	if np > n {
		np = n
	}
	if np < 1 {
		np = 1
	}
	return
}

func (c Config) Log() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}
