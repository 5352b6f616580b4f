package lattice

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	ErrSingularLattice = errors.New("lattice: basis vectors are linearly dependent")
	ErrGridSize        = errors.New("lattice: k-point count does not match grid dimensions")
	ErrGridOrigin      = errors.New("lattice: first k-point must be the origin")
	ErrOffGrid         = errors.New("lattice: k-point is not a node of the uniform grid")
)

// Vec3i is an integer lattice triple, used for R-vectors and translations.
type Vec3i [3]int

func (v Vec3i) Add(w Vec3i) Vec3i { return Vec3i{v[0] + w[0], v[1] + w[1], v[2] + w[2]} }
func (v Vec3i) Sub(w Vec3i) Vec3i { return Vec3i{v[0] - w[0], v[1] - w[1], v[2] - w[2]} }
func (v Vec3i) Float() [3]float64 { return [3]float64{float64(v[0]), float64(v[1]), float64(v[2])} }

// Less orders lexicographically with the last axis varying fastest.
func (v Vec3i) Less(w Vec3i) bool {
	for i := 0; i < 3; i++ {
		if v[i] != w[i] {
			return v[i] < w[i]
		}
	}
	return false
}

// Lattice holds three basis vectors as the columns of a 3x3 matrix.
type Lattice struct {
	m, inv    *mat.Dense
	cart, frc *r3.Mat
}

func newLattice(m, inv *mat.Dense) Lattice {
	lat := Lattice{m: m, inv: inv, cart: r3.NewMat(nil), frc: r3.NewMat(nil)}
	lat.cart.CloneFrom(m)
	lat.frc.CloneFrom(inv)
	return lat
}

// NewLattice builds a lattice from its basis vectors a1, a2, a3.
func NewLattice(a1, a2, a3 [3]float64) (lat Lattice, err error) {
	m := mat.NewDense(3, 3, nil)
	for i, a := range [3][3]float64{a1, a2, a3} {
		m.SetCol(i, a[:])
	}
	return NewLatticeFromMatrix(m)
}

// NewLatticeFromMatrix copies M, whose columns are the basis vectors.
func NewLatticeFromMatrix(M mat.Matrix) (lat Lattice, err error) {
	if r, c := M.Dims(); r != 3 || c != 3 {
		err = fmt.Errorf("lattice: basis must be 3x3, have %dx%d", r, c)
		return
	}
	m := mat.DenseCopyOf(M)
	if math.Abs(mat.Det(m)) < 1.e-12 {
		err = ErrSingularLattice
		return
	}
	inv := mat.NewDense(3, 3, nil)
	if err = inv.Inverse(m); err != nil {
		err = fmt.Errorf("%w: %v", ErrSingularLattice, err)
		return
	}
	lat = newLattice(m, inv)
	return
}

// Identity is the unit cube lattice.
func Identity() Lattice {
	lat, _ := NewLattice([3]float64{1, 0, 0}, [3]float64{0, 1, 0}, [3]float64{0, 0, 1})
	return lat
}

func (lat Lattice) Matrix() *mat.Dense { return mat.DenseCopyOf(lat.m) }

func (lat Lattice) Vectors() (a [3][3]float64) {
	for j := 0; j < 3; j++ {
		for i := 0; i < 3; i++ {
			a[j][i] = lat.m.At(i, j)
		}
	}
	return
}

func (lat Lattice) Volume() float64 { return math.Abs(mat.Det(lat.m)) }

// Cartesian maps fractional coordinates to Cartesian.
func (lat Lattice) Cartesian(f [3]float64) [3]float64 { return Array(lat.cart.MulVec(Vec(f))) }

func (lat Lattice) CartesianInt(v Vec3i) [3]float64 { return lat.Cartesian(v.Float()) }

// Fractional maps Cartesian coordinates to fractional.
func (lat Lattice) Fractional(c [3]float64) [3]float64 { return Array(lat.frc.MulVec(Vec(c))) }

// Reciprocal returns the lattice with columns b_i satisfying a_i·b_j = 2π δ_ij.
func (lat Lattice) Reciprocal() Lattice {
	b := mat.NewDense(3, 3, nil)
	b.Scale(2*math.Pi, lat.inv.T())
	inv := mat.NewDense(3, 3, nil)
	inv.Scale(1/(2*math.Pi), lat.m.T())
	return newLattice(b, inv)
}

// Vec and Array convert between coordinate triples and r3 vectors.
func Vec(a [3]float64) r3.Vec        { return r3.Vec{X: a[0], Y: a[1], Z: a[2]} }
func Array(v r3.Vec) [3]float64      { return [3]float64{v.X, v.Y, v.Z} }
func Norm(v [3]float64) float64      { return r3.Norm(Vec(v)) }
func Sub(a, b [3]float64) [3]float64 { return Array(r3.Sub(Vec(a), Vec(b))) }
func Add(a, b [3]float64) [3]float64 { return Array(r3.Add(Vec(a), Vec(b))) }
func Dot(a, b [3]float64) float64    { return r3.Dot(Vec(a), Vec(b)) }
func Dist(a, b [3]float64) float64   { return r3.Norm(r3.Sub(Vec(a), Vec(b))) }
