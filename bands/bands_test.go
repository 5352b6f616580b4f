package bands

import (
	"bytes"
	"math"
	"math/cmplx"
	"math/rand"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gowannier/kpath"
	"github.com/notargets/gowannier/lattice"
	"github.com/notargets/gowannier/rspace"
	"github.com/notargets/gowannier/transform"
	"github.com/notargets/gowannier/utils"
)

// randomUnitary orthonormalizes the columns of a random complex matrix.
func randomUnitary(rng *rand.Rand, n int) *mat.CDense {
	U := mat.NewCDense(n, n, nil)
	for j := 0; j < n; j++ {
		v := make([]complex128, n)
		for i := range v {
			v[i] = complex(rng.NormFloat64(), rng.NormFloat64())
		}
		for p := 0; p < j; p++ {
			var d complex128
			for i := 0; i < n; i++ {
				d += cmplx.Conj(U.At(i, p)) * v[i]
			}
			for i := 0; i < n; i++ {
				v[i] -= d * U.At(i, p)
			}
		}
		var nrm float64
		for i := range v {
			nrm += real(v[i])*real(v[i]) + imag(v[i])*imag(v[i])
		}
		nrm = math.Sqrt(nrm)
		for i := 0; i < n; i++ {
			U.Set(i, j, v[i]/complex(nrm, 0))
		}
	}
	return U
}

func blochData(t *testing.T, dims [3]int, nw int) (lattice.KPointGrid, []*mat.CDense, [][]float64) {
	grid, err := lattice.NewUniformGrid(dims[0], dims[1], dims[2])
	require.NoError(t, err)
	var (
		rng   = rand.New(rand.NewSource(3))
		gauge = make([]*mat.CDense, grid.Len())
		eig   = make([][]float64, grid.Len())
	)
	for ik := range gauge {
		gauge[ik] = randomUnitary(rng, nw)
		eig[ik] = make([]float64, nw)
		for i := range eig[ik] {
			eig[ik][i] = 4*rng.Float64() - 2
		}
		sort.Float64s(eig[ik])
	}
	return grid, gauge, eig
}

func TestEigenvalues(t *testing.T) {
	{
		H := mat.NewCDense(2, 2, []complex128{1, 1i, -1i, 1})
		e, err := Eigenvalues(H)
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{0, 2}, e, 1.e-12)
	}
	{ // Diagonal input comes back sorted
		H := mat.NewCDense(3, 3, []complex128{3, 0, 0, 0, -1, 0, 0, 0, 0.5})
		e, err := Eigenvalues(H)
		require.NoError(t, err)
		assert.InDeltaSlice(t, []float64{-1, 0.5, 3}, e, 1.e-12)
	}
	{
		_, err := Eigenvalues(mat.NewCDense(2, 3, nil))
		assert.ErrorIs(t, err, ErrDimension)
		_, err = Eigenvalues(mat.NewCDense(1, 1, []complex128{complex(math.NaN(), 0)}))
		assert.ErrorIs(t, err, ErrEigen)
	}
}

func TestHermitize(t *testing.T) {
	H := mat.NewCDense(2, 2, []complex128{1 + 1e-9i, 2 + 1i, 2 - 0.9i, 3})
	S := Hermitize(H)
	assert.Equal(t, complex(2, 1), H.At(0, 1))
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			assert.Equal(t, S.At(i, j), cmplx.Conj(S.At(j, i)))
		}
	}
	assert.InDelta(t, 0.95, imag(S.At(0, 1)), 1.e-15)
	assert.Equal(t, 0., imag(S.At(0, 0)))
}

func TestHamiltonian(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	{ // Unitary gauge preserves the spectrum
		U := randomUnitary(rng, 4)
		E := []float64{-1, 0, 0.25, 2}
		H, err := Hamiltonian([]*mat.CDense{U}, [][]float64{E})
		require.NoError(t, err)
		e, err := Eigenvalues(Hermitize(H[0]))
		require.NoError(t, err)
		assert.InDeltaSlice(t, E, e, 1.e-12)
	}
	{ // Projection onto fewer orbitals, A is nb x nw
		A := mat.NewCDense(3, 2, []complex128{1, 0, 0, 1, 0, 0})
		H, err := Hamiltonian([]*mat.CDense{A}, [][]float64{{-1, 5, 9}})
		require.NoError(t, err)
		r, c := H[0].Dims()
		assert.Equal(t, [2]int{2, 2}, [2]int{r, c})
		assert.Equal(t, complex(-1, 0), H[0].At(0, 0))
		assert.Equal(t, complex(5, 0), H[0].At(1, 1))
		assert.Equal(t, complex(0, 0), H[0].At(0, 1))
	}
	{
		_, err := Hamiltonian([]*mat.CDense{randomUnitary(rng, 2)}, nil)
		assert.ErrorIs(t, err, ErrDimension)
		_, err = Hamiltonian([]*mat.CDense{randomUnitary(rng, 2)}, [][]float64{{1, 2, 3}})
		assert.ErrorIs(t, err, ErrDimension)
	}
}

func TestInterpolateReproducesGrid(t *testing.T) {
	var (
		cfg  = utils.DefaultConfig()
		dims = [3]int{3, 3, 2}
		nw   = 3
	)
	lat, err := lattice.NewLattice([3]float64{2, 0, 0}, [3]float64{-1, 1.7, 0}, [3]float64{0, 0, 3})
	require.NoError(t, err)
	grid, gauge, eig := blochData(t, dims, nw)
	ws, err := rspace.NewWignerSeitz(lat, dims, cfg)
	require.NoError(t, err)
	md, err := rspace.NewMDRS(ws, [][3]float64{{0, 0, 0}, {0.33, 0.67, 0.1}, {0.5, 0.5, 0.5}}, cfg)
	require.NoError(t, err)
	for _, dom := range []rspace.Degenerate{ws, md} {
		b, err := Interpolate(grid, gauge, eig, dom, grid.Kpoints, cfg)
		require.NoError(t, err)
		require.Len(t, b.Energies, grid.Len())
		assert.Equal(t, nw, b.NumBands())
		for ik := range eig {
			assert.InDeltaSlice(t, eig[ik], b.Energies[ik], 1.e-9)
		}
		assert.Nil(t, b.Distances)
	}
}

func TestInterpolatePath(t *testing.T) {
	var (
		cfg  = utils.DefaultConfig()
		dims = [3]int{6, 1, 1}
		e0   = 0.2
		hop  = -0.75
	)
	band := func(k [3]float64) float64 { return e0 + 2*hop*math.Cos(2*math.Pi*k[0]) }
	grid, err := lattice.NewUniformGrid(dims[0], dims[1], dims[2])
	require.NoError(t, err)
	var (
		gauge = make([]*mat.CDense, grid.Len())
		eig   = make([][]float64, grid.Len())
	)
	for ik, k := range grid.Kpoints {
		gauge[ik] = mat.NewCDense(1, 1, []complex128{cmplx.Exp(complex(0, float64(ik)))})
		eig[ik] = []float64{band(k)}
	}
	lat := lattice.Identity()
	ws, err := rspace.NewWignerSeitz(lat, dims, cfg)
	require.NoError(t, err)
	kp, err := kpath.NewKPath(lat.Reciprocal(), kpath.Fractional, []kpath.Segment{
		{{Label: "G", Coord: [3]float64{}}, {Label: "X", Coord: [3]float64{0.5, 0, 0}}},
	}, cfg)
	require.NoError(t, err)
	ip, err := kp.Interpolate(25)
	require.NoError(t, err)
	b, err := InterpolatePath(grid, gauge, eig, ws, ip, cfg)
	require.NoError(t, err)
	require.Len(t, b.Energies, 25)
	assert.Equal(t, ip.Distances(), b.Distances)
	assert.Equal(t, []kpath.Label{{Index: 0, Name: "G"}, {Index: 24, Name: "X"}}, b.Labels)
	for ik, k := range b.Kpoints {
		assert.InDelta(t, band(k), b.Energies[ik][0], 1.e-10)
	}
	lo, hi := b.Range()
	assert.InDelta(t, e0+2*hop, lo, 1.e-10)
	assert.InDelta(t, e0-2*hop, hi, 1.e-10)

	var buf bytes.Buffer
	require.NoError(t, b.Write(&buf))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 25)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(lines[0]), "0.00000000"))
}

func TestFromTightBinding(t *testing.T) {
	var (
		cfg = utils.DefaultConfig()
		// Two orbital chain, on-site splitting and inter-orbital hopping
		rvecs  = []lattice.Vec3i{{-1, 0, 0}, {0, 0, 0}, {1, 0, 0}}
		delta  = 0.5
		hop    = 0.3
		d, h   = complex(delta, 0), complex(hop, 0)
		blocks = []*mat.CDense{
			mat.NewCDense(2, 2, []complex128{0, h, 0, 0}),
			mat.NewCDense(2, 2, []complex128{d, h, h, -d}),
			mat.NewCDense(2, 2, []complex128{0, 0, h, 0}),
		}
	)
	bare, err := rspace.NewBare(lattice.Identity(), rvecs)
	require.NoError(t, err)
	tb, err := transform.NewTightBinding(bare, blocks)
	require.NoError(t, err)
	kpts := [][3]float64{{0, 0, 0}, {0.2, 0, 0}, {0.5, 0, 0}}
	b, err := FromTightBinding(tb, kpts, cfg)
	require.NoError(t, err)
	for ik, k := range kpts {
		// off diagonal element hop (1 + exp(-2 pi i k))
		off := cmplx.Abs(h * (1 + cmplx.Exp(complex(0, -2*math.Pi*k[0]))))
		e := math.Sqrt(delta*delta + off*off)
		assert.InDeltaSlice(t, []float64{-e, e}, b.Energies[ik], 1.e-12)
		assert.True(t, sort.Float64sAreSorted(b.Energies[ik]))
	}
}

func TestDimensionErrors(t *testing.T) {
	var (
		cfg  = utils.DefaultConfig()
		dims = [3]int{2, 2, 2}
	)
	grid, gauge, eig := blochData(t, dims, 2)
	ws, err := rspace.NewWignerSeitz(lattice.Identity(), dims, cfg)
	require.NoError(t, err)
	_, err = Interpolate(grid, gauge[:7], eig, ws, grid.Kpoints, cfg)
	assert.ErrorIs(t, err, ErrDimension)
	_, err = Interpolate(grid, gauge[:7], eig[:7], ws, grid.Kpoints, cfg)
	assert.ErrorIs(t, err, transform.ErrDimension)
	md, err := rspace.NewMDRS(ws, [][3]float64{{0, 0, 0}}, cfg)
	require.NoError(t, err)
	_, err = Interpolate(grid, gauge, eig, md, grid.Kpoints, cfg)
	assert.ErrorIs(t, err, transform.ErrDimension)
}
