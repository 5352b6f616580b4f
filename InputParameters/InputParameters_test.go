package InputParameters

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gowannier/kpath"
	"github.com/notargets/gowannier/lattice"
	"github.com/notargets/gowannier/rspace"
	"github.com/notargets/gowannier/utils"
)

var deck = []byte(`
Title: Square lattice s-band
Lattice:
  - [1, 0, 0]
  - [0, 1, 0]
  - [0, 0, 5]
Grid: [4, 4, 1]
KPath:
  Setting: fractional
  FirstSegmentPoints: 20
  Segments:
    - [{Label: G, Coord: [0, 0, 0]}, {Label: X, Coord: [0.5, 0, 0]}]
    - [{Label: X, Coord: [0.5, 0, 0]}, {Label: M, Coord: [0.5, 0.5, 0]}]
Hoppings:
  - {R: [0, 0, 0], Re: [[0.5]]}
  - {R: [1, 0, 0], Re: [[-1]]}
  - {R: [-1, 0, 0], Re: [[-1]]}
  - {R: [0, 1, 0], Re: [[0]], Im: [[0.25]]}
  - {R: [0, -1, 0], Re: [[0]], Im: [[-0.25]]}
Bloch:
  Eigenvalues: [[1], [2]]
  GaugeRe: [[[1]], [[0]]]
  GaugeIm: [[[0]], [[1]]]
SearchCap: 12
`)

func TestParse(t *testing.T) {
	var ip InputParameters
	require.NoError(t, ip.Parse(deck))
	require.NoError(t, ip.Validate())
	assert.Equal(t, "Square lattice s-band", ip.Title)
	assert.Equal(t, [3]int{4, 4, 1}, ip.Grid)
	assert.Equal(t, [3]float64{0, 0, 5}, ip.Lattice[2])
	assert.Equal(t, 20, ip.KPath.FirstSegmentPoints)
	require.Len(t, ip.KPath.Segments, 2)
	assert.Equal(t, PathPoint{Label: "M", Coord: [3]float64{0.5, 0.5, 0}}, ip.KPath.Segments[1][1])
	require.Len(t, ip.Hoppings, 5)
	assert.Equal(t, lattice.Vec3i{0, -1, 0}, ip.Hoppings[4].R)
	assert.Nil(t, ip.Hoppings[0].Im)

	cfg := ip.Config(utils.DefaultConfig())
	assert.Equal(t, 12, cfg.SearchCap)
	assert.Equal(t, utils.WSDistTol, cfg.Atol)
	assert.Equal(t, 3, cfg.MaxCell)

	var buf bytes.Buffer
	ip.Print(&buf)
	assert.Contains(t, buf.String(), "\"Square lattice s-band\"")
	assert.Contains(t, buf.String(), "= Hoppings")
}

func TestBuild(t *testing.T) {
	var (
		ip  InputParameters
		cfg = utils.DefaultConfig()
	)
	require.NoError(t, ip.Parse(deck))
	lat, err := ip.BuildLattice()
	require.NoError(t, err)
	assert.InDelta(t, 5., lat.Volume(), 1.e-12)
	{
		grid, err := ip.BuildGrid()
		require.NoError(t, err)
		assert.Equal(t, 16, grid.Len())
		dom, err := ip.BuildDomain(lat, cfg)
		require.NoError(t, err)
		_, isMDRS := dom.(*rspace.MDRS)
		assert.False(t, isMDRS)
		ip2 := ip
		ip2.Centers = [][3]float64{{0.5, 0.5, 2.5}}
		ip2.CentersCartesian = true
		c := ip2.BuildCenters(lat)
		require.Len(t, c, 1)
		assert.InDeltaSlice(t, []float64{0.5, 0.5, 0.5}, c[0][:], 1.e-12)
		dom, err = ip2.BuildDomain(lat, cfg)
		require.NoError(t, err)
		md, isMDRS := dom.(*rspace.MDRS)
		require.True(t, isMDRS)
		assert.Equal(t, 1, md.NumOrbitals())
	}
	{
		interp, err := ip.BuildInterpolant(lat, cfg)
		require.NoError(t, err)
		assert.Equal(t, []kpath.Label{{Index: 0, Name: "G"}, {Index: 19, Name: "X"}, {Index: 38, Name: "M"}},
			interp.Labels())
	}
	{
		tb, err := ip.BuildTightBinding(lat)
		require.NoError(t, err)
		assert.Equal(t, 1., tb.Norm)
		h, ok := tb.At(lattice.Vec3i{0, 1, 0})
		require.True(t, ok)
		assert.Equal(t, complex(0, 0.25), h.At(0, 0))
	}
	{
		gauge, eig, err := ip.BuildBloch()
		require.NoError(t, err)
		require.Len(t, gauge, 2)
		assert.Equal(t, complex(0, 1), gauge[1].At(0, 0))
		assert.Equal(t, [][]float64{{1}, {2}}, eig)
	}
}

func TestInvalid(t *testing.T) {
	{
		var ip InputParameters
		require.NoError(t, ip.Parse([]byte("Grid: [2, 2, 2]\n")))
		assert.ErrorIs(t, ip.Validate(), ErrInput)
		_, err := ip.BuildLattice()
		assert.ErrorIs(t, err, ErrInput)
		_, err = ip.BuildTightBinding(lattice.Identity())
		assert.ErrorIs(t, err, ErrInput)
		_, _, err = ip.BuildBloch()
		assert.ErrorIs(t, err, ErrInput)
	}
	{
		var ip InputParameters
		require.NoError(t, ip.Parse(deck))
		ip.Grid[2] = 0
		assert.ErrorIs(t, ip.Validate(), ErrInput)
	}
	{
		var ip InputParameters
		require.NoError(t, ip.Parse(deck))
		ip.Hoppings[1].Re = [][]float64{{1, 2}}
		_, err := ip.BuildTightBinding(lattice.Identity())
		assert.Error(t, err)
		ip.Hoppings[1].Re = [][]float64{{-1}}
		ip.Hoppings[2].Im = [][]float64{{1}, {2}}
		_, err = ip.BuildTightBinding(lattice.Identity())
		assert.ErrorIs(t, err, ErrInput)
		ip.KPath.Setting = "polar"
		_, err = ip.BuildKPath(lattice.Identity(), utils.DefaultConfig())
		assert.ErrorIs(t, err, ErrInput)
	}
	{
		var ip InputParameters
		assert.Error(t, ip.Parse([]byte("Grid: [1, 2")))
	}
}
