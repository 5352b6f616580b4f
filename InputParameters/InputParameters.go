package InputParameters

import (
	"errors"
	"fmt"
	"io"

	"github.com/ghodss/yaml"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gowannier/kpath"
	"github.com/notargets/gowannier/lattice"
	"github.com/notargets/gowannier/rspace"
	"github.com/notargets/gowannier/transform"
	"github.com/notargets/gowannier/utils"
)

var ErrInput = errors.New("invalid input deck")

// Parameters obtained from the YAML input file. ghodss/yaml goes through
// encoding/json, so the field tags are json tags.
type InputParameters struct {
	Title string `json:"Title"`
	// Rows are the basis vectors a1, a2, a3 in Angstrom
	Lattice [][3]float64 `json:"Lattice"`
	Grid    [3]int       `json:"Grid"`
	// Orbital centers, one per Wannier function; MDRS is used when present
	Centers          [][3]float64 `json:"Centers"`
	CentersCartesian bool         `json:"CentersCartesian"`
	KPath            KPathInput   `json:"KPath"`
	Hoppings         []Hopping    `json:"Hoppings"`
	Bloch            *BlochInput  `json:"Bloch"`
	// Zero values keep utils.DefaultConfig()
	Atol      float64 `json:"Atol"`
	MaxCell   int     `json:"MaxCell"`
	SearchCap int     `json:"SearchCap"`
}

type KPathInput struct {
	Setting            string         `json:"Setting"` // fractional or cartesian
	FirstSegmentPoints int            `json:"FirstSegmentPoints"`
	Segments           [][2]PathPoint `json:"Segments"`
}

type PathPoint struct {
	Label string     `json:"Label"`
	Coord [3]float64 `json:"Coord"`
}

// Hopping is one block H(R) of a bare tight-binding model.
type Hopping struct {
	R  lattice.Vec3i `json:"R"`
	Re [][]float64   `json:"Re"`
	Im [][]float64   `json:"Im"`
}

// BlochInput is the output of a localization run on the uniform grid, one
// entry per grid k-point in grid order. Gauge matrices are nBands x nWann.
type BlochInput struct {
	Eigenvalues [][]float64   `json:"Eigenvalues"`
	GaugeRe     [][][]float64 `json:"GaugeRe"`
	GaugeIm     [][][]float64 `json:"GaugeIm"`
}

func (ip *InputParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, ip)
}

func (ip *InputParameters) Print(w io.Writer) {
	fmt.Fprintf(w, "\"%s\"\t\t= Title\n", ip.Title)
	for i, a := range ip.Lattice {
		fmt.Fprintf(w, "%v\t= a%d\n", a, i+1)
	}
	fmt.Fprintf(w, "%v\t\t\t= Grid\n", ip.Grid)
	fmt.Fprintf(w, "[%d]\t\t\t\t= Orbital Centers\n", len(ip.Centers))
	fmt.Fprintf(w, "[%d]\t\t\t\t= Path Segments\n", len(ip.KPath.Segments))
	fmt.Fprintf(w, "[%d]\t\t\t\t= First Segment Points\n", ip.KPath.FirstSegmentPoints)
	fmt.Fprintf(w, "[%d]\t\t\t\t= Hoppings\n", len(ip.Hoppings))
	if ip.Bloch != nil {
		fmt.Fprintf(w, "[%d]\t\t\t\t= Bloch k-points\n", len(ip.Bloch.Eigenvalues))
	}
}

// Validate checks the parts of the deck every command needs.
func (ip *InputParameters) Validate() (err error) {
	switch {
	case len(ip.Lattice) != 3:
		err = fmt.Errorf("%w: Lattice needs 3 rows, have %d", ErrInput, len(ip.Lattice))
	case ip.Grid[0] < 1 || ip.Grid[1] < 1 || ip.Grid[2] < 1:
		err = fmt.Errorf("%w: Grid must be positive, have %v", ErrInput, ip.Grid)
	case ip.Atol < 0 || ip.MaxCell < 0 || ip.SearchCap < 0:
		err = fmt.Errorf("%w: Atol, MaxCell and SearchCap must not be negative", ErrInput)
	}
	return
}

// Config overlays the deck tolerances on base.
func (ip *InputParameters) Config(base utils.Config) (cfg utils.Config) {
	cfg = base
	if ip.Atol > 0 {
		cfg.Atol = ip.Atol
	}
	if ip.MaxCell > 0 {
		cfg.MaxCell = ip.MaxCell
	}
	if ip.SearchCap > 0 {
		cfg.SearchCap = ip.SearchCap
	}
	return
}

func (ip *InputParameters) BuildLattice() (lat lattice.Lattice, err error) {
	if len(ip.Lattice) != 3 {
		err = fmt.Errorf("%w: Lattice needs 3 rows, have %d", ErrInput, len(ip.Lattice))
		return
	}
	return lattice.NewLattice(ip.Lattice[0], ip.Lattice[1], ip.Lattice[2])
}

func (ip *InputParameters) BuildGrid() (lattice.KPointGrid, error) {
	return lattice.NewUniformGrid(ip.Grid[0], ip.Grid[1], ip.Grid[2])
}

// BuildCenters returns the fractional orbital centers.
func (ip *InputParameters) BuildCenters(lat lattice.Lattice) [][3]float64 {
	if ip.CentersCartesian {
		return rspace.CentersFromCartesian(lat, ip.Centers)
	}
	return ip.Centers
}

// BuildDomain returns the MDRS domain when centers are given, the
// Wigner-Seitz domain otherwise.
func (ip *InputParameters) BuildDomain(lat lattice.Lattice, cfg utils.Config) (dom rspace.Degenerate, err error) {
	var ws *rspace.WignerSeitz
	if ws, err = rspace.NewWignerSeitz(lat, ip.Grid, cfg); err != nil {
		return
	}
	if len(ip.Centers) == 0 {
		return ws, nil
	}
	return rspace.NewMDRS(ws, ip.BuildCenters(lat), cfg)
}

func (ip *InputParameters) BuildKPath(lat lattice.Lattice, cfg utils.Config) (kp *kpath.KPath, err error) {
	var (
		setting kpath.CoordSystem
		segs    = make([]kpath.Segment, len(ip.KPath.Segments))
	)
	if setting, err = kpath.ParseCoordSystem(ip.KPath.Setting); err != nil {
		err = fmt.Errorf("%w: %v", ErrInput, err)
		return
	}
	for i, s := range ip.KPath.Segments {
		segs[i] = kpath.Segment{
			{Label: s[0].Label, Coord: s[0].Coord},
			{Label: s[1].Label, Coord: s[1].Coord},
		}
	}
	return kpath.NewKPath(lat.Reciprocal(), setting, segs, cfg)
}

// BuildInterpolant samples the path, FirstSegmentPoints defaults to 100.
func (ip *InputParameters) BuildInterpolant(lat lattice.Lattice, cfg utils.Config) (*kpath.Interpolant, error) {
	kp, err := ip.BuildKPath(lat, cfg)
	if err != nil {
		return nil, err
	}
	n := ip.KPath.FirstSegmentPoints
	if n == 0 {
		n = 100
	}
	return kp.Interpolate(n)
}

func (ip *InputParameters) BuildTightBinding(lat lattice.Lattice) (op transform.ROperator, err error) {
	if len(ip.Hoppings) == 0 {
		err = fmt.Errorf("%w: no Hoppings", ErrInput)
		return
	}
	var (
		rvecs  = make([]lattice.Vec3i, len(ip.Hoppings))
		blocks = make([]*mat.CDense, len(ip.Hoppings))
		bare   *rspace.Bare
	)
	for i, h := range ip.Hoppings {
		rvecs[i] = h.R
		if blocks[i], err = complexMatrix(h.Re, h.Im); err != nil {
			err = fmt.Errorf("hopping %v: %w", h.R, err)
			return
		}
	}
	if bare, err = rspace.NewBare(lat, rvecs); err != nil {
		return
	}
	return transform.NewTightBinding(bare, blocks)
}

// BuildBloch returns the gauge matrices and band energies per grid k-point.
func (ip *InputParameters) BuildBloch() (gauge []*mat.CDense, eig [][]float64, err error) {
	b := ip.Bloch
	if b == nil {
		err = fmt.Errorf("%w: no Bloch data", ErrInput)
		return
	}
	if len(b.GaugeRe) != len(b.Eigenvalues) || (b.GaugeIm != nil && len(b.GaugeIm) != len(b.GaugeRe)) {
		err = fmt.Errorf("%w: Bloch arrays disagree on the k-point count", ErrInput)
		return
	}
	gauge = make([]*mat.CDense, len(b.GaugeRe))
	for ik := range b.GaugeRe {
		var im [][]float64
		if b.GaugeIm != nil {
			im = b.GaugeIm[ik]
		}
		if gauge[ik], err = complexMatrix(b.GaugeRe[ik], im); err != nil {
			err = fmt.Errorf("gauge at k-point %d: %w", ik, err)
			return nil, nil, err
		}
	}
	eig = b.Eigenvalues
	return
}

// complexMatrix joins real and imaginary parts, a nil im means real.
func complexMatrix(re, im [][]float64) (m *mat.CDense, err error) {
	if len(re) == 0 || len(re[0]) == 0 {
		err = fmt.Errorf("%w: empty matrix", ErrInput)
		return
	}
	var (
		nr, nc = len(re), len(re[0])
	)
	if im != nil && len(im) != nr {
		err = fmt.Errorf("%w: real part has %d rows, imaginary part %d", ErrInput, nr, len(im))
		return
	}
	m = mat.NewCDense(nr, nc, nil)
	for i := 0; i < nr; i++ {
		if len(re[i]) != nc || (im != nil && len(im[i]) != nc) {
			err = fmt.Errorf("%w: ragged row %d", ErrInput, i)
			return nil, err
		}
		for j := 0; j < nc; j++ {
			var v float64
			if im != nil {
				v = im[i][j]
			}
			m.Set(i, j, complex(re[i][j], v))
		}
	}
	return
}
