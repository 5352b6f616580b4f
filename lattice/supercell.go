package lattice

import (
	"sort"

	"github.com/notargets/gowannier/utils"
)

// Supercell is a set of fractional points, each paired with the integer
// translation that generated it from a base point.
type Supercell struct {
	Points       [][3]float64
	Translations []Vec3i
}

// MakeSupercell emits base + T for every base point and every translation
// T in rx × ry × rz. Base points vary slowest, then x, y, z.
func MakeSupercell(base [][3]float64, rx, ry, rz utils.Index) (sc Supercell) {
	if len(rx) == 0 || len(ry) == 0 || len(rz) == 0 {
		panic("supercell translation range is empty")
	}
	var (
		N = len(base) * len(rx) * len(ry) * len(rz)
	)
	sc = Supercell{
		Points:       make([][3]float64, 0, N),
		Translations: make([]Vec3i, 0, N),
	}
	for _, p := range base {
		for _, x := range rx {
			for _, y := range ry {
				for _, z := range rz {
					T := Vec3i{x, y, z}
					sc.Points = append(sc.Points, Add(p, T.Float()))
					sc.Translations = append(sc.Translations, T)
				}
			}
		}
	}
	return
}

// HomeCell returns the nx*ny*nz integer points 0..n-1 of one supercell, the
// images of the unit cell under the grid periodicity.
func HomeCell(dims [3]int) (pts [][3]float64) {
	sc := MakeSupercell([][3]float64{{}},
		utils.NewRange(0, dims[0]-1), utils.NewRange(0, dims[1]-1), utils.NewRange(0, dims[2]-1))
	return sc.Points
}

func (sc Supercell) Len() int { return len(sc.Points) }

// Sort orders the points lexicographically, last axis fastest. Ties keep
// their generation order.
func (sc *Supercell) Sort() {
	idx := make([]int, len(sc.Points))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		pa, pb := sc.Points[idx[a]], sc.Points[idx[b]]
		for d := 0; d < 3; d++ {
			if pa[d] != pb[d] {
				return pa[d] < pb[d]
			}
		}
		return false
	})
	var (
		pts = make([][3]float64, len(idx))
		trs = make([]Vec3i, len(idx))
	)
	for i, j := range idx {
		pts[i], trs[i] = sc.Points[j], sc.Translations[j]
	}
	sc.Points, sc.Translations = pts, trs
}

// IntPoints returns the points rounded to integers; callers use it for
// supercells built from integer base points.
func (sc Supercell) IntPoints() (R []Vec3i) {
	R = make([]Vec3i, len(sc.Points))
	for i, p := range sc.Points {
		for d := 0; d < 3; d++ {
			if p[d] < 0 {
				R[i][d] = int(p[d] - 0.5)
			} else {
				R[i][d] = int(p[d] + 0.5)
			}
		}
	}
	return
}
