// Package kpath expands labeled high-symmetry segments into densely and
// uniformly sampled k-point lines for band structure interpolation.
package kpath

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/notargets/gowannier/lattice"
	"github.com/notargets/gowannier/utils"
)

var (
	ErrEmptySegment = errors.New("kpath: empty or malformed segment")
	ErrPointCount   = errors.New("kpath: invalid point count")
)

type CoordSystem uint8

const (
	Fractional CoordSystem = iota
	Cartesian
)

func (c CoordSystem) String() string {
	switch c {
	case Fractional:
		return "fractional"
	case Cartesian:
		return "cartesian"
	}
	return fmt.Sprintf("CoordSystem(%d)", uint8(c))
}

// ParseCoordSystem accepts the String form, case-insensitively; empty means
// Fractional.
func ParseCoordSystem(s string) (c CoordSystem, err error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fractional", "crystal", "reduced":
		c = Fractional
	case "cartesian":
		c = Cartesian
	default:
		err = fmt.Errorf("kpath: unknown coordinate system %q", s)
	}
	return
}

type LabeledPoint struct {
	Label string
	Coord [3]float64
}

// Segment is a straight line between two labeled points.
type Segment [2]LabeledPoint

// Relabel records a label that was renamed because it was already bound to
// different coordinates.
type Relabel struct {
	Original, Assigned string
	Coord              [3]float64
}

type KPath struct {
	Points map[string][3]float64
	// Paths are connected sequences of labels, consecutive input segments
	// sharing an end point label are joined into one path
	Paths     [][]string
	Basis     lattice.Lattice // reciprocal lattice
	Setting   CoordSystem     // of Points
	Relabeled []Relabel
	atol      float64
}

func NewKPath(basis lattice.Lattice, setting CoordSystem, segments []Segment, cfg utils.Config) (kp *KPath, err error) {
	if len(segments) == 0 {
		err = fmt.Errorf("%w: no segments", ErrEmptySegment)
		return
	}
	kp = &KPath{
		Points:  make(map[string][3]float64),
		Basis:   basis,
		Setting: setting,
		atol:    cfg.Atol,
	}
	var (
		path    []string
		prevEnd string
	)
	for i, seg := range segments {
		if seg[0].Label == "" || seg[1].Label == "" {
			err = fmt.Errorf("%w: segment %d has an empty label", ErrEmptySegment, i)
			return nil, err
		}
		a, b := kp.bind(seg[0], cfg), kp.bind(seg[1], cfg)
		if a == b {
			err = fmt.Errorf("%w: segment %d starts and ends at %s", ErrEmptySegment, i, a)
			return nil, err
		}
		if lattice.Dist(kp.cartesian(a), kp.cartesian(b)) < kp.atol {
			err = fmt.Errorf("%w: segment %d from %s to %s has zero length", ErrEmptySegment, i, a, b)
			return nil, err
		}
		if path != nil && a == prevEnd {
			path = append(path, b)
		} else {
			if path != nil {
				kp.Paths = append(kp.Paths, path)
			}
			path = []string{a, b}
		}
		prevEnd = b
	}
	kp.Paths = append(kp.Paths, path)
	return
}

// bind returns the label under which p is stored, trying p.Label, then
// p.Label_1, p.Label_2, ... and reusing the first one with equal
// coordinates.
func (kp *KPath) bind(p LabeledPoint, cfg utils.Config) (name string) {
	for s := 0; ; s++ {
		name = p.Label
		if s > 0 {
			name = fmt.Sprintf("%s_%d", p.Label, s)
		}
		c, taken := kp.Points[name]
		if !taken {
			kp.Points[name] = p.Coord
			if s > 0 {
				kp.Relabeled = append(kp.Relabeled, Relabel{Original: p.Label, Assigned: name, Coord: p.Coord})
				cfg.Log().Warn("k-path label bound to different coordinates, relabeled",
					"label", p.Label, "assigned", name, "coord", p.Coord)
			}
			return
		}
		if lattice.Dist(c, p.Coord) < kp.atol {
			return
		}
	}
}

func (kp *KPath) fractional(label string) [3]float64 {
	c := kp.Points[label]
	if kp.Setting == Cartesian {
		return kp.Basis.Fractional(c)
	}
	return c
}

func (kp *KPath) cartesian(label string) [3]float64 {
	c := kp.Points[label]
	if kp.Setting == Fractional {
		return kp.Basis.Cartesian(c)
	}
	return c
}

// Interpolate samples the first segment with nFirst points and every other
// segment with round(length/dk) points, dk = |first segment| / nFirst.
// Shared vertices inside a path are emitted once.
func (kp *KPath) Interpolate(nFirst int) (ip *Interpolant, err error) {
	if nFirst < 2 {
		err = fmt.Errorf("%w: first segment needs at least 2 points, have %d", ErrPointCount, nFirst)
		return
	}
	L1 := lattice.Dist(kp.cartesian(kp.Paths[0][0]), kp.cartesian(kp.Paths[0][1]))
	if !(L1 > 0) {
		err = fmt.Errorf("%w: first segment has zero length", ErrPointCount)
		return
	}
	var (
		dk    = L1 / float64(nFirst)
		first = true
	)
	ip = &Interpolant{
		Lines:   make([]Line, len(kp.Paths)),
		Basis:   kp.Basis,
		Setting: Fractional,
	}
	for il, path := range kp.Paths {
		line := Line{Labels: map[int]string{0: path[0]}}
		for j := 0; j+1 < len(path); j++ {
			var (
				fa, fb = kp.fractional(path[j]), kp.fractional(path[j+1])
				n      = nFirst
				start  = 0
			)
			if !first {
				L := lattice.Dist(kp.cartesian(path[j]), kp.cartesian(path[j+1]))
				n = max(2, int(math.Round(L/dk)))
			}
			first = false
			if j > 0 {
				start = 1
			}
			for s := start; s < n; s++ {
				line.Kpoints = append(line.Kpoints, lerp(fa, fb, s, n))
			}
			line.Labels[len(line.Kpoints)-1] = path[j+1]
		}
		ip.Lines[il] = line
	}
	return
}

// lerp returns point s of n evenly spaced points from a to b inclusive,
// exact at both ends.
func lerp(a, b [3]float64, s, n int) (p [3]float64) {
	switch s {
	case 0:
		return a
	case n - 1:
		return b
	}
	t := float64(s) / float64(n-1)
	for d := 0; d < 3; d++ {
		p[d] = a[d] + t*(b[d]-a[d])
	}
	return
}
