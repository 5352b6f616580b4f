package utils

type Index []int

func NewRange(rmin, rmax int) (r Index) {
	var (
		size = rmax - rmin + 1 // INCLUSIVE RANGE
	)
	if size < 1 {
		return Index{}
	}
	r = make(Index, size)
	for i := range r {
		r[i] = i + rmin
	}
	return
}

// NewSymRange returns the inclusive range [-c, c] multiplied by step, so
// NewSymRange(2, 4) is {-8, -4, 0, 4, 8}.
func NewSymRange(c, step int) (r Index) {
	return NewRange(-c, c).Scale(step)
}

func (I Index) Scale(val int) (r Index) {
	r = make(Index, len(I))
	for i, ival := range I {
		r[i] = val * ival
	}
	return r
}

// Mod is the non-negative remainder of a by n.
func Mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
