// Package taper implements the four-point cosine taper used as a
// distance-dependent weighting function for nucleation phases and the
// two-point associable-distance window used for phase-association
// matching (spec §4.2).
//
// No dependency in the retrieval pack exposes this specific primitive
// (gonum's stat/floats packages cover summary statistics, not windowing
// functions), so it is implemented directly against the standard library —
// see DESIGN.md for the stdlib justification.
package taper

import "math"

// CosineRange is a four-point taper (x1 <= x2 <= x3 <= x4): weight is 0
// below x1, rises with a half-cosine from x1 to x2, is 1 between x2 and x3,
// falls with a half-cosine from x3 to x4, and is 0 above x4.
type CosineRange struct {
	X1, X2, X3, X4 float64
}

// Weight returns the taper weight at x, in [0, 1].
func (r CosineRange) Weight(x float64) float64 {
	switch {
	case x <= r.X1 || x >= r.X4:
		return 0
	case x >= r.X2 && x <= r.X3:
		return 1
	case x < r.X2:
		return cosineRamp(x, r.X1, r.X2)
	default: // x > r.X3, x < r.X4
		return 1 - cosineRamp(x, r.X3, r.X4)
	}
}

// cosineRamp returns a half-cosine ramp from 0 at lo to 1 at hi.
func cosineRamp(x, lo, hi float64) float64 {
	if hi <= lo {
		return 1
	}
	frac := (x - lo) / (hi - lo)
	return 0.5 - 0.5*math.Cos(frac*math.Pi)
}

// AssocWindow is a two-point associable-distance window: a phase is a
// candidate match only when the observed distance falls in [Lo, Hi].
type AssocWindow struct {
	Lo, Hi float64
}

// Contains reports whether x falls within the window, inclusive.
func (w AssocWindow) Contains(x float64) bool {
	return x >= w.Lo && x <= w.Hi
}
