package travel

import "math"

// Warp is a monotonic nonlinear index<->value mapping that concentrates
// grid resolution near zero (distance or depth), per spec §4.1:
//
//	g(x) = x/s∞ - (1/s0 - 1/s∞)*exp(-k*x)/k + c
//
// Min/Max bound the physical range the warp covers; N is the number of
// grid rows/columns spanning [Min, Max]. C is solved at construction so
// that g(Min) == 0.
type Warp struct {
	Min, Max float64
	K        float64
	S0, SInf float64
	N        int

	c       float64 // offset so g(Min) == 0
	gMax    float64 // g(Max), for normalising to the [0, N-1] index range
}

// NewWarp builds a Warp and solves the offset constant so the warped index
// range is exactly [0, N-1] over [Min, Max].
func NewWarp(min, max, k, s0, sInf float64, n int) Warp {
	w := Warp{Min: min, Max: max, K: k, S0: s0, SInf: sInf, N: n}
	w.c = -w.rawG(min)
	w.gMax = w.rawG(max) + w.c
	return w
}

func (w Warp) rawG(x float64) float64 {
	return x/w.SInf - (1/w.S0-1/w.SInf)*math.Exp(-w.K*x)/w.K
}

// g is the raw warp function (index units before normalisation to [0, N-1]).
func (w Warp) g(x float64) float64 {
	return w.rawG(x) + w.c
}

// Index converts a physical value into a fractional grid index in
// [0, N-1]. Values outside [Min, Max] are clamped.
func (w Warp) Index(x float64) float64 {
	if x < w.Min {
		x = w.Min
	} else if x > w.Max {
		x = w.Max
	}
	if w.gMax <= 0 {
		return 0
	}
	return w.g(x) / w.gMax * float64(w.N-1)
}

// Value converts a fractional grid index back to a physical value by
// bisection on the monotonic g() (the warp has no closed-form inverse).
func (w Warp) Value(index float64) float64 {
	targetG := index / float64(w.N-1) * w.gMax
	lo, hi := w.Min, w.Max
	for i := 0; i < 60; i++ {
		mid := (lo + hi) / 2
		if w.g(mid) < targetG {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}
