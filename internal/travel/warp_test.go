package travel

import (
	"math"
	"testing"
)

func TestWarpIndexValueRoundTrip(t *testing.T) {
	w := NewWarp(0, 110, 4.0, 1.0/10.0, 1.0/25.0, 550)

	for _, x := range []float64{0, 0.01, 1, 10, 45, 90, 109.9, 110} {
		idx := w.Index(x)
		back := w.Value(idx)
		if math.Abs(back-x) > 1e-6 {
			t.Errorf("Index/Value round trip for x=%v: got %v, want ~%v (idx=%v)", x, back, x, idx)
		}
	}
}

func TestWarpIndexMonotonic(t *testing.T) {
	w := NewWarp(0, 800, 4.0, 1.0/10.0, 1.0/25.0, 105)
	prev := -1.0
	for x := 0.0; x <= 800; x += 1.0 {
		idx := w.Index(x)
		if idx < prev {
			t.Fatalf("warp index not monotonic at x=%v: idx=%v < prev=%v", x, idx, prev)
		}
		prev = idx
	}
}

func TestWarpIndexBounds(t *testing.T) {
	w := NewWarp(0, 110, 4.0, 1.0/10.0, 1.0/25.0, 550)
	if got := w.Index(0); math.Abs(got) > 1e-9 {
		t.Errorf("Index(Min) = %v, want 0", got)
	}
	if got := w.Index(110); math.Abs(got-549) > 1e-6 {
		t.Errorf("Index(Max) = %v, want %v", got, 549.0)
	}
	// Out-of-range inputs clamp rather than extrapolate.
	if got := w.Index(-5); got != w.Index(0) {
		t.Errorf("Index(-5) = %v, want clamp to Index(0) = %v", got, w.Index(0))
	}
	if got := w.Index(500); got != w.Index(110) {
		t.Errorf("Index(500) = %v, want clamp to Index(Max)", got)
	}
}
