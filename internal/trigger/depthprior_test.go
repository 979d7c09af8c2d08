package trigger

import "testing"

func TestNoopDepthPriorAlwaysMisses(t *testing.T) {
	var p NoopDepthPrior
	if _, ok := p.Lookup(10, 20); ok {
		t.Fatal("NoopDepthPrior reported a prior")
	}
}

func TestRunningDepthPriorRequiresMinimumSamples(t *testing.T) {
	p := NewRunningDepthPrior(3)
	p.Observe(10)
	p.Observe(20)
	if _, ok := p.Lookup(0, 0); ok {
		t.Fatal("reported a prior before reaching MinSamples")
	}
	p.Observe(30)
	depth, ok := p.Lookup(0, 0)
	if !ok {
		t.Fatal("did not report a prior once MinSamples reached")
	}
	if depth != 20 {
		t.Errorf("mean depth = %v, want 20", depth)
	}
}
