package trigger

import (
	"sync"

	"gonum.org/v1/gonum/stat"
)

// DepthPrior is a read-only, optional collaborator (§4.8): given a
// candidate epicenter, it supplies a depth estimate the nucleator or web
// may use to clamp a node's MaximumDepth search. No implementation ships
// as policy (explicitly out of scope) — NoopDepthPrior is the nil-safe
// default, and RunningDepthPrior is a worked example exercising
// gonum/stat, not a production zone-statistics model.
type DepthPrior interface {
	Lookup(lat, lon float64) (depthKM float64, ok bool)
}

// NoopDepthPrior always reports no prior available.
type NoopDepthPrior struct{}

// Lookup implements DepthPrior.
func (NoopDepthPrior) Lookup(lat, lon float64) (float64, bool) { return 0, false }

// RunningDepthPrior keeps a running mean/variance of observed trigger
// depths and reports the mean once enough samples have accumulated. It
// ignores lat/lon entirely (a single global running statistic, not a
// zone model) — a minimal example of how a real zone-statistics
// collaborator would use gonum/stat, not a substitute for one.
type RunningDepthPrior struct {
	MinSamples int

	mu      sync.Mutex
	depths  []float64
	weights []float64
}

// NewRunningDepthPrior returns a RunningDepthPrior requiring minSamples
// observations before Lookup reports ok.
func NewRunningDepthPrior(minSamples int) *RunningDepthPrior {
	if minSamples <= 0 {
		minSamples = 10
	}
	return &RunningDepthPrior{MinSamples: minSamples}
}

// Observe records a trigger's depth for the running statistic.
func (p *RunningDepthPrior) Observe(depthKM float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.depths = append(p.depths, depthKM)
	p.weights = append(p.weights, 1.0)
}

// Lookup implements DepthPrior, ignoring lat/lon.
func (p *RunningDepthPrior) Lookup(lat, lon float64) (float64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.depths) < p.MinSamples {
		return 0, false
	}
	mean, _ := stat.MeanVariance(p.depths, p.weights)
	return mean, true
}
