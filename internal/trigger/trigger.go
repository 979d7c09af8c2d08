// Package trigger holds the immutable Trigger snapshot a successful
// nucleation produces, the Sink a trigger is dispatched to, and the
// output-tracking / depth-prior contracts a downstream hypo-list
// implements (§4.6, §4.7).
package trigger

import (
	"context"

	"github.com/usgs/neic-glass3-sub001/internal/pick"
)

// Trigger is an immutable snapshot produced by a successful nucleation
// (§3 "Trigger"): an origin time, the node's location and resolution, the
// Bayesian stacked significance sum, the contributing pick count, the
// shared list of contributing picks, and the originating web's name.
type Trigger struct {
	OriginTime   float64
	Lat          float64
	Lon          float64
	Depth        float64
	ResolutionKM float64
	BayesianSum  float64
	Count        int
	Picks        []*pick.Pick
	WebName      string
}

// Sink is the contract a trigger is dispatched through (§4.6): dispatch
// must not block nucleation beyond a bounded queue push.
type Sink interface {
	// DispatchTrigger enqueues t. It returns a *glasserr.TransientIO if
	// the sink's queue is full rather than blocking the nucleator.
	DispatchTrigger(ctx context.Context, t Trigger) error
}
