// Package nucleate drives the per-pick nucleation scan (§4.5 steps 1-2):
// for an incoming pick, walk every node weakly linked from its site, form
// candidate origin times, invoke the node's own coincidence test, and
// dedupe/dispatch the resulting triggers per web.
package nucleate

import (
	"context"

	"github.com/usgs/neic-glass3-sub001/internal/pick"
	"github.com/usgs/neic-glass3-sub001/internal/site"
	"github.com/usgs/neic-glass3-sub001/internal/travel"
	"github.com/usgs/neic-glass3-sub001/internal/trigger"
	"github.com/usgs/neic-glass3-sub001/internal/web"
)

// Nucleator resolves a site's NodeRefs back to live *web.Node values and
// runs the per-pick scan across them.
type Nucleator struct {
	webs map[string]*web.Web
	sink trigger.Sink
}

// New returns a Nucleator dispatching successful triggers to sink. webs
// maps every web name a site's NodeRef might name to its live *web.Web.
func New(webs map[string]*web.Web, sink trigger.Sink) *Nucleator {
	return &Nucleator{webs: webs, sink: sink}
}

// HandlePick is the per-pick entry point (§4.5 step 1-2). The pick is
// pushed onto its site's ring first, so it is visible to this call's own
// scan as well as every subsequent pick's scan of the same site.
func (nt *Nucleator) HandlePick(ctx context.Context, s *site.Site, p *pick.Pick) []error {
	s.PushPick(p)

	bestPerWeb := make(map[string]trigger.Trigger)
	for _, ref := range s.NodeRefs() {
		w := nt.webs[ref.Web]
		if w == nil {
			continue
		}
		node := w.Node(ref.NodeID)
		if node == nil {
			continue
		}
		link, ok := findLink(node, s)
		if !ok {
			continue
		}

		for _, tt := range []float64{link.TT1, link.TT2} {
			if tt == travel.NoTime {
				continue
			}
			tOrg := p.Time - tt
			trg, fired := node.Nucleate(tOrg)
			if !fired {
				continue
			}
			if cur, exists := bestPerWeb[ref.Web]; !exists || trg.BayesianSum > cur.BayesianSum {
				bestPerWeb[ref.Web] = trg
			}
			break // "accept the first successful result" (§4.5 step 2)
		}
	}

	var errs []error
	for _, trg := range bestPerWeb {
		if err := nt.sink.DispatchTrigger(ctx, trg); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func findLink(n *web.Node, s *site.Site) (web.SiteLink, bool) {
	for _, l := range n.Links() {
		if l.Site == s {
			return l, true
		}
	}
	return web.SiteLink{}, false
}
