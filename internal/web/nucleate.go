package web

import (
	"math"

	"github.com/usgs/neic-glass3-sub001/internal/geo"
	"github.com/usgs/neic-glass3-sub001/internal/pick"
	"github.com/usgs/neic-glass3-sub001/internal/trigger"
)

// gauss is the stacked-significance kernel: exp(-x^2/(2*sigma^2)).
func gauss(x, sigma float64) float64 {
	if sigma <= 0 {
		return 0
	}
	return math.Exp(-(x * x) / (2 * sigma * sigma))
}

// defaultSignificanceFloor and defaultTeleseismicWindowSec are the
// spec's original hardcoded values (§4.5), used when a Config leaves
// MinSiteSignificance/TeleseismicWindowSec at their zero value (e.g. a
// Config built without DefaultConfig).
const (
	defaultSignificanceFloor    = 0.1
	defaultTeleseismicWindowSec = 1000.0
)

// Nucleate performs the per-node coincidence test for a hypothesized
// origin time tOrg (§4.5, CNode::nucleate). It scans a frozen snapshot of
// every linked, enabled site's pick ring, so the result is fully
// deterministic given that snapshot — no re-entry into node or site
// mutation happens during the scan (the redesign noted in DESIGN.md open
// question 4).
func (n *Node) Nucleate(tOrg float64) (trigger.Trigger, bool) {
	if !n.Enabled() {
		return trigger.Trigger{}, false
	}
	w := n.web
	if w == nil {
		return trigger.Trigger{}, false
	}

	links := n.Links()
	sigma := n.ResolutionKM / nonZero(w.Config.SigmaFactor, 4)
	window := nonZero(w.Config.TeleseismicWindowSec, defaultTeleseismicWindowSec)
	floor := nonZero(w.Config.MinSiteSignificance, defaultSignificanceFloor)

	sum := 0.0
	count := 0
	var picks []*pick.Pick

	for _, link := range links {
		if !link.Site.Enabled() {
			continue
		}
		bestSig := -1.0
		var bestPick *pick.Pick

		for _, q := range link.Site.PickSnapshot() {
			tObs := q.Time - tOrg
			if tObs < 0 || tObs > window {
				continue
			}
			if q.BackAzimuth != nil && w.Config.AzimuthWindowDeg > 0 {
				azSN := geo.Azimuth(n.Point, link.Site.Point)
				if geo.AzimuthDiff(*q.BackAzimuth, azSN) > w.Config.AzimuthWindowDeg {
					continue
				}
			}

			sig := gauss(math.Abs(tObs-link.TT1), sigma)
			if link.TT2 >= 0 {
				if s2 := gauss(math.Abs(tObs-link.TT2), sigma); s2 > sig {
					sig = s2
				}
			}
			if sig > bestSig {
				bestSig = sig
				bestPick = q
			}
		}

		if bestPick != nil && bestSig >= floor {
			picks = append(picks, bestPick)
			sum += bestSig
			count++
		}
	}

	if count >= w.Config.NCut && sum >= w.Config.DThresh {
		return trigger.Trigger{
			OriginTime:   tOrg,
			Lat:          n.Point.Lat,
			Lon:          n.Point.Lon,
			Depth:        n.Point.Depth,
			ResolutionKM: n.ResolutionKM,
			BayesianSum:  sum,
			Count:        count,
			Picks:        picks,
			WebName:      w.Name,
		}, true
	}
	return trigger.Trigger{}, false
}

func nonZero(v, fallback float64) float64 {
	if v == 0 {
		return fallback
	}
	return v
}
