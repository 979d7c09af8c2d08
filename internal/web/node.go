package web

import (
	"sort"
	"sync"

	"github.com/usgs/neic-glass3-sub001/internal/geo"
	"github.com/usgs/neic-glass3-sub001/internal/site"
)

// SiteLink is one node's link to a nearby site: the site it links, and
// the primary/secondary phase travel times from the node to that site.
// TT2 is travel.NoTime if only a primary phase is linked.
type SiteLink struct {
	Site *site.Site
	TT1  float64
	TT2  float64
}

// Node is a fixed hypothesized hypocenter (§3 "Node"). A single
// non-recursive mutex guards both the enabled flag and the link vector —
// a deliberate redesign away from the spec's recursive node mutex (see
// DESIGN.md open question 4): nucleate() takes an upfront snapshot of its
// linked sites instead of re-entering node code through a site's weak
// back-reference while the lock is held.
type Node struct {
	ID           string
	web          *Web
	Point        geo.Point
	ResolutionKM float64

	mu      sync.Mutex
	enabled bool
	links   []SiteLink
}

func newNode(id string, w *Web, p geo.Point, resolutionKM float64) *Node {
	return &Node{ID: id, web: w, Point: p, ResolutionKM: resolutionKM, enabled: true}
}

// Web returns the node's owning web.
func (n *Node) Web() *Web { return n.web }

// Enabled reports whether the node currently participates in nucleation.
// It is cleared for the duration of a link-set rewrite (§3).
func (n *Node) Enabled() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.enabled
}

// Links returns a snapshot of the node's current site links, sorted by
// ascending primary travel time (the invariant §3 requires is maintained
// by every mutator, so a snapshot never needs to re-sort).
func (n *Node) Links() []SiteLink {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]SiteLink, len(n.links))
	copy(out, n.links)
	return out
}

// setLinksLocked replaces the link vector and (re)sorts it by ascending
// primary travel time, then re-enables the node. Callers must hold n.mu;
// setLinksLocked does not lock on its own so callers can clear `enabled` first.
func (n *Node) setLinksLocked(links []SiteLink) {
	sort.SliceStable(links, func(i, j int) bool { return links[i].TT1 < links[j].TT1 })
	n.links = links
	n.enabled = true
}

// linkIndexLocked finds the node's link to a site, returning its index or
// -1. Callers must hold n.mu.
func (n *Node) linkIndexLocked(s *site.Site) int {
	for i, l := range n.links {
		if l.Site == s {
			return i
		}
	}
	return -1
}
