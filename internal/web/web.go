// Package web implements the detection web (§4.4): the node lattice, the
// node-site linking algorithm, and the dynamic add/remove path that keeps
// link sets current as the site registry changes.
package web

import (
	"fmt"
	"sort"
	"sync"

	"github.com/usgs/neic-glass3-sub001/internal/geo"
	"github.com/usgs/neic-glass3-sub001/internal/site"
	"github.com/usgs/neic-glass3-sub001/internal/taper"
	"github.com/usgs/neic-glass3-sub001/internal/travel"
)

// Config holds a web's tuning knobs (§3 "Web").
type Config struct {
	ResolutionKM     float64
	DetectN          int // per-node detection count, default 20
	NCut             int // nucleation count, default 7
	DThresh          float64 // nucleation threshold, default 2.5
	SigmaFactor      float64 // resolution / SigmaFactor = gaussian sigma, default 4
	AzimuthWindowDeg float64 // dAzimuthWindow, 0 disables the azimuth-gap check
	AzimuthTaper     *taper.CosineRange
	MaxDepthKM       float64 // 0 = unlimited
	TeleseismicOnly  bool
	DynamicUpdates   bool // whether AddSite/RemoveSite act; explicit frozen webs set false

	PrimaryPhase   string
	SecondaryPhase string // "" = no secondary phase

	AllowedNetworks []string // empty = no restriction
	AllowedStations []string

	// TeleseismicWindowSec bounds how late an observed arrival may be
	// relative to a candidate origin time before Node.Nucleate rejects
	// it outright. Surfaced as configuration per the spec's own flagged
	// open question; default matches the historical hardcoded value.
	TeleseismicWindowSec float64
	// MinSiteSignificance is the per-site significance floor below
	// which a site's best-matching pick is too marginal to contribute
	// to a node's coincidence sum.
	MinSiteSignificance float64
}

// DefaultConfig returns a Config with the spec's documented defaults.
func DefaultConfig() Config {
	return Config{
		DetectN:              20,
		NCut:                 7,
		DThresh:              2.5,
		SigmaFactor:          4,
		DynamicUpdates:       true,
		PrimaryPhase:         "P",
		TeleseismicWindowSec: 1000.0,
		MinSiteSignificance:  0.1,
	}
}

// JobRunner executes a web-maintenance job, synchronously or on a worker
// pool (§4.4.4). The zero value, inlineRunner, runs jobs inline — the
// spec's "0 threads" configuration.
type JobRunner interface {
	Submit(job func())
}

type inlineRunner struct{}

func (inlineRunner) Submit(job func()) { job() }

// Web is a named collection of nodes sharing one or two nucleation phases.
type Web struct {
	Name   string
	Config Config
	ttt    *travel.TTT

	eligMu   sync.RWMutex
	eligible []*site.Site

	nodesMu sync.RWMutex
	nodes   map[string]*Node
	order   []string

	jobs JobRunner

	nextNodeID int
}

// New returns an empty web. Call LoadGrid to populate its node set.
func New(name string, cfg Config, ttt *travel.TTT) *Web {
	return &Web{
		Name:   name,
		Config: cfg,
		ttt:    ttt,
		nodes:  make(map[string]*Node),
		jobs:   inlineRunner{},
	}
}

// SetJobRunner installs a worker pool to service future LoadGrid jobs
// asynchronously (§4.4.4). AddSite and RemoveSite do not go through the
// runner; they always run on the caller's goroutine.
func (w *Web) SetJobRunner(r JobRunner) {
	if r == nil {
		r = inlineRunner{}
	}
	w.jobs = r
}

// Node returns the node with the given id, or nil.
func (w *Web) Node(id string) *Node {
	w.nodesMu.RLock()
	defer w.nodesMu.RUnlock()
	return w.nodes[id]
}

// Nodes returns a snapshot slice of every node in the web, in creation
// order.
func (w *Web) Nodes() []*Node {
	w.nodesMu.RLock()
	defer w.nodesMu.RUnlock()
	out := make([]*Node, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.nodes[id])
	}
	return out
}

// isSiteAllowed applies the network/station allow-lists and the
// teleseismic filter.
func (w *Web) isSiteAllowed(s *site.Site) bool {
	if w.Config.TeleseismicOnly && !s.UseForTeleseismic() {
		return false
	}
	if len(w.Config.AllowedNetworks) > 0 && !contains(w.Config.AllowedNetworks, s.Key.Network) {
		return false
	}
	if len(w.Config.AllowedStations) > 0 && !contains(w.Config.AllowedStations, s.Key.Station) {
		return false
	}
	return true
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// RefreshEligible rescans the registry and rebuilds the web-wide eligible-
// site list (every site passing isSiteAllowed, independent of whether it
// is currently linked to any node).
func (w *Web) RefreshEligible(reg *site.Registry) {
	var elig []*site.Site
	for _, s := range reg.All() {
		if s.Enabled() && w.isSiteAllowed(s) {
			elig = append(elig, s)
		}
	}
	w.eligMu.Lock()
	w.eligible = elig
	w.eligMu.Unlock()
}

func (w *Web) eligibleSnapshot() []*site.Site {
	w.eligMu.RLock()
	defer w.eligMu.RUnlock()
	out := make([]*site.Site, len(w.eligible))
	copy(out, w.eligible)
	return out
}

// LoadGrid creates one node per (point, depth) pair and links each to its
// nearest eligible sites (§4.4.1, §4.4.2). It is submitted through the
// web's job runner.
func (w *Web) LoadGrid(points []geo.Point, depths []float64) {
	w.jobs.Submit(func() { w.buildGrid(points, depths) })
}

func (w *Web) buildGrid(points []geo.Point, depths []float64) {
	if len(depths) == 0 {
		depths = []float64{0}
	}
	var newNodes []*Node
	w.nodesMu.Lock()
	for _, p := range points {
		for _, d := range depths {
			if w.Config.MaxDepthKM > 0 && d > w.Config.MaxDepthKM {
				continue
			}
			id := fmt.Sprintf("%s-%d", w.Name, w.nextNodeID)
			w.nextNodeID++
			n := newNode(id, w, geo.Point{Lat: p.Lat, Lon: p.Lon, Depth: d}, w.Config.ResolutionKM)
			w.nodes[id] = n
			w.order = append(w.order, id)
			newNodes = append(newNodes, n)
		}
	}
	w.nodesMu.Unlock()

	for _, n := range newNodes {
		w.linkNode(n)
	}
}

// linkNode performs the full node-site linking algorithm for a single
// node (§4.4.2): nearest-N eligible sites by angular distance, primary/
// secondary travel time, reject-iff-both-missing, sort ascending by
// primary travel time.
func (w *Web) linkNode(n *Node) {
	candidates := w.eligibleSnapshot()
	sort.Slice(candidates, func(i, j int) bool {
		return geo.Delta(n.Point, candidates[i].Point) < geo.Delta(n.Point, candidates[j].Point)
	})
	if len(candidates) > w.Config.DetectN {
		candidates = candidates[:w.Config.DetectN]
	}

	newLinks := make([]SiteLink, 0, len(candidates))
	for _, s := range candidates {
		link, ok := w.buildLink(n, s)
		if ok {
			newLinks = append(newLinks, link)
		}
	}

	ref := site.NodeRef{Web: w.Name, NodeID: n.ID}
	n.mu.Lock()
	for _, old := range n.links {
		old.Site.RemoveNodeRef(ref)
	}
	for _, l := range newLinks {
		l.Site.AddNodeRef(ref)
	}
	n.setLinksLocked(newLinks)
	n.mu.Unlock()
}

// buildLink computes the primary/secondary travel times for a candidate
// site from a node, using travel.TTT.Td so the lookup stays stateless and
// concurrency-safe across nodes sharing the same TTT.
func (w *Web) buildLink(n *Node, s *site.Site) (SiteLink, bool) {
	delta := geo.Delta(n.Point, s.Point)
	tt1 := w.ttt.Td(delta, w.Config.PrimaryPhase, n.Point.Depth)
	tt2 := travel.NoTime
	if w.Config.SecondaryPhase != "" {
		tt2 = w.ttt.Td(delta, w.Config.SecondaryPhase, n.Point.Depth)
	}
	if tt1 == travel.NoTime && tt2 == travel.NoTime {
		return SiteLink{}, false
	}
	return SiteLink{Site: s, TT1: tt1, TT2: tt2}, true
}

// AddSite implements site.Watcher (§4.4.3 "On addSite(site)").
func (w *Web) AddSite(s *site.Site) {
	if !w.Config.DynamicUpdates || !w.isSiteAllowed(s) {
		return
	}
	w.eligMu.Lock()
	w.eligible = append(w.eligible, s)
	w.eligMu.Unlock()

	for _, n := range w.Nodes() {
		w.maybeInsertSite(n, s)
	}
}

func (w *Web) maybeInsertSite(n *Node, s *site.Site) {
	delta := geo.Delta(n.Point, s.Point)
	ref := site.NodeRef{Web: w.Name, NodeID: n.ID}

	n.mu.Lock()
	defer n.mu.Unlock()

	full := len(n.links) >= w.Config.DetectN
	if full {
		last := n.links[len(n.links)-1]
		lastDelta := geo.Delta(n.Point, last.Site.Point)
		if delta >= lastDelta {
			return
		}
	}

	link, ok := w.buildLink(n, s)
	if !ok {
		return
	}

	n.enabled = false
	links := make([]SiteLink, 0, len(n.links)+1)
	if full {
		evicted := n.links[len(n.links)-1]
		links = append(links, n.links[:len(n.links)-1]...)
		evicted.Site.RemoveNodeRef(ref)
	} else {
		links = append(links, n.links...)
	}
	links = append(links, link)
	s.AddNodeRef(ref)
	n.setLinksLocked(links)
}

// RemoveSite implements site.Watcher (§4.4.3 "On removeSite(site)").
func (w *Web) RemoveSite(s *site.Site) {
	if !w.Config.DynamicUpdates {
		return
	}
	w.eligMu.Lock()
	for i, x := range w.eligible {
		if x == s {
			w.eligible = append(w.eligible[:i], w.eligible[i+1:]...)
			break
		}
	}
	eligSnapshot := append([]*site.Site(nil), w.eligible...)
	w.eligMu.Unlock()

	for _, n := range w.Nodes() {
		w.unlinkAndPromote(n, s, eligSnapshot)
	}
}

func (w *Web) unlinkAndPromote(n *Node, s *site.Site, eligible []*site.Site) {
	ref := site.NodeRef{Web: w.Name, NodeID: n.ID}

	n.mu.Lock()
	defer n.mu.Unlock()

	idx := n.linkIndexLocked(s)
	if idx < 0 {
		return
	}
	n.enabled = false
	links := append(append([]SiteLink(nil), n.links[:idx]...), n.links[idx+1:]...)
	s.RemoveNodeRef(ref)

	if len(eligible) >= w.Config.DetectN {
		sorted := append([]*site.Site(nil), eligible...)
		sort.Slice(sorted, func(i, j int) bool {
			return geo.Delta(n.Point, sorted[i].Point) < geo.Delta(n.Point, sorted[j].Point)
		})
		if candidate := firstUnlinked(sorted, links, w.Config.DetectN-1); candidate != nil {
			if link, ok := w.buildLink(n, candidate); ok {
				links = append(links, link)
				candidate.AddNodeRef(ref)
			}
		}
	}

	n.setLinksLocked(links)
}

// firstUnlinked scans sorted starting at startIdx for the first site not
// already present in links.
func firstUnlinked(sorted []*site.Site, links []SiteLink, startIdx int) *site.Site {
	if startIdx < 0 {
		startIdx = 0
	}
	for i := startIdx; i < len(sorted); i++ {
		candidate := sorted[i]
		linked := false
		for _, l := range links {
			if l.Site == candidate {
				linked = true
				break
			}
		}
		if !linked {
			return candidate
		}
	}
	return nil
}
