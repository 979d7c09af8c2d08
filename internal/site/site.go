// Package site implements the station registry (§4.3): sites keyed by
// SCNL, their mutable usability flags, their bounded pick rings, and their
// back-references to linked detection-web nodes.
package site

import (
	"strings"
	"sync"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/usgs/neic-glass3-sub001/internal/geo"
	"github.com/usgs/neic-glass3-sub001/internal/pick"
)

// Key is the composite station identifier (Station, Channel, Network,
// Location); Channel and Location may be empty.
type Key struct {
	Station  string
	Channel  string
	Network  string
	Location string
}

// String renders the SCNL key in dot-delimited form for logging and map
// keys.
func (k Key) String() string {
	return k.Station + "." + k.Channel + "." + k.Network + "." + k.Location
}

// ParseKey inverts String, splitting a dot-delimited SCNL string back
// into its four components. Callers that only have a Pick's flat
// SiteKey string (not a wire.SiteRef) use this to look a site back up
// in a Registry.
func ParseKey(s string) Key {
	parts := strings.SplitN(s, ".", 4)
	for len(parts) < 4 {
		parts = append(parts, "")
	}
	return Key{Station: parts[0], Channel: parts[1], Network: parts[2], Location: parts[3]}
}

// NodeRef is a weak back-reference from a site to a node that links it,
// identified by (web name, node id) rather than a Go pointer. A pointer
// cycle here would need a true weak reference, which Go does not have;
// an ID pair resolved back through the owning Web's node map gets the
// same "doesn't keep the node alive / doesn't need manual cycle-breaking"
// property without runtime support neither the standard library nor any
// pack dependency provides (see DESIGN.md open question 5).
type NodeRef struct {
	Web    string
	NodeID string
}

// Site is a station: identity, geocentric position, mutable usability
// flags, a bounded ring of its own recent picks, and the set of nodes
// that currently link it.
//
// Two independent mutexes guard disjoint state, mirroring the spec's
// Site::vPick / Site::vNode split: pickMu guards the Ring, nodeMu guards
// the NodeRef list. Callers that must hold both (rare — unlinking while
// also touching the pick ring) take pickMu first, matching the spec's
// unlinkLastSite ordering note.
type Site struct {
	Key   Key
	Point geo.Point
	unit  r3.Vec

	flagsMu           sync.RWMutex
	enabled           bool
	useForTeleseismic bool
	quality           float64

	pickMu sync.Mutex
	ring   *pick.Ring

	nodeMu sync.Mutex
	nodes  []NodeRef
}

// New returns a Site enabled by default, with quality 1 and an empty pick
// ring of the given capacity (spec default 200).
func New(key Key, p geo.Point, ringCapacity int) *Site {
	return &Site{
		Key:               key,
		Point:             p,
		unit:              p.UnitVector(),
		enabled:           true,
		useForTeleseismic: true,
		quality:           1.0,
		ring:              pick.NewRing(ringCapacity),
	}
}

// UnitVector returns the site's precomputed Cartesian unit vector.
func (s *Site) UnitVector() r3.Vec { return s.unit }

// Enabled reports whether the site currently participates in nucleation.
func (s *Site) Enabled() bool {
	s.flagsMu.RLock()
	defer s.flagsMu.RUnlock()
	return s.enabled
}

// SetEnabled updates the enabled flag and reports whether it changed
// (the registry only fans out to webs on an actual transition).
func (s *Site) SetEnabled(enabled bool) (changed bool) {
	s.flagsMu.Lock()
	defer s.flagsMu.Unlock()
	changed = s.enabled != enabled
	s.enabled = enabled
	return changed
}

// UseForTeleseismic reports whether the site is eligible for teleseismic
// webs.
func (s *Site) UseForTeleseismic() bool {
	s.flagsMu.RLock()
	defer s.flagsMu.RUnlock()
	return s.useForTeleseismic
}

// SetUseForTeleseismic updates the teleseismic-eligibility flag.
func (s *Site) SetUseForTeleseismic(v bool) {
	s.flagsMu.Lock()
	defer s.flagsMu.Unlock()
	s.useForTeleseismic = v
}

// Quality returns the site's current quality weight in [0, 1].
func (s *Site) Quality() float64 {
	s.flagsMu.RLock()
	defer s.flagsMu.RUnlock()
	return s.quality
}

// SetQuality updates the site's quality weight.
func (s *Site) SetQuality(q float64) {
	s.flagsMu.Lock()
	defer s.flagsMu.Unlock()
	s.quality = q
}

// UpdateLocation replaces the site's position and derived unit vector.
// The SCNL key and the node-link list are never touched here, matching
// §4.3: "updating an existing site changes only location, quality, and
// flags — never its SCNL, and never its outgoing node-link list."
func (s *Site) UpdateLocation(p geo.Point) {
	s.flagsMu.Lock()
	defer s.flagsMu.Unlock()
	s.Point = p
	s.unit = p.UnitVector()
}

// PushPick appends a pick to the site's own ring.
func (s *Site) PushPick(p *pick.Pick) {
	s.pickMu.Lock()
	defer s.pickMu.Unlock()
	s.ring.Push(p)
}

// PickSnapshot returns a point-in-time copy of the site's pick ring,
// oldest first — the frozen view nucleate() scans (§6).
func (s *Site) PickSnapshot() []*pick.Pick {
	s.pickMu.Lock()
	defer s.pickMu.Unlock()
	return s.ring.Snapshot()
}

// AddNodeRef records that a node now links this site. A duplicate ref
// (same web and node id already present) is a no-op.
func (s *Site) AddNodeRef(ref NodeRef) {
	s.nodeMu.Lock()
	defer s.nodeMu.Unlock()
	for _, existing := range s.nodes {
		if existing == ref {
			return
		}
	}
	s.nodes = append(s.nodes, ref)
}

// RemoveNodeRef drops a node's back-reference, if present.
func (s *Site) RemoveNodeRef(ref NodeRef) {
	s.nodeMu.Lock()
	defer s.nodeMu.Unlock()
	for i, existing := range s.nodes {
		if existing == ref {
			s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
			return
		}
	}
}

// NodeRefs returns a snapshot of every node currently linking this site.
func (s *Site) NodeRefs() []NodeRef {
	s.nodeMu.Lock()
	defer s.nodeMu.Unlock()
	out := make([]NodeRef, len(s.nodes))
	copy(out, s.nodes)
	return out
}
