package site

import (
	"sync"

	"github.com/usgs/neic-glass3-sub001/internal/geo"
)

// Watcher is the web-side half of §4.3's enable/disable fan-out: "when a
// site transitions from enabled to disabled, the registry calls
// web.removeSite(site) on every web; on re-enable, web.addSite(site)."
// Webs register themselves with the registry at startup.
type Watcher interface {
	AddSite(s *Site)
	RemoveSite(s *Site)
}

// Registry keeps every known site keyed by SCNL, and fans enable/disable
// transitions out to every registered web.
type Registry struct {
	mu           sync.RWMutex
	sites        map[string]*Site
	ringCapacity int
	watchers     []Watcher
}

// NewRegistry returns an empty registry. ringCapacity sizes every site's
// per-site pick ring (spec default 200).
func NewRegistry(ringCapacity int) *Registry {
	if ringCapacity < 1 {
		ringCapacity = 200
	}
	return &Registry{sites: make(map[string]*Site), ringCapacity: ringCapacity}
}

// Watch registers a web for enable/disable fan-out. Call before sites are
// loaded if the web should also see the initial static list via AddSite.
func (r *Registry) Watch(w Watcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watchers = append(r.watchers, w)
}

// Get returns the site for a key, or nil if unknown.
func (r *Registry) Get(key Key) *Site {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sites[key.String()]
}

// All returns a snapshot slice of every registered site.
func (r *Registry) All() []*Site {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Site, 0, len(r.sites))
	for _, s := range r.sites {
		out = append(out, s)
	}
	return out
}

// Upsert creates a new site or updates an existing one's location,
// matching §4.3's update semantics (location only; SCNL and node links
// survive untouched). Returns the site and whether it was newly created.
func (r *Registry) Upsert(key Key, p geo.Point) (s *Site, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key.String()
	if existing, ok := r.sites[k]; ok {
		existing.UpdateLocation(p)
		return existing, false
	}
	s = New(key, p, r.ringCapacity)
	r.sites[k] = s
	return s, true
}

// SetEnabled toggles a site's enabled flag and, on an actual transition,
// fans the change out to every watching web.
func (r *Registry) SetEnabled(key Key, enabled bool) {
	r.mu.RLock()
	s := r.sites[key.String()]
	watchers := r.watchers
	r.mu.RUnlock()
	if s == nil {
		return
	}
	if !s.SetEnabled(enabled) {
		return
	}
	for _, w := range watchers {
		if enabled {
			w.AddSite(s)
		} else {
			w.RemoveSite(s)
		}
	}
}
