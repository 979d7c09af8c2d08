// Package pick holds the shared Pick type, each site's bounded per-site
// ring of recent picks, and the global time-ordered pick list (§3, §4.4).
//
// A Pick is referenced from three places at once — its owning site's ring,
// the global list, and (once it contributes to a trigger) the trigger's
// member list — so it is handled here as an immutable value stored behind
// a pointer, never copied and mutated in place.
package pick

// Pick is a single-station phase detection (§3 "Pick").
type Pick struct {
	ID          string
	SiteKey     string // SCNL key of the owning site
	Time        float64
	BackAzimuth *float64
	Slowness    *float64
	Source      string
	Phase       string
}

// Ring is a fixed-capacity FIFO cache of a single site's own recent picks,
// grounded on the teacher's TrackedObject.History/MaxTrackHistoryLength
// append-then-trim-from-the-front idiom.
type Ring struct {
	capacity int
	picks    []*Pick
}

// NewRing returns an empty ring with the given capacity (spec default 200).
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{capacity: capacity}
}

// Push appends a pick, evicting the oldest entry if the ring is full.
func (r *Ring) Push(p *Pick) {
	r.picks = append(r.picks, p)
	if len(r.picks) > r.capacity {
		r.picks = r.picks[len(r.picks)-r.capacity:]
	}
}

// Snapshot returns a copy of the ring's current contents, oldest first.
// Callers take a snapshot before scanning so a concurrent Push cannot
// change the slice out from under the scan (§6: nucleate() works from a
// frozen snapshot).
func (r *Ring) Snapshot() []*Pick {
	out := make([]*Pick, len(r.picks))
	copy(out, r.picks)
	return out
}

// Len reports the ring's current occupancy.
func (r *Ring) Len() int { return len(r.picks) }

// Cap reports the ring's configured capacity.
func (r *Ring) Cap() int { return r.capacity }
