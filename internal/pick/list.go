package pick

import "sync"

// List is the global time-ordered, bounded cache of recent picks (§2.4).
// It is independent of any one site's Ring: the nucleator consults a
// site's Ring for "does this site have a pick near t_org", while List
// exists so the ingest stage can throttle when the system is falling
// behind (§6 "Backpressure: pick list and output queue expose
// Len()/Cap(); the ingest stage throttles when full").
type List struct {
	mu       sync.Mutex
	capacity int
	picks    []*Pick
	byID     map[string]*Pick
}

// NewList returns an empty list with the given capacity.
func NewList(capacity int) *List {
	if capacity < 1 {
		capacity = 1
	}
	return &List{capacity: capacity, byID: make(map[string]*Pick)}
}

// Push appends a pick, evicting the oldest entry on overflow. Pushing a
// pick whose ID is already present is a no-op — picks are deduplicated by
// ID, not by content, since ingest retries can resend the same message.
func (l *List) Push(p *Pick) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, dup := l.byID[p.ID]; dup {
		return
	}
	l.picks = append(l.picks, p)
	l.byID[p.ID] = p
	if len(l.picks) > l.capacity {
		evicted := l.picks[0]
		l.picks = l.picks[1:]
		delete(l.byID, evicted.ID)
	}
}

// Get returns the pick with the given ID, or nil if it is not present
// (already evicted, or never pushed).
func (l *List) Get(id string) *Pick {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.byID[id]
}

// Len reports the list's current occupancy.
func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.picks)
}

// Cap reports the list's configured capacity.
func (l *List) Cap() int { return l.capacity }

// Full reports whether the list is at capacity — the signal the ingest
// stage polls before pushing another parsed pick (§6).
func (l *List) Full() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.picks) >= l.capacity
}
