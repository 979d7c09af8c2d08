package trigger

import (
	"sync"
	"time"
)

// HypoRecord is the output-tracking contract's unit of record (§4.7): one
// hypocenter's create/report/version/publication history. The nucleator
// never constructs these directly — they are owned by whatever
// OutputPolicy implementation sits downstream of a Sink.
type HypoRecord struct {
	ID         string
	CreateTime time.Time
	ReportTime time.Time
	Version    int
	Cancelled  bool
	Published  bool
}

// OutputPolicy decides when a hypocenter's current state should actually
// be reported to the outside world, as opposed to merely updated
// internally (§4.7). No default policy engine ships: this interface
// documents the collaborator's contract; DelayPublishPolicy below is a
// reference/example implementation, not a production locator.
type OutputPolicy interface {
	// Update records a new or revised hypocenter and reports whether it
	// should be published now.
	Update(rec HypoRecord) (publish bool)
	// Cancel marks id as retracted and reports whether a retraction
	// message should be emitted (only if id had previously been
	// published).
	Cancel(id string) (retract bool)
}

// DelayPublishPolicy publishes a hypocenter only after it has existed,
// unmodified or otherwise, for at least Delay, then republishes only when
// its Version advances. Grounded on the teacher's Publisher: a cache
// keyed by id, consulted and updated under one mutex, exactly the way
// Publisher.addClient/removeClient guard the client map.
type DelayPublishPolicy struct {
	Delay float64 // seconds from CreateTime before first publish
	Now   func() time.Time

	mu    sync.Mutex
	state map[string]hypoState
}

type hypoState struct {
	rec       HypoRecord
	published bool
}

// NewDelayPublishPolicy returns a DelayPublishPolicy with the given delay.
// now defaults to time.Now when nil.
func NewDelayPublishPolicy(delaySec float64, now func() time.Time) *DelayPublishPolicy {
	if now == nil {
		now = time.Now
	}
	return &DelayPublishPolicy{Delay: delaySec, Now: now, state: make(map[string]hypoState)}
}

// Update implements OutputPolicy.
func (p *DelayPublishPolicy) Update(rec HypoRecord) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	prior, exists := p.state[rec.ID]
	if exists && prior.published && rec.Version <= prior.rec.Version {
		p.state[rec.ID] = hypoState{rec: rec, published: true}
		return false
	}

	age := p.Now().Sub(rec.CreateTime).Seconds()
	shouldPublish := age >= p.Delay
	p.state[rec.ID] = hypoState{rec: rec, published: prior.published || shouldPublish}
	return shouldPublish
}

// Cancel implements OutputPolicy.
func (p *DelayPublishPolicy) Cancel(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	prior, exists := p.state[id]
	if !exists || !prior.published {
		delete(p.state, id)
		return false
	}
	delete(p.state, id)
	return true
}
