// Package api exposes the nucleation core's debug/admin HTTP surface
// (§4.9): a tsweb debugger root, a read-only tailsql browser over
// internal/db, and a go-echarts scatter of recent triggers for eyeballing
// nucleation activity without a full operator UI.
package api

import (
	"context"
	"sync"
	"time"

	"github.com/usgs/neic-glass3-sub001/internal/trigger"
)

// RecordedTrigger is a trigger.Trigger stamped with the time it was
// forwarded, for ordering and windowing in the dashboard.
type RecordedTrigger struct {
	trigger.Trigger
	RecordedAt time.Time
}

// TriggerRecorder is a worked example of the trigger.Forwarder
// collaborator (§4.6 Non-goals: no production locator ships here): it
// keeps the last Capacity triggers in memory for the diagnostic
// dashboard and otherwise does nothing — forwarding to a real external
// locator is out of scope. Grounded on pick.Ring's
// append-then-trim-from-the-front idiom, generalized to trigger.Trigger.
type TriggerRecorder struct {
	Capacity int

	mu       sync.Mutex
	recorded []RecordedTrigger
	now      func() time.Time
}

// NewTriggerRecorder returns a recorder holding up to capacity triggers.
func NewTriggerRecorder(capacity int) *TriggerRecorder {
	if capacity <= 0 {
		capacity = 500
	}
	return &TriggerRecorder{Capacity: capacity, now: time.Now}
}

// Forward implements trigger.Forwarder.
func (r *TriggerRecorder) Forward(ctx context.Context, t trigger.Trigger) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recorded = append(r.recorded, RecordedTrigger{Trigger: t, RecordedAt: r.now()})
	if len(r.recorded) > r.Capacity {
		r.recorded = r.recorded[len(r.recorded)-r.Capacity:]
	}
	return nil
}

// Recent returns a snapshot of every currently retained trigger, oldest
// first.
func (r *TriggerRecorder) Recent() []RecordedTrigger {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RecordedTrigger, len(r.recorded))
	copy(out, r.recorded)
	return out
}

var _ trigger.Forwarder = (*TriggerRecorder)(nil)
