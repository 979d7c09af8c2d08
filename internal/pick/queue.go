package pick

import (
	"context"

	"github.com/usgs/neic-glass3-sub001/internal/glasserr"
)

// Queue is the bounded hand-off channel between the ingest stage and the
// nucleation pool (§6 "Nucleation pool ... pop from the pick queue"),
// grounded on trigger.ChannelSink's buffered-channel-plus-select shape.
// Unlike List (a snapshot cache the nucleator scans repeatedly), a Queue
// entry is consumed exactly once.
type Queue struct {
	ch chan *Pick
}

// NewQueue returns an empty Queue with the given capacity.
func NewQueue(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{ch: make(chan *Pick, capacity)}
}

// Push enqueues p without blocking. It returns a *glasserr.TransientIO if
// the queue is full, matching ChannelSink.DispatchTrigger's backpressure
// contract (§6 "ingest throttles when Len() >= Cap()").
func (q *Queue) Push(p *Pick) error {
	select {
	case q.ch <- p:
		return nil
	default:
		return &glasserr.TransientIO{Op: "pick.Queue.Push"}
	}
}

// Pop blocks until a pick is available or ctx is done. The second return
// value is false only when ctx ended the wait.
func (q *Queue) Pop(ctx context.Context) (*Pick, bool) {
	select {
	case p := <-q.ch:
		return p, true
	case <-ctx.Done():
		return nil, false
	}
}

// Len reports the number of picks currently queued.
func (q *Queue) Len() int { return len(q.ch) }

// Cap reports the queue's configured capacity.
func (q *Queue) Cap() int { return cap(q.ch) }

// Full reports whether the queue is at capacity.
func (q *Queue) Full() bool { return len(q.ch) >= cap(q.ch) }
