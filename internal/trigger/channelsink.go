package trigger

import (
	"context"
	"log"
	"sync"

	"github.com/usgs/neic-glass3-sub001/internal/glasserr"
)

// ChannelSink is the default Sink: a bounded channel plus a consumer
// goroutine that hands triggers to a Forwarder (the external locator, per
// §4.6 Non-goals — never implemented here). Grounded on the teacher's
// Publisher.Publish/broadcastLoop pair: a non-blocking send into a
// buffered channel, drained by one long-running goroutine.
type ChannelSink struct {
	ch        chan Trigger
	forward   Forwarder
	stopCh    chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
}

// Forwarder is the collaborator a ChannelSink drains into. Implementations
// live outside this module (the "external locator").
type Forwarder interface {
	Forward(ctx context.Context, t Trigger) error
}

// NewChannelSink returns a ChannelSink with the given queue capacity. Call
// Start to begin draining; Dispatch before Start only fills the buffer.
func NewChannelSink(capacity int, fwd Forwarder) *ChannelSink {
	if capacity <= 0 {
		capacity = 100
	}
	return &ChannelSink{
		ch:      make(chan Trigger, capacity),
		forward: fwd,
		stopCh:  make(chan struct{}),
	}
}

// Start launches the drain loop. Calling Start more than once is a no-op.
func (s *ChannelSink) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		s.wg.Add(1)
		go s.drain(ctx)
	})
}

// Stop signals the drain loop to exit and waits for it to finish.
func (s *ChannelSink) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

func (s *ChannelSink) drain(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case t := <-s.ch:
			if err := s.forward.Forward(ctx, t); err != nil {
				log.Printf("trigger: forward failed for web %q origin %v: %v", t.WebName, t.OriginTime, err)
			}
		}
	}
}

// DispatchTrigger implements Sink. It never blocks: a full queue returns a
// *glasserr.TransientIO immediately, matching the Publisher's drop-on-full
// behavior but surfacing it to the caller instead of only logging it.
func (s *ChannelSink) DispatchTrigger(ctx context.Context, t Trigger) error {
	select {
	case s.ch <- t:
		return nil
	default:
		return &glasserr.TransientIO{Op: "trigger.ChannelSink.Dispatch"}
	}
}
