package trigger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingForwarder struct {
	mu  sync.Mutex
	got []Trigger
}

func (f *recordingForwarder) Forward(ctx context.Context, t Trigger) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, t)
	return nil
}

func (f *recordingForwarder) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.got)
}

type erroringForwarder struct{}

func (erroringForwarder) Forward(ctx context.Context, t Trigger) error {
	return errors.New("downstream rejected")
}

func TestChannelSinkDispatchAndDrain(t *testing.T) {
	fwd := &recordingForwarder{}
	sink := NewChannelSink(4, fwd)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sink.Start(ctx)
	defer sink.Stop()

	if err := sink.DispatchTrigger(ctx, Trigger{WebName: "test"}); err != nil {
		t.Fatalf("DispatchTrigger: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for fwd.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if fwd.count() != 1 {
		t.Fatalf("forwarder received %d triggers, want 1", fwd.count())
	}
}

func TestChannelSinkReturnsTransientIOWhenFull(t *testing.T) {
	sink := NewChannelSink(1, erroringForwarder{})
	ctx := context.Background()
	if err := sink.DispatchTrigger(ctx, Trigger{}); err != nil {
		t.Fatalf("first dispatch: %v", err)
	}
	err := sink.DispatchTrigger(ctx, Trigger{})
	if err == nil {
		t.Fatal("expected TransientIO on a full, undrained queue")
	}
}

func TestChannelSinkStopStopsDrain(t *testing.T) {
	fwd := &recordingForwarder{}
	sink := NewChannelSink(4, fwd)
	sink.Start(context.Background())
	sink.Stop()
	// Dispatch after Stop should not panic; the drain loop has exited so
	// nothing consumes it, but the buffered channel still accepts up to
	// its capacity.
	if err := sink.DispatchTrigger(context.Background(), Trigger{}); err != nil {
		t.Fatalf("DispatchTrigger after Stop: %v", err)
	}
}
