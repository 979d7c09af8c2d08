package workpool

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/usgs/neic-glass3-sub001/internal/timeutil"
)

type fakeInspectable struct {
	mu     sync.Mutex
	depth  int
	active int64
}

func (f *fakeInspectable) set(depth int, active int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.depth, f.active = depth, active
}

func (f *fakeInspectable) QueueDepth() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.depth
}

func (f *fakeInspectable) ActiveJobs() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active
}

func TestSupervisorReportsStallAfterTwoConsecutiveSamples(t *testing.T) {
	insp := &fakeInspectable{}
	clock := timeutil.NewMockClock(time.Unix(0, 0))

	var mu sync.Mutex
	var stalls int
	sup := NewSupervisor(insp, time.Second, clock, func(depth int) {
		mu.Lock()
		stalls++
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sup.Run(ctx)

	insp.set(5, 0)
	// Give the goroutine a moment to register the ticker before advancing.
	time.Sleep(5 * time.Millisecond)
	clock.Advance(time.Second)
	time.Sleep(5 * time.Millisecond)
	clock.Advance(time.Second)
	time.Sleep(5 * time.Millisecond)

	mu.Lock()
	got := stalls
	mu.Unlock()
	if got == 0 {
		t.Fatal("supervisor did not report a stall after two consecutive stalled samples")
	}
}

func TestSupervisorDoesNotReportWhenJobsAreActive(t *testing.T) {
	insp := &fakeInspectable{}
	clock := timeutil.NewMockClock(time.Unix(0, 0))

	var mu sync.Mutex
	var stalls int
	sup := NewSupervisor(insp, time.Second, clock, func(depth int) {
		mu.Lock()
		stalls++
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sup.Run(ctx)

	insp.set(5, 1)
	time.Sleep(5 * time.Millisecond)
	clock.Advance(time.Second)
	time.Sleep(5 * time.Millisecond)
	clock.Advance(time.Second)
	time.Sleep(5 * time.Millisecond)

	mu.Lock()
	got := stalls
	mu.Unlock()
	if got != 0 {
		t.Fatalf("supervisor reported a stall while a job was active: %d reports", got)
	}
}
