package workpool

import (
	"context"
	"log"
	"time"

	"github.com/usgs/neic-glass3-sub001/internal/timeutil"
)

// Inspectable is the subset of Pool a Supervisor polls. Pool satisfies it
// directly; tests substitute a fake to drive the supervisor without a
// real pool.
type Inspectable interface {
	ActiveJobs() int64
	QueueDepth() int
}

// Supervisor periodically samples a pool's queue depth and active-job
// count, logging when the queue appears stuck (queued jobs but no active
// job on consecutive samples). It uses timeutil.Clock instead of time.Ticker
// directly so its poll loop stays unit-testable with a MockClock, the
// way the teacher's UDPListener.startStatsLogging is exercised against a
// real ticker only in integration tests.
type Supervisor struct {
	pool     Inspectable
	interval time.Duration
	clock    timeutil.Clock
	onStall  func(queueDepth int)
}

// NewSupervisor returns a Supervisor polling pool every interval. onStall,
// if non-nil, is invoked (instead of the default log.Printf) whenever the
// queue is non-empty but no job is active for two consecutive samples.
func NewSupervisor(pool Inspectable, interval time.Duration, clock timeutil.Clock, onStall func(queueDepth int)) *Supervisor {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Supervisor{pool: pool, interval: interval, clock: clock, onStall: onStall}
}

// Run blocks, polling until ctx is cancelled.
func (s *Supervisor) Run(ctx context.Context) {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	stalledStreak := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			depth := s.pool.QueueDepth()
			active := s.pool.ActiveJobs()
			if depth > 0 && active == 0 {
				stalledStreak++
			} else {
				stalledStreak = 0
			}
			if stalledStreak >= 2 {
				if s.onStall != nil {
					s.onStall(depth)
				} else {
					log.Printf("workpool: queue depth %d with no active workers for %d consecutive checks", depth, stalledStreak)
				}
			}
		}
	}
}
