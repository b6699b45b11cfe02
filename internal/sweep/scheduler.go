package sweep

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ms-cinema/internal/logger"
)

// Runner is the batch entry point of the lifecycle service.
type Runner interface {
	RunStatusSweep(ctx context.Context) (int, error)
}

type Publisher interface {
	PublishSweepCompleted(count int) error
}

// Scheduler triggers the status sweep on a fixed cadence. Overlapping runs
// are skipped rather than queued: the bulk updates are idempotent, so a
// skipped tick is only saved work, never lost work.
type Scheduler struct {
	Service  Runner
	Interval time.Duration
	Logger   *logger.Logger
	Kafka    Publisher

	mu sync.Mutex
}

func NewScheduler(service Runner, interval time.Duration, log *logger.Logger) *Scheduler {
	return &Scheduler{
		Service:  service,
		Interval: interval,
		Logger:   log,
	}
}

// Start launches the sweep loop. It returns immediately; the loop stops when
// ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()

		if s.Logger != nil {
			s.Logger.LogSweep(fmt.Sprintf("status sweep scheduled every %s", s.Interval))
		}

		for {
			select {
			case <-ctx.Done():
				if s.Logger != nil {
					s.Logger.LogSweep("status sweep stopped")
				}
				return
			case <-ticker.C:
				s.RunOnce(ctx)
			}
		}
	}()
}

// RunOnce executes a single sweep pass, guarding against overlap with a
// still-running previous pass. It reports the number of tickets touched and
// whether the pass actually ran.
func (s *Scheduler) RunOnce(ctx context.Context) (int, bool) {
	if !s.mu.TryLock() {
		if s.Logger != nil {
			s.Logger.LogSweep("previous sweep still running, skipping tick")
		}
		return 0, false
	}
	defer s.mu.Unlock()

	count, err := s.Service.RunStatusSweep(ctx)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Error("SWEEP", fmt.Sprintf("sweep failed: %v", err))
		}
		return count, true
	}

	if s.Logger != nil {
		s.Logger.LogSweep(fmt.Sprintf("sweep touched %d ticket(s)", count))
	}
	if s.Kafka != nil {
		if err := s.Kafka.PublishSweepCompleted(count); err != nil && s.Logger != nil {
			s.Logger.Error("KAFKA", fmt.Sprintf("failed to publish sweep event: %v", err))
		}
	}
	return count, true
}
