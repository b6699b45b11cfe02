package sweep_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ms-cinema/internal/sweep"
)

type fakeRunner struct {
	mu      sync.Mutex
	calls   int
	count   int
	err     error
	block   chan struct{}
	started chan struct{}
}

func (f *fakeRunner) RunStatusSweep(ctx context.Context) (int, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	return f.count, f.err
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakePublisher struct {
	mu     sync.Mutex
	counts []int
}

func (f *fakePublisher) PublishSweepCompleted(count int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts = append(f.counts, count)
	return nil
}

func TestRunOnce(t *testing.T) {
	runner := &fakeRunner{count: 4}
	publisher := &fakePublisher{}
	scheduler := sweep.NewScheduler(runner, time.Hour, nil)
	scheduler.Kafka = publisher

	count, ran := scheduler.RunOnce(context.Background())

	assert.True(t, ran)
	assert.Equal(t, 4, count)
	assert.Equal(t, 1, runner.callCount())
	assert.Equal(t, []int{4}, publisher.counts)
}

func TestRunOnce_SkipsWhileSweepInProgress(t *testing.T) {
	runner := &fakeRunner{
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	scheduler := sweep.NewScheduler(runner, time.Hour, nil)

	done := make(chan struct{})
	go func() {
		scheduler.RunOnce(context.Background())
		close(done)
	}()
	<-runner.started

	// Second pass must skip, not queue behind the first
	count, ran := scheduler.RunOnce(context.Background())
	assert.False(t, ran)
	assert.Equal(t, 0, count)

	close(runner.block)
	<-done
	assert.Equal(t, 1, runner.callCount())
}

func TestStart_StopsOnContextCancel(t *testing.T) {
	runner := &fakeRunner{}
	scheduler := sweep.NewScheduler(runner, 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	scheduler.Start(ctx)

	assert.Eventually(t, func() bool {
		return runner.callCount() >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	time.Sleep(30 * time.Millisecond)
	settled := runner.callCount()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, runner.callCount())
}
