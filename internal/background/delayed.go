package background

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DelayedTask runs one function after a delay unless it is cancelled first.
// Scheduling again replaces any pending run.
type DelayedTask struct {
	name    string
	logger  *slog.Logger
	mu      sync.Mutex
	stopCh  chan struct{}
	pending bool
	wg      sync.WaitGroup
}

func NewDelayedTask(name string, logger *slog.Logger) *DelayedTask {
	return &DelayedTask{
		name:   name,
		logger: logger,
	}
}

// Schedule runs fn after delay. ctx cancellation aborts the pending run.
func (t *DelayedTask) Schedule(ctx context.Context, delay time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()

	stopCh := make(chan struct{})
	t.stopCh = stopCh
	t.pending = true

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-stopCh:
			t.logger.Debug("delayed task cancelled", slog.String("task", t.name))
			return
		case <-ctx.Done():
			t.logger.Debug("delayed task context cancelled", slog.String("task", t.name))
			t.finish(stopCh)
			return
		}

		if !t.finish(stopCh) {
			return
		}
		fn()
	}()
}

// finish clears the pending flag if stopCh still belongs to the current run
func (t *DelayedTask) finish(stopCh chan struct{}) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopCh != stopCh {
		return false
	}
	t.stopCh = nil
	t.pending = false
	return true
}

// Pending reports whether a run is scheduled and has not fired yet
func (t *DelayedTask) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}

// Cancel drops the pending run, if any
func (t *DelayedTask) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *DelayedTask) stopLocked() {
	if t.stopCh != nil {
		close(t.stopCh)
		t.stopCh = nil
	}
	t.pending = false
}

// Stop cancels the pending run and waits for its goroutine to exit
func (t *DelayedTask) Stop() {
	t.Cancel()
	t.wg.Wait()
}
