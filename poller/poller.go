// Package poller provides the single cancellable recurring-task primitive
// shared by the scan lifecycle controller and the auto-scan scheduler, so no
// ad hoc timer can outlive its owner.
package poller

import (
	"sync"
	"time"
)

// Task is one recurring job. Ticks never overlap: the function runs inline in
// the loop goroutine, so a slow run simply delays the next tick.
type Task struct {
	mu     sync.Mutex
	stop   chan struct{}
	active bool
}

// Start launches fn on the given interval. fn returning false terminates the
// task from the inside (self-cancel on a terminal condition). The first run
// happens after one interval, not immediately.
func Start(interval time.Duration, fn func() bool) *Task {
	t := &Task{
		stop:   make(chan struct{}),
		active: true,
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-ticker.C:
				if !fn() {
					t.mu.Lock()
					if t.active {
						t.active = false
						close(t.stop)
					}
					t.mu.Unlock()
					return
				}
			}
		}
	}()
	return t
}

// Stop cancels the task. Safe to call multiple times and after self-cancel.
// A run already in flight finishes, but Active reports false immediately so
// the run can discard its own result.
func (t *Task) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.active {
		return
	}
	t.active = false
	close(t.stop)
}

// Active reports whether the task is still scheduled.
func (t *Task) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Done exposes the stop channel for callers that select on teardown.
func (t *Task) Done() <-chan struct{} {
	return t.stop
}
