// Package dispatch provides the single serialized execution context that
// owns all reader state. Work from other goroutines re-enters it through
// Post or Do before touching that state.
package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrStopped is returned when work is submitted to a loop that has exited.
var ErrStopped = errors.New("dispatch loop stopped")

// Loop runs submitted functions one at a time, in submission order.
type Loop struct {
	tasks    chan func()
	stopped  chan struct{}
	stopOnce sync.Once
}

// New creates a loop with the given queue capacity.
func New(queue int) *Loop {
	if queue < 1 {
		queue = 64
	}
	return &Loop{
		tasks:   make(chan func(), queue),
		stopped: make(chan struct{}),
	}
}

// Run executes queued functions until ctx is cancelled or Stop is called.
func (l *Loop) Run(ctx context.Context) error {
	defer l.Stop()
	for {
		select {
		case fn := <-l.tasks:
			fn()
		case <-l.stopped:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Stop terminates the loop. Queued work that has not started is dropped.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stopped) })
}

// Post queues fn without waiting for it. It reports false once the loop
// has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.stopped:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.stopped:
		return false
	}
}

// Do runs fn on the loop and waits for it to return. Do must not be called
// from a function already running on the loop.
//
// A cancelled ctx withdraws fn only while it is still queued. Once fn has
// started, Do waits for it and returns nil, so a non-nil error means fn
// never ran.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	var state atomic.Int32 // taskQueued, taskRunning or taskWithdrawn
	done := make(chan struct{})
	task := func() {
		if !state.CompareAndSwap(taskQueued, taskRunning) {
			return
		}
		defer close(done)
		fn()
	}
	select {
	case l.tasks <- task:
	case <-l.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-l.stopped:
		if state.CompareAndSwap(taskQueued, taskWithdrawn) {
			return ErrStopped
		}
	case <-ctx.Done():
		if state.CompareAndSwap(taskQueued, taskWithdrawn) {
			return ctx.Err()
		}
	}
	<-done
	return nil
}

const (
	taskQueued int32 = iota
	taskRunning
	taskWithdrawn
)
