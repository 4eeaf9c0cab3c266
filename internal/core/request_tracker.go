package core

import (
	"log"
	"sync"
	"time"
)

// RequestTracker counts in-flight bridge invocations so shutdown can drain them.
// Every GracefulShutdown waits on its own drain channel, so invocations that
// outlive a timed-out shutdown can still finish after Reopen.
type RequestTracker struct {
	mu         sync.Mutex
	active     int64
	isShutdown bool
	drained    chan struct{}
}

func NewRequestTracker() *RequestTracker {
	return &RequestTracker{}
}

// Add registers an invocation. Returns false once shutdown has begun.
func (t *RequestTracker) Add() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.isShutdown {
		return false
	}
	t.active++
	return true
}

// Done marks an invocation as finished
func (t *RequestTracker) Done() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.active--
	if !t.isShutdown {
		return
	}
	log.Printf("[RequestTracker] Invocation completed, %d remaining", t.active)
	if t.active == 0 && t.drained != nil {
		close(t.drained)
		t.drained = nil
	}
}

// ActiveCount returns the current number of in-flight invocations
func (t *RequestTracker) ActiveCount() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// IsShuttingDown returns true if shutdown has been initiated
func (t *RequestTracker) IsShuttingDown() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.isShutdown
}

// Reopen accepts invocations again after a shutdown, finished or timed out
func (t *RequestTracker) Reopen() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.isShutdown = false
	t.drained = nil
}

// GracefulShutdown rejects new invocations and waits up to maxWait for active ones.
// Returns true if everything finished in time.
func (t *RequestTracker) GracefulShutdown(maxWait time.Duration) bool {
	t.mu.Lock()
	t.isShutdown = true
	active := t.active
	if active == 0 {
		t.mu.Unlock()
		log.Printf("[RequestTracker] No active invocations, shutdown immediate")
		return true
	}
	if t.drained == nil {
		t.drained = make(chan struct{})
	}
	drained := t.drained
	t.mu.Unlock()

	log.Printf("[RequestTracker] Graceful shutdown initiated, waiting for %d active invocations", active)

	select {
	case <-drained:
		log.Printf("[RequestTracker] All invocations completed, shutdown clean")
		return true
	case <-time.After(maxWait):
		log.Printf("[RequestTracker] Timeout reached, %d invocations still active, forcing shutdown", t.ActiveCount())
		return false
	}
}
