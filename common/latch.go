package common

import (
	"sync"
	"time"
)

// Latch based on channels that can be waited/selected on.
// It's considered triggered once the underlying channel is closed.
type Latch struct {
	mu        sync.Mutex
	wait      chan struct{}
	triggered bool
}

// NewLatch returns an un-triggered latch.
func NewLatch() *Latch {
	return &Latch{wait: make(chan struct{})}
}

// Trigger the latch, releasing anyone waiting on it. Triggering twice is a no-op.
func (l *Latch) Trigger() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.triggered {
		return
	}
	l.triggered = true
	close(l.wait)
}

// Wait until the latch is triggered.
func (l *Latch) Wait() {
	<-l.wait
}

// WaitChan returns the channel that is closed when the latch is triggered.
func (l *Latch) WaitChan() <-chan struct{} {
	return l.wait
}

// WaitTimeout returns true if the latch was triggered. If timeout is expired, returns false.
func (l *Latch) WaitTimeout(timeout time.Duration) bool {
	select {
	case <-l.wait:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Test returns whether the latch has already been triggered.
func (l *Latch) Test() bool {
	select {
	case <-l.wait:
		return true
	default:
		return false
	}
}
