// Package common provides small shared helpers.
package common

import (
	"fmt"
	"time"
)

// Timer measures one named operation.
type Timer struct {
	name     string
	start    time.Time
	duration time.Duration
	stopped  bool
}

// NewNamedTimer starts a timer for the named operation.
func NewNamedTimer(name string) *Timer {
	return &Timer{name: name, start: time.Now()}
}

// Stop records the elapsed time. Only the first call has an effect.
func (t *Timer) Stop() time.Duration {
	if !t.stopped {
		t.duration = time.Since(t.start)
		t.stopped = true
	}
	return t.duration
}

// Duration returns the recorded duration, or the running time if the timer
// has not been stopped yet.
func (t *Timer) Duration() time.Duration {
	if !t.stopped {
		return time.Since(t.start)
	}
	return t.duration
}

// Milliseconds returns Duration in fractional milliseconds.
func (t *Timer) Milliseconds() float64 {
	return float64(t.Duration().Microseconds()) / 1000
}

// Name returns the timer name.
func (t *Timer) Name() string {
	return t.name
}

func (t *Timer) String() string {
	if t.name != "" {
		return fmt.Sprintf("%s: %v", t.name, t.Duration())
	}
	return t.Duration().String()
}
