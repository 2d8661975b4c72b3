// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package matcher

import "time"

// Timer is a handle to a scheduled callback.
type Timer interface {
	// Stop prevents the callback from running if it has not started yet.
	// It reports whether the call stopped the timer.
	Stop() bool
}

// Clock schedules callbacks after a delay. Tests substitute a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemClock schedules callbacks with time.AfterFunc.
type SystemClock struct{}

// AfterFunc runs f on its own goroutine after d.
func (SystemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
