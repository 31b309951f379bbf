// Package clock abstracts time for components that schedule or expire work.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Fixed is a clock pinned to a settable instant, for tests.
type Fixed struct {
	At time.Time
}

// Now returns the pinned instant.
func (f *Fixed) Now() time.Time { return f.At }

// Advance moves the pinned instant forward.
func (f *Fixed) Advance(d time.Duration) { f.At = f.At.Add(d) }
