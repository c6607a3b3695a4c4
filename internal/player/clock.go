package player

import "time"

// Clock defines an interface for getting the current time.
// This allows us to inject a fake time during unit tests.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the actual server system time.
type RealClock struct{}

func (c RealClock) Now() time.Time {
	return time.Now()
}

// MockClock implements Clock for testing specific scenarios.
type MockClock struct {
	MockTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.MockTime
}

// ---------------------------------------------------------
// One-shot timers
// ---------------------------------------------------------

// Timer is a cancellable one-shot. Stop reports whether the cancel won the
// race against the callback.
type Timer interface {
	Stop() bool
}

// Timers arms one-shot callbacks. The player only ever holds one live
// timer; tests swap in a manual implementation and fire it by hand instead
// of sleeping.
type Timers interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// RealTimers backs Timers with the runtime timer wheel.
type RealTimers struct{}

func (RealTimers) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
