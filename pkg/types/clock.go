// Package types provides core clock abstractions for time mocking
package types

import (
	"github.com/coder/quartz"
)

// Clock provides time operations to pools, events and futures.
// Production code uses the real clock; tests inject quartz.NewMock.
type Clock = quartz.Clock

// NewRealClock creates a new real clock
func NewRealClock() Clock {
	return quartz.NewReal()
}

// ClockOrDefault returns clock, or the real clock when clock is nil
func ClockOrDefault(clock Clock) Clock {
	if clock == nil {
		return NewRealClock()
	}
	return clock
}
