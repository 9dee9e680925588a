// Package sidelink implements the LTE Release-14 Mode 4 sidelink MAC-layer
// control core: semi-persistent scheduling of grants and the per-TTI
// transmission scheduler that drives them.
package sidelink

import "fmt"

// Clock is a count of Transmission Time Intervals (TTIs). One Clock unit
// equals one TTI (1ms) of simulated MAC time.
type Clock int64

// TTI is the duration, in Clock units, of one Transmission Time Interval.
const TTI Clock = 1

// ClockInfinity is a sentinel for "never".
const ClockInfinity = Clock(1<<63 - 1)

// String implements fmt.Stringer.
func (c Clock) String() string {
	return fmt.Sprintf("%dms", int64(c))
}

// Before reports whether c occurs strictly before other.
func (c Clock) Before(other Clock) bool {
	return c < other
}
