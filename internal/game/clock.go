package game

import "time"

// Clock supplies monotonic wall-clock time.
//
// Two time sources coexist in the simulation: durations and
// cooldowns count down by frame delta (they pause with the loop), while
// periodic status ticks are gated on Clock.Now so damage cadence does not
// depend on frame rate.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }
