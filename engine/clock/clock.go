package clock

import (
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Clock wraps a monotonic high-resolution counter and its frequency.
// All conversions go through the frequency captured when the clock was created;
// re-querying the frequency per call can drift slightly between calls, and a
// single captured value keeps every conversion in a session consistent.
type Clock interface {
	// Ticks returns the current raw value of the monotonic counter.
	//
	// Returns:
	//   - int64: the current tick count
	Ticks() int64

	// Micros returns the current counter value converted to microseconds.
	//
	// Returns:
	//   - int64: microseconds since the counter's arbitrary epoch
	Micros() int64

	// WallMicros returns the host wall clock in microseconds since the Unix epoch.
	// Used to express tick-domain predictions in the host's wall-clock domain.
	//
	// Returns:
	//   - int64: wall-clock microseconds
	WallMicros() int64

	// Frequency returns the counter frequency in ticks per second, captured once
	// at clock creation.
	//
	// Returns:
	//   - int64: ticks per second
	Frequency() int64

	// TicksToMicros converts a tick count to microseconds using the captured frequency.
	//
	// Parameters:
	//   - ticks: the tick count to convert
	//
	// Returns:
	//   - int64: the equivalent number of microseconds
	TicksToMicros(ticks int64) int64
}

// TicksToMicros converts ticks of a counter running at freq ticks per second to
// microseconds. The conversion is split into a whole-seconds term and a
// remainder term so it stays exact without overflowing: the counter is
// guaranteed not to roll over within 100 years, so freq is below 2.9*10^9 and
// the remainder product fits comfortably in an int64.
//
// Parameters:
//   - ticks: the tick count to convert
//   - freq: the counter frequency in ticks per second
//
// Returns:
//   - int64: the equivalent number of microseconds, or 0 if freq is not positive
func TicksToMicros(ticks, freq int64) int64 {
	if freq <= 0 {
		return 0
	}
	return ticks/freq*1000000 + ticks%freq*1000000/freq
}

// timerClock is the glfw-timer-backed Clock implementation.
type timerClock struct {
	freq int64
}

var _ Clock = &timerClock{}

// NewTimerClock creates a Clock backed by the GLFW high-resolution timer.
// GLFW must be initialized before calling this; the timer frequency is captured
// once here and reused for every conversion.
//
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#GetTimerFrequency
//
// Returns:
//   - Clock: the timer-backed clock
func NewTimerClock() Clock {
	return &timerClock{
		freq: int64(glfw.GetTimerFrequency()),
	}
}

func (c *timerClock) Ticks() int64 {
	return int64(glfw.GetTimerValue())
}

func (c *timerClock) Micros() int64 {
	return TicksToMicros(c.Ticks(), c.freq)
}

func (c *timerClock) WallMicros() int64 {
	return time.Now().UnixMicro()
}

func (c *timerClock) Frequency() int64 {
	return c.freq
}

func (c *timerClock) TicksToMicros(ticks int64) int64 {
	return TicksToMicros(ticks, c.freq)
}

// ManualClock is a Clock whose counter is advanced by hand. It backs the
// package tests and any host that needs deterministic timing.
type ManualClock struct {
	// CurrentTicks is the value returned by Ticks.
	CurrentTicks int64
	// Freq is the counter frequency in ticks per second.
	Freq int64
	// Wall is the value returned by WallMicros.
	Wall int64
}

var _ Clock = &ManualClock{}

// NewManualClock creates a ManualClock running at the given frequency.
//
// Parameters:
//   - freq: the counter frequency in ticks per second
//
// Returns:
//   - *ManualClock: the manual clock, starting at tick 0
func NewManualClock(freq int64) *ManualClock {
	return &ManualClock{Freq: freq}
}

// Advance moves the counter forward by the given number of ticks.
//
// Parameters:
//   - ticks: the number of ticks to add to the counter
func (c *ManualClock) Advance(ticks int64) {
	c.CurrentTicks += ticks
}

func (c *ManualClock) Ticks() int64 {
	return c.CurrentTicks
}

func (c *ManualClock) Micros() int64 {
	return TicksToMicros(c.CurrentTicks, c.Freq)
}

func (c *ManualClock) WallMicros() int64 {
	return c.Wall
}

func (c *ManualClock) Frequency() int64 {
	return c.Freq
}

func (c *ManualClock) TicksToMicros(ticks int64) int64 {
	return TicksToMicros(ticks, c.Freq)
}
