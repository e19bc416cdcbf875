package core

import "time"

// Timer frequency of the RP2040 microsecond timer
const (
	TimerFreq = 1000000 // 1MHz
)

var clockSource func() uint32

// Delay is the monotonic wait primitive used by the drivers.
// Implementations must sleep for at least d.
type Delay interface {
	Sleep(d time.Duration)
}

// DelayFunc adapts a function to the Delay interface
type DelayFunc func(d time.Duration)

// Sleep calls f(d)
func (f DelayFunc) Sleep(d time.Duration) {
	f(d)
}

// SystemDelay sleeps using time.Sleep. On TinyGo this yields to other
// goroutines while waiting.
var SystemDelay Delay = DelayFunc(time.Sleep)

// SetClockSource registers the hardware tick counter.
// Without one, GetTime returns the value last stored with SetTime.
func SetClockSource(fn func() uint32) {
	clockSource = fn
}

// GetTime returns the current system time in timer ticks
func GetTime() uint32 {
	if clockSource != nil {
		return clockSource()
	}
	return getSystemTicks()
}

// SetTime sets the current system time (for testing/hardware integration)
func SetTime(ticks uint32) {
	setSystemTicks(ticks)
}

// TimerFromMS converts milliseconds to timer ticks
func TimerFromMS(ms uint32) uint32 {
	return uint32(uint64(ms) * TimerFreq / 1000)
}

// ProcessTimers runs every timer that is due at the current time
func ProcessTimers() {
	currentTime = GetTime()
	TimerDispatch()
}
