package core

// PWMSlice identifies one hardware PWM timing unit. Both channels of a
// slice share the divider and the counter period.
type PWMSlice uint8

// PWMDriver is the abstract PWM interface that core code uses.
// Platform-specific implementations handle actual hardware control.
type PWMDriver interface {
	// ConfigureSlice programs divider, top and both compare values of a
	// slice and enables it. The new period takes effect atomically.
	ConfigureSlice(slice PWMSlice, timing PWMTiming) error

	// DisableSlice stops the slice counter and drives both outputs low
	DisableSlice(slice PWMSlice) error
}
