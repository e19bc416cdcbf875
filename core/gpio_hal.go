package core

// Pin is a single digital output line.
// TinyGo's machine.Pin satisfies it once configured as an output.
type Pin interface {
	// Set drives the line high (true) or low (false)
	Set(high bool)
}

// PinFunc adapts a plain function to the Pin interface.
type PinFunc func(high bool)

// Set calls f(high)
func (f PinFunc) Set(high bool) {
	f(high)
}
