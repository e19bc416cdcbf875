// PWM timing quantization
// Maps a frequency request and two duty cycles onto the integer divider,
// top and compare values a PWM slice understands.
package core

import "github.com/chewxy/math32"

// ReferenceClockHz is the system clock feeding the PWM slices
const ReferenceClockHz = 125_000_000

// PWMTopMax is the largest value the 16-bit slice counter can wrap at
const PWMTopMax = 0xFFFF

// PWMTiming is what gets written to a slice.
// Top is the counter period in divided clock ticks, at most PWMTopMax.
// Frequencies below about 8Hz at the 255 divider run at the slowest period
// the counter allows.
type PWMTiming struct {
	Divider      uint8
	Top          uint32
	CompareA     uint16
	CompareB     uint16
	PhaseCorrect bool
}

// PWMDivider picks the integer clock divider for freq.
// The choice depends only on the frequency range.
func PWMDivider(freq uint32) uint8 {
	switch {
	case freq >= 2000:
		return 1
	case freq >= 200:
		return 10
	case freq >= 20:
		return 100
	case freq >= 10:
		return 200
	default:
		return 255
	}
}

// PWMTop returns refClock/(freq*div) - 1, halved for phase correct
// (up-down) counting. It is 0 when freq*div exceeds refClock. freq must not
// be zero.
func PWMTop(freq, refClock uint32, div uint8, phaseCorrect bool) uint32 {
	ticks := refClock / freq / uint32(div)
	if ticks == 0 {
		return 0
	}
	top := ticks - 1
	if phaseCorrect {
		top /= 2
	}
	return top
}

// PWMCompare converts a duty cycle in percent to a compare value for top.
// Duty is clamped to 0..100.
func PWMCompare(duty float32, top uint32) uint16 {
	if !(duty > 0) {
		return 0
	}
	if duty > 100 {
		duty = 100
	}
	cc := math32.Round(duty / 100 * float32(top))
	if cc > 0xFFFF {
		return 0xFFFF
	}
	return uint16(cc)
}

// QuantizePWM computes the slice timing for freq against ReferenceClockHz.
// Both channels share divider and top; only the compare values differ.
// Top is clamped to PWMTopMax before the compare values are derived from it.
// freq must not be zero.
func QuantizePWM(freq uint32, dutyA, dutyB float32, phaseCorrect bool) PWMTiming {
	div := PWMDivider(freq)
	top := min(PWMTop(freq, ReferenceClockHz, div, phaseCorrect), PWMTopMax)

	return PWMTiming{
		Divider:      div,
		Top:          top,
		CompareA:     PWMCompare(dutyA, top),
		CompareB:     PWMCompare(dutyB, top),
		PhaseCorrect: phaseCorrect,
	}
}

// ActualFrequency returns the output frequency timing really produces
func (t PWMTiming) ActualFrequency() uint32 {
	period := (t.Top + 1) * uint32(t.Divider)
	if t.PhaseCorrect {
		period *= 2
	}
	if period == 0 {
		return 0
	}
	return ReferenceClockHz / period
}

// PWMOutput is one slice with its two channels
type PWMOutput struct {
	driver       PWMDriver
	slice        PWMSlice
	frequency    uint32
	dutyA        float32
	dutyB        float32
	phaseCorrect bool
	timing       PWMTiming
}

// NewPWMOutput programs slice with the given frequency and duty cycles.
// frequency must not be zero.
func NewPWMOutput(driver PWMDriver, slice PWMSlice, frequency uint32, dutyA, dutyB float32) (*PWMOutput, error) {
	p := &PWMOutput{
		driver:    driver,
		slice:     slice,
		frequency: frequency,
		dutyA:     dutyA,
		dutyB:     dutyB,
	}
	if err := p.update(); err != nil {
		return nil, err
	}
	return p, nil
}

// SetFrequency changes the slice period; frequency must not be zero
func (p *PWMOutput) SetFrequency(frequency uint32) error {
	p.frequency = frequency
	return p.update()
}

// SetDutyCycleA sets channel A duty in percent
func (p *PWMOutput) SetDutyCycleA(duty float32) error {
	p.dutyA = duty
	return p.update()
}

// SetDutyCycleB sets channel B duty in percent
func (p *PWMOutput) SetDutyCycleB(duty float32) error {
	p.dutyB = duty
	return p.update()
}

// SetPhaseCorrect switches between up and up-down counting
func (p *PWMOutput) SetPhaseCorrect(on bool) error {
	p.phaseCorrect = on
	return p.update()
}

// Timing returns the values last written to the slice
func (p *PWMOutput) Timing() PWMTiming {
	return p.timing
}

// Disable stops the slice
func (p *PWMOutput) Disable() error {
	return p.driver.DisableSlice(p.slice)
}

func (p *PWMOutput) update() error {
	p.timing = QuantizePWM(p.frequency, p.dutyA, p.dutyB, p.phaseCorrect)
	return p.driver.ConfigureSlice(p.slice, p.timing)
}
