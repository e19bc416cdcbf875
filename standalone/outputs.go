package standalone

import (
	"errors"

	"iox/core"
	"iox/drivers/shiftreg"
)

// Pulser walks a list of shift register outputs, pulsing one per step and
// toggling the status LED.
type Pulser struct {
	reg     *shiftreg.ShiftRegister
	led     *shiftreg.DeferredPin
	outputs []int
	next    int
}

// NewPulser returns a pulser over outputs. led may be nil.
func NewPulser(reg *shiftreg.ShiftRegister, led *shiftreg.DeferredPin, outputs ...int) (*Pulser, error) {
	if len(outputs) == 0 {
		return nil, errors.New("no outputs to pulse")
	}
	for _, o := range outputs {
		if o < 0 || o >= shiftreg.Width {
			return nil, shiftreg.ErrIndexOutOfRange
		}
	}
	return &Pulser{reg: reg, led: led, outputs: outputs}, nil
}

// Step latches the next output high until the following step. The LED is
// low on even steps and high on odd ones.
func (p *Pulser) Step() {
	if p.led != nil {
		p.led.Set(p.next%2 == 1)
		p.led.Flush()
	}
	_ = p.reg.Set(p.outputs[p.next], true)
	p.reg.FlushThenClear()
	p.next = (p.next + 1) % len(p.outputs)
}

// Glow ramps the B duty of a PWM slice from zero to a ceiling and starts
// over.
type Glow struct {
	out     *core.PWMOutput
	counter int
	steps   int
}

// NewGlow ramps out in tenth-percent steps up to maxDuty percent.
func NewGlow(out *core.PWMOutput, maxDuty float32) *Glow {
	return &Glow{out: out, steps: int(maxDuty * 10)}
}

// Step advances the ramp by one tenth of a percent.
func (g *Glow) Step() error {
	g.counter++
	if g.counter > g.steps {
		g.counter = 0
	}
	return g.out.SetDutyCycleB(float32(g.counter) / 10)
}

// Duty returns the duty last applied in percent.
func (g *Glow) Duty() float32 {
	return float32(g.counter) / 10
}
