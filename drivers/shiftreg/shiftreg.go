// Package shiftreg drives two daisy-chained 74HC595 shift registers
// bit-banged over three GPIO lines.
//
// Datasheet: https://www.ti.com/lit/gpn/sn74hc595
package shiftreg

import (
	"time"

	"iox/core"
)

// Width is the number of outputs in the chain.
const Width = 16

// Minimum pulse timing of the bit-banged protocol.
const (
	ShiftSetup = time.Microsecond
	ShiftPulse = time.Microsecond
	LatchPulse = 5 * time.Microsecond
)

// Device owns the serial data, shift clock and storage clock lines.
type Device struct {
	data         core.Pin
	shiftClock   core.Pin
	storageClock core.Pin
	delay        core.Delay
}

// New returns a device on the given lines. A nil delay uses
// core.SystemDelay.
func New(data, shiftClock, storageClock core.Pin, delay core.Delay) *Device {
	if delay == nil {
		delay = core.SystemDelay
	}
	return &Device{
		data:         data,
		shiftClock:   shiftClock,
		storageClock: storageClock,
		delay:        delay,
	}
}

// Transmit shifts frame out bit 0 first and latches it onto the outputs.
func (d *Device) Transmit(frame uint16) {
	for i := 0; i < Width; i++ {
		d.data.Set(frame&(1<<i) != 0)
		d.delay.Sleep(ShiftSetup)
		d.shiftClock.Set(true)
		d.delay.Sleep(ShiftPulse)
		d.shiftClock.Set(false)
	}

	d.data.Set(false)

	d.storageClock.Set(true)
	d.delay.Sleep(LatchPulse)
	d.storageClock.Set(false)
}

// Clear latches all outputs low.
func (d *Device) Clear() {
	d.Transmit(0)
}
