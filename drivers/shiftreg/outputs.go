package shiftreg

import (
	"errors"

	"iox/core"
)

// ErrIndexOutOfRange is returned for an output index outside 0-15.
var ErrIndexOutOfRange = errors.New("shiftreg: output index out of range")

// Outputs is a frame of pending output levels. Index 0 is shifted first.
type Outputs [Width]bool

// Set sets output index to v.
func (o *Outputs) Set(index int, v bool) error {
	if index < 0 || index >= Width {
		return ErrIndexOutOfRange
	}
	o[index] = v
	return nil
}

// Get returns the level of output index.
func (o *Outputs) Get(index int) (bool, error) {
	if index < 0 || index >= Width {
		return false, ErrIndexOutOfRange
	}
	return o[index], nil
}

// Clear sets every output low.
func (o *Outputs) Clear() {
	*o = Outputs{}
}

// Value packs the frame with output i at bit i.
func (o *Outputs) Value() uint16 {
	var v uint16
	for i, on := range o {
		if on {
			v |= 1 << i
		}
	}
	return v
}

// ShiftRegister buffers output changes and sends them to a Device on Flush.
type ShiftRegister struct {
	out Outputs
	dev *Device
}

// NewShiftRegister returns a ShiftRegister with every output low. Nothing is
// sent until the first flush.
func NewShiftRegister(dev *Device) *ShiftRegister {
	return &ShiftRegister{dev: dev}
}

func (s *ShiftRegister) Set(index int, v bool) error {
	return s.out.Set(index, v)
}

func (s *ShiftRegister) SetAll(v bool) {
	for i := range s.out {
		s.out[i] = v
	}
}

// Clear drops pending levels without touching the hardware.
func (s *ShiftRegister) Clear() {
	s.out.Clear()
}

// Flush latches the pending frame.
func (s *ShiftRegister) Flush() {
	s.dev.Transmit(s.out.Value())
}

// FlushThenClear latches the pending frame and then empties it, so outputs
// set since the last flush act as a one-shot pulse held until the next
// flush.
func (s *ShiftRegister) FlushThenClear() {
	s.Flush()
	s.Clear()
}

// ClearThenFlush empties the frame and latches all outputs low.
func (s *ShiftRegister) ClearThenFlush() {
	s.Clear()
	s.Flush()
}

// Outputs returns a copy of the pending frame.
func (s *ShiftRegister) Outputs() Outputs {
	return s.out
}

// DeferredPin buffers a level for a directly driven GPIO and applies it on
// Flush, matching the ShiftRegister flush cycle.
type DeferredPin struct {
	pin   core.Pin
	level bool
}

func NewDeferredPin(pin core.Pin) *DeferredPin {
	return &DeferredPin{pin: pin}
}

func (p *DeferredPin) Set(v bool) { p.level = v }

func (p *DeferredPin) Level() bool { return p.level }

func (p *DeferredPin) Flush() { p.pin.Set(p.level) }
