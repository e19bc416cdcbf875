//go:build rp2040

package main

import (
	"errors"
	"runtime/volatile"
	"unsafe"

	"iox/core"
)

// RP2040 PWM peripheral
const (
	pwmBase       = 0x40050000
	pwmSliceSize  = 0x14
	pwmSliceCount = 8

	pwmCSR = 0x00
	pwmDIV = 0x04
	pwmCTR = 0x08
	pwmCC  = 0x0C
	pwmTOP = 0x10

	pwmCSREnable       = 1 << 0
	pwmCSRPhaseCorrect = 1 << 1
	pwmDIVIntShift     = 4
)

var errBadSlice = errors.New("pwm slice out of range")

// PWMDriver programs the slices directly. Divider, top and both compare
// values come from core.QuantizePWM, which keeps top within the counter.
type PWMDriver struct{}

func pwmRegister(slice core.PWMSlice, offset uintptr) *volatile.Register32 {
	return (*volatile.Register32)(unsafe.Pointer(uintptr(pwmBase) + uintptr(slice)*pwmSliceSize + offset))
}

// ConfigureSlice writes divider, top and compare values and enables slice.
// The counter is stopped while the period changes.
func (PWMDriver) ConfigureSlice(slice core.PWMSlice, t core.PWMTiming) error {
	if slice >= pwmSliceCount {
		return errBadSlice
	}
	csr := pwmRegister(slice, pwmCSR)
	csr.ClearBits(pwmCSREnable)
	pwmRegister(slice, pwmDIV).Set(uint32(t.Divider) << pwmDIVIntShift)
	pwmRegister(slice, pwmTOP).Set(t.Top)
	pwmRegister(slice, pwmCC).Set(uint32(t.CompareB)<<16 | uint32(t.CompareA))

	mode := uint32(pwmCSREnable)
	if t.PhaseCorrect {
		mode |= pwmCSRPhaseCorrect
	}
	csr.Set(mode)
	return nil
}

// DisableSlice stops the counter with both outputs low.
func (PWMDriver) DisableSlice(slice core.PWMSlice) error {
	if slice >= pwmSliceCount {
		return errBadSlice
	}
	pwmRegister(slice, pwmCC).Set(0)
	pwmRegister(slice, pwmCSR).ClearBits(pwmCSREnable)
	pwmRegister(slice, pwmCTR).Set(0)
	return nil
}
