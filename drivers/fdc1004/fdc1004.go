// Package fdc1004 provides a driver for the FDC1004 4-channel
// capacitance-to-digital converter by TI.
//
// Datasheet: https://www.ti.com/lit/gpn/fdc1004
package fdc1004

import (
	"errors"

	"iox/core"
)

// Address is the fixed I2C address of the FDC1004.
const Address core.I2CAddress = 0x50

var (
	// ErrMeasurementNotComplete is returned when the done flag is still clear
	// after the settle delay.
	ErrMeasurementNotComplete = errors.New("fdc1004: measurement not complete")

	// ErrInvalidChannel is returned when a measurement is requested on
	// CAPDAC or Disabled.
	ErrInvalidChannel = errors.New("fdc1004: channel is not an input")

	// ErrCapDACRange is returned for an offset DAC setting above CapDACMax.
	ErrCapDACRange = errors.New("fdc1004: capdac out of range")
)

// Limits of the signed 24-bit measurement.
const (
	RawMax int32 = 0x7FFFFF
	RawMin int32 = -0x800000
)

const (
	// attofarads per raw count is 1e6/2^19 = 15625/2^13
	attofaradsNum   = 15625
	attofaradsShift = 13

	attofaradsPerCapDAC = 3_125_000
	picofaradsPerCapDAC = 3.125
	countsPerPicofarad  = 524288
)

// Sample is one measurement and the offset DAC setting it was taken at.
type Sample struct {
	Raw    int32
	CapDAC uint8
}

// Attofarads returns the capacitance in aF using integer math only.
func (s Sample) Attofarads() int64 {
	return int64(s.Raw)*attofaradsNum>>attofaradsShift + int64(s.CapDAC)*attofaradsPerCapDAC
}

// Picofarads returns the capacitance in pF.
func (s Sample) Picofarads() float32 {
	return float32(s.Raw)/countsPerPicofarad + picofaradsPerCapDAC*float32(s.CapDAC)
}

// Status classifies the outcome of an auto-ranging search.
type Status uint8

const (
	// InRange means the last measurement did not saturate.
	InRange Status = iota

	// Overflow means the last measurement saturated high and the search
	// could not move on: CapDAC is at its maximum, or the next setting up
	// was already measured.
	Overflow

	// Underflow means the last measurement saturated low and the search
	// could not move on: CapDAC is 0, or the next setting down was already
	// measured. In the second case CapDAC is above 0.
	Underflow
)

func (s Status) String() string {
	switch s {
	case InRange:
		return "ok"
	case Overflow:
		return "overflow"
	case Underflow:
		return "underflow"
	}
	return "invalid"
}

// Result is the outcome of ReadCapacitance. Sample holds the last
// measurement even when Status is not InRange.
type Result struct {
	Status Status
	Sample Sample
}

// Device is an FDC1004. It holds no bus; every call borrows one from the
// caller.
type Device struct {
	address core.I2CAddress
	rate    OutputRate
	delay   core.Delay

	w [3]byte
	r [2]byte
}

// New returns a device at addr sampling at rate. A nil delay uses
// core.SystemDelay.
func New(addr core.I2CAddress, rate OutputRate, delay core.Delay) *Device {
	if delay == nil {
		delay = core.SystemDelay
	}
	if rate < SPS100 || rate > SPS400 {
		rate = SPS100
	}
	return &Device{address: addr, rate: rate, delay: delay}
}

// Rate returns the configured output rate.
func (d *Device) Rate() OutputRate {
	return d.rate
}

// MeasureChannel runs one single-shot measurement of ch against the offset
// DAC set to capdac and returns the signed 24-bit result. Measurement slot n
// is used for CIN n.
func (d *Device) MeasureChannel(bus core.I2C, ch Channel, capdac uint8) (int32, error) {
	if !ch.input() {
		return 0, ErrInvalidChannel
	}
	if capdac > CapDACMax {
		return 0, ErrCapDACRange
	}
	slot := uint8(ch)

	cfg := MeasurementConfig{ChannelA: ch, ChannelB: CAPDAC, CapDAC: capdac}
	if err := d.writeRegister(bus, RegisterMeas1Config+slot, cfg.Bits()); err != nil {
		return 0, err
	}

	trig := TriggerConfig{Rate: d.rate}
	trig.Initiate[slot] = true
	if err := d.writeRegister(bus, RegisterFDCConf, trig.Bits()); err != nil {
		return 0, err
	}

	d.delay.Sleep(d.rate.SettleTime())

	conf, err := d.readRegister(bus, RegisterFDCConf)
	if err != nil {
		return 0, err
	}
	if !TriggerConfigFromBits(conf).Done[slot] {
		return 0, ErrMeasurementNotComplete
	}

	msb, err := d.readRegister(bus, RegisterMeas1MSB+2*slot)
	if err != nil {
		return 0, err
	}
	lsb, err := d.readRegister(bus, RegisterMeas1LSB+2*slot)
	if err != nil {
		return 0, err
	}
	return decodeRaw(msb, lsb), nil
}

// decodeRaw joins the MSB word and the upper byte of the LSB word into a
// sign-extended 24-bit value.
func decodeRaw(msb, lsb uint16) int32 {
	v := uint32(msb)<<8 | uint32(lsb)>>8
	return int32(v<<8) >> 8
}

// ReadCapacitance measures ch, auto-ranging the offset DAC from zero until
// the reading is inside the 24-bit range.
func (d *Device) ReadCapacitance(bus core.I2C, ch Channel) (Result, error) {
	return d.ReadCapacitanceFrom(bus, ch, 0)
}

// ReadCapacitanceFrom is ReadCapacitance starting the search at start,
// typically the offset DAC of the previous in-range result.
func (d *Device) ReadCapacitanceFrom(bus core.I2C, ch Channel, start uint8) (Result, error) {
	if !ch.input() {
		return Result{}, ErrInvalidChannel
	}
	if start > CapDACMax {
		return Result{}, ErrCapDACRange
	}
	return searchCapDAC(start, func(capdac uint8) (int32, error) {
		return d.MeasureChannel(bus, ch, capdac)
	})
}

// searchCapDAC steps the offset DAC one unit at a time away from the
// saturated bound. Each setting is measured at most once, so the search
// ends after at most 32 measurements.
func searchCapDAC(start uint8, measure func(capdac uint8) (int32, error)) (Result, error) {
	var visited uint32
	capdac := start

	for {
		raw, err := measure(capdac)
		if err != nil {
			return Result{}, err
		}
		visited |= 1 << capdac
		sample := Sample{Raw: raw, CapDAC: capdac}

		next := capdac
		switch {
		case raw > RawMin && raw < RawMax:
			return Result{Status: InRange, Sample: sample}, nil
		case raw >= RawMax && capdac < CapDACMax:
			next = capdac + 1
		case raw <= RawMin && capdac > 0:
			next = capdac - 1
		}

		if next == capdac || visited&(1<<next) != 0 {
			if raw >= RawMax {
				return Result{Status: Overflow, Sample: sample}, nil
			}
			return Result{Status: Underflow, Sample: sample}, nil
		}
		capdac = next
	}
}

// ManufacturerID reads the manufacturer ID register, ManufacturerTI on a
// genuine part.
func (d *Device) ManufacturerID(bus core.I2C) (uint16, error) {
	return d.readRegister(bus, RegisterMfgID)
}

// DeviceID reads the device ID register, DeviceFDC1004 on a genuine part.
func (d *Device) DeviceID(bus core.I2C) (uint16, error) {
	return d.readRegister(bus, RegisterDevID)
}

// Reset restores the power-on register contents.
func (d *Device) Reset(bus core.I2C) error {
	return d.writeRegister(bus, RegisterFDCConf, TriggerConfig{Reset: true, Rate: d.rate}.Bits())
}

// SetOffsetCalibration writes the offset calibration register of ch.
func (d *Device) SetOffsetCalibration(bus core.I2C, ch Channel, v uint16) error {
	if !ch.input() {
		return ErrInvalidChannel
	}
	return d.writeRegister(bus, RegisterOffsetCIN1+uint8(ch), v)
}

// SetGainCalibration writes the gain calibration register of ch.
func (d *Device) SetGainCalibration(bus core.I2C, ch Channel, v uint16) error {
	if !ch.input() {
		return ErrInvalidChannel
	}
	return d.writeRegister(bus, RegisterGainCIN1+uint8(ch), v)
}

func (d *Device) writeRegister(bus core.I2C, reg uint8, v uint16) error {
	d.w[0] = reg
	d.w[1] = byte(v >> 8)
	d.w[2] = byte(v)
	return bus.Tx(uint16(d.address), d.w[:3], nil)
}

func (d *Device) readRegister(bus core.I2C, reg uint8) (uint16, error) {
	d.w[0] = reg
	if err := bus.Tx(uint16(d.address), d.w[:1], d.r[:]); err != nil {
		return 0, err
	}
	return uint16(d.r[0])<<8 | uint16(d.r[1]), nil
}
