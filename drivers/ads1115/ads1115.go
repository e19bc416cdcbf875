// Package ads1115 provides a driver for the ADS1113/4/5 16-bit delta-sigma
// ADCs by TI.
//
// Datasheet: https://www.ti.com/lit/gpn/ads1115
package ads1115

import (
	"errors"

	"iox/core"
)

var (
	// ErrWrongAddress is returned by New for an address the ADDR pin cannot
	// select.
	ErrWrongAddress = errors.New("ads1115: address must be 0x48-0x4B")

	// ErrConversionTimeout is returned when PollLimit is exhausted before the
	// device reports idle.
	ErrConversionTimeout = errors.New("ads1115: conversion did not complete")
)

// Conversion is a raw conversion register value and the gain it was taken
// with.
type Conversion struct {
	Raw  int16
	Gain Gain
}

// Volts scales the raw code by the full-scale range of the gain.
func (c Conversion) Volts() float32 {
	return float32(c.Raw) * c.Gain.FullScale() / 32768
}

// Device is an ADS111x at a fixed address. It holds no bus; every call
// borrows one from the caller.
type Device struct {
	address core.I2CAddress
	config  Config

	// PollLimit bounds the status polls of a single-shot read. Zero polls
	// until the device reports idle.
	PollLimit int

	w [3]byte
	r [2]byte
}

// New returns a device at addr using cfg. Nothing is sent to the device.
func New(addr core.I2CAddress, cfg Config) (*Device, error) {
	if addr < 0x48 || addr > 0x4B {
		return nil, ErrWrongAddress
	}
	return &Device{address: addr, config: cfg}, nil
}

// Address returns the I2C address of d.
func (d *Device) Address() core.I2CAddress {
	return d.address
}

// Config returns the configuration d last wrote or will write.
func (d *Device) Config() Config {
	return d.config
}

// WriteConfig sends the stored configuration without starting a conversion.
func (d *Device) WriteConfig(bus core.I2C) error {
	d.config.Start = false
	return d.writeRegister(bus, RegisterConfig, d.config.Bits())
}

// Configure replaces the stored configuration and writes it.
func (d *Device) Configure(bus core.I2C, cfg Config) error {
	d.config = cfg
	return d.WriteConfig(bus)
}

// ReadConfig reads the config register back, including the status bit.
func (d *Device) ReadConfig(bus core.I2C) (Config, error) {
	d.config.Start = false
	bits, err := d.readRegister(bus, RegisterConfig)
	if err != nil {
		return Config{}, err
	}
	return ConfigFromBits(bits), nil
}

// ConversionReady reports whether the device is idle.
func (d *Device) ConversionReady(bus core.I2C) (bool, error) {
	cfg, err := d.ReadConfig(bus)
	if err != nil {
		return false, err
	}
	return cfg.Status == StatusIdle, nil
}

// ReadSingleVoltage starts a single-shot conversion on the stored mux, waits
// for it to finish and returns the result in volts.
func (d *Device) ReadSingleVoltage(bus core.I2C) (float32, error) {
	c, err := d.ReadSingleConversion(bus)
	return c.Volts(), err
}

// ReadSingleVoltageMux is ReadSingleVoltage on mux. The mux is kept in the
// stored configuration.
func (d *Device) ReadSingleVoltageMux(bus core.I2C, mux Mux) (float32, error) {
	d.config.Mux = mux
	return d.ReadSingleVoltage(bus)
}

// ReadSingleConversion is ReadSingleVoltage returning the raw code.
func (d *Device) ReadSingleConversion(bus core.I2C) (Conversion, error) {
	d.config.Start = true
	bits := d.config.Bits()
	d.config.Start = false

	// Trigger and first status read share one transaction
	d.w[0] = RegisterConfig
	d.w[1] = byte(bits >> 8)
	d.w[2] = byte(bits)
	if err := bus.Tx(uint16(d.address), d.w[:3], d.r[:]); err != nil {
		return Conversion{}, err
	}

	for polls := 0; Status(d.r[0]>>7) == StatusConverting; polls++ {
		if d.PollLimit > 0 && polls >= d.PollLimit {
			return Conversion{}, ErrConversionTimeout
		}
		d.w[0] = RegisterConfig
		if err := bus.Tx(uint16(d.address), d.w[:1], d.r[:]); err != nil {
			return Conversion{}, err
		}
	}

	return d.ReadConversion(bus)
}

// ReadVoltage reads the last conversion result in volts. It neither starts a
// conversion nor waits for one.
func (d *Device) ReadVoltage(bus core.I2C) (float32, error) {
	c, err := d.ReadConversion(bus)
	return c.Volts(), err
}

// ReadConversion reads the conversion register.
func (d *Device) ReadConversion(bus core.I2C) (Conversion, error) {
	raw, err := d.readRegister(bus, RegisterConversion)
	if err != nil {
		return Conversion{}, err
	}
	return Conversion{Raw: int16(raw), Gain: d.config.Gain}, nil
}

// SetLowThreshold writes the comparator low threshold.
func (d *Device) SetLowThreshold(bus core.I2C, v int16) error {
	return d.writeRegister(bus, RegisterLoThresh, uint16(v))
}

// SetHighThreshold writes the comparator high threshold.
func (d *Device) SetHighThreshold(bus core.I2C, v int16) error {
	return d.writeRegister(bus, RegisterHiThresh, uint16(v))
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
