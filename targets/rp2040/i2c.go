//go:build rp2040

package main

import (
	"machine"

	"tinygo.org/x/drivers"
)

// I2CFrequency of the internal sensor bus
const I2CFrequency = 400 * machine.KHz

// initI2C configures I2C0 on the board's internal sensor pins.
func initI2C() (drivers.I2C, error) {
	bus := machine.I2C0
	err := bus.Configure(machine.I2CConfig{
		Frequency: I2CFrequency,
		SDA:       pinI2CSDA,
		SCL:       pinI2CSCL,
	})
	if err != nil {
		return nil, err
	}
	return bus, nil
}
