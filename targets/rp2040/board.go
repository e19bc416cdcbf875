//go:build rp2040

package main

import (
	"machine"

	"iox/core"
)

// IO expander board pin map
const (
	pinShiftData    = machine.GPIO0
	pinShiftClear   = machine.GPIO1 // SRCLR#, held high
	pinShiftEnable  = machine.GPIO2 // G#, held low
	pinShiftStorage = machine.GPIO3
	pinShiftClock   = machine.GPIO10
	pinI2CSDA       = machine.GPIO8
	pinI2CSCL       = machine.GPIO9
	pinGlow         = machine.GPIO13
	pinLevelShiftOE = machine.GPIO24 // TXS0108E OE
	pinLED          = machine.GPIO25
)

// Glow output on pin 13 is channel B of slice 6
const (
	glowSlice     core.PWMSlice = 6
	glowFrequency               = 10000
	glowDuty                    = 20
	glowMax                     = 30
)

// Shift register output positions
const (
	outCN1_3V3  = 0
	outCN1_12V  = 1
	outVOUT4    = 2
	outVOUT1    = 3
	outVOUT3    = 4
	outVOUT2    = 5
	outCN10     = 6
	outCN11     = 7
	outCN9_8    = 8
	outCN9_6    = 9
	outCN4_4    = 10
	outJP2_FA7  = 12
	outJP2_FA8  = 13
	outJP2_FA9  = 14
	outJP2_FA10 = 15
)

func configureOutput(p machine.Pin, high bool) machine.Pin {
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	p.Set(high)
	return p
}

// initBoard drives the fixed control lines and returns the shift register
// lines as data, shift clock and storage clock.
func initBoard() (data, shift, storage core.Pin) {
	configureOutput(pinShiftClear, true)
	configureOutput(pinShiftEnable, false)
	configureOutput(pinLevelShiftOE, true)

	return configureOutput(pinShiftData, false),
		configureOutput(pinShiftClock, false),
		configureOutput(pinShiftStorage, false)
}
