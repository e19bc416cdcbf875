package standalone

import (
	"iox/core"
	"iox/drivers/ads1115"
	"iox/drivers/fdc1004"
)

// Config describes the sensors the board samples on its own
type Config struct {
	SupplyADC  core.I2CAddress // AIN0 to GND reads the divider supply
	SensorADC  core.I2CAddress // AIN0-AIN1 and AIN2-AIN3 read the two thermistor taps
	Gain       ads1115.Gain
	PollLimit  int
	CapSensor  core.I2CAddress
	CapChannel fdc1004.Channel
	CapRate    fdc1004.OutputRate
	DividerTop float32 // upper divider leg in ohms
	NTC        core.NTC
}

// DefaultConfig returns the apec r0b wiring
func DefaultConfig() Config {
	return Config{
		SupplyADC:  0x49,
		SensorADC:  0x48,
		Gain:       ads1115.Gain6144,
		PollLimit:  100,
		CapSensor:  fdc1004.Address,
		CapChannel: fdc1004.CIN4,
		CapRate:    fdc1004.SPS100,
		DividerTop: 3300,
		NTC:        core.NTC{R25: 50000, Beta: 4016},
	}
}

// ThermistorMux lists the sensor ADC inputs in channel order
var ThermistorMux = [2]ads1115.Mux{ads1115.MuxAIN0AIN1, ads1115.MuxAIN2AIN3}

// Reading is the result of one sensor cycle. A failed step leaves its
// fields zero and sets the matching OK flag false.
type Reading struct {
	Supply   float32
	SupplyOK bool

	Tap        [2]float32
	Resistance [2]float32
	Celsius    [2]float32
	TapOK      [2]bool

	Cap   fdc1004.Result
	CapOK bool

	Err error // last failure of the cycle
}
