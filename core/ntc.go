package core

import "github.com/chewxy/math32"

const kelvinOffset = 273.15

// NTC describes a thermistor by its beta model
type NTC struct {
	R25  float32 // resistance at 25°C in ohms
	Beta float32
}

// Celsius converts a thermistor resistance to °C
func (n NTC) Celsius(ohm float32) float32 {
	lnRatio := math32.Log(ohm / n.R25)
	kelvin := 1 / (lnRatio/n.Beta + 1/(25+kelvinOffset))
	return kelvin - kelvinOffset
}

// LowSideResistance returns the resistance of the lower leg of a divider
// whose upper leg is rTop, given the tap voltage v and the supply vcc.
func LowSideResistance(v, vcc, rTop float32) float32 {
	return -(v * rTop) / (v - vcc)
}
