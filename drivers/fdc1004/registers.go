package fdc1004

import "time"

// Constants defining the register addresses of an FDC1004.
const (
	RegisterMeas1MSB    uint8 = 0x00
	RegisterMeas1LSB    uint8 = 0x01
	RegisterMeas1Config uint8 = 0x08
	RegisterFDCConf     uint8 = 0x0C
	RegisterOffsetCIN1  uint8 = 0x0D
	RegisterGainCIN1    uint8 = 0x11
	RegisterMfgID       uint8 = 0xFE
	RegisterDevID       uint8 = 0xFF
)

// Expected identification register contents.
const (
	ManufacturerTI uint16 = 0x5449
	DeviceFDC1004  uint16 = 0x1004
)

// CapDACMax is the largest offset DAC setting, 31 × 3.125 pF.
const CapDACMax uint8 = 0x1F

// Channel selects an input for the positive (A) or negative (B) side of a
// measurement.
type Channel uint8

// Constants representing each possible value of type Channel. Only CIN1-CIN4
// may be used for channel A.
const (
	CIN1     Channel = 0 // (000b)
	CIN2     Channel = 1 // (001b)
	CIN3     Channel = 2 // (010b)
	CIN4     Channel = 3 // (011b)
	CAPDAC   Channel = 4 // (100b) B only
	Disabled Channel = 7 // (111b) B only
)

func (c Channel) input() bool { return c <= CIN4 }

func (c Channel) String() string {
	switch {
	case c.input():
		return "CIN" + string('1'+byte(c))
	case c == CAPDAC:
		return "CAPDAC"
	case c == Disabled:
		return "DISABLED"
	}
	return "invalid"
}

// OutputRate is the sample rate of a measurement. The values are the
// register codes.
type OutputRate uint8

const (
	SPS100 OutputRate = 1 // (01b)
	SPS200 OutputRate = 2 // (10b)
	SPS400 OutputRate = 3 // (11b)
)

// SettleTime returns how long a single measurement at r takes to complete.
func (r OutputRate) SettleTime() time.Duration {
	switch r {
	case SPS200:
		return 6 * time.Millisecond
	case SPS400:
		return 3 * time.Millisecond
	}
	return 11 * time.Millisecond
}

// MeasurementConfig represents one of the measurement configuration
// registers (08h-0Bh).
type MeasurementConfig struct {
	ChannelA Channel
	ChannelB Channel
	CapDAC   uint8
}

// Bits encodes m.
func (m MeasurementConfig) Bits() uint16 {
	var a uint16
	if m.ChannelA.input() {
		a = uint16(m.ChannelA)
	}
	return a<<13 | uint16(m.ChannelB&0b111)<<10 | uint16(m.CapDAC&CapDACMax)<<5
}

// MeasurementConfigFromBits decodes a measurement configuration register.
func MeasurementConfigFromBits(bits uint16) MeasurementConfig {
	return MeasurementConfig{
		ChannelA: Channel(bits >> 13 & 0b111),
		ChannelB: Channel(bits >> 10 & 0b111),
		CapDAC:   uint8(bits >> 5 & uint16(CapDACMax)),
	}
}

// TriggerConfig represents the FDC configuration register (0Ch). Index 0 of
// Initiate and Done is measurement 1.
type TriggerConfig struct {
	Reset    bool
	Rate     OutputRate
	Repeat   bool
	Initiate [4]bool
	Done     [4]bool
}

const (
	bitReset  = 15
	bitRepeat = 8
	bitInit1  = 7
	bitDone1  = 3
)

// Bits encodes t.
func (t TriggerConfig) Bits() uint16 {
	var bits uint16
	if t.Reset {
		bits |= 1 << bitReset
	}
	rate := t.Rate
	if rate < SPS100 || rate > SPS400 {
		rate = SPS100
	}
	bits |= uint16(rate) << 10
	if t.Repeat {
		bits |= 1 << bitRepeat
	}
	for i := 0; i < 4; i++ {
		if t.Initiate[i] {
			bits |= 1 << (bitInit1 - i)
		}
		if t.Done[i] {
			bits |= 1 << (bitDone1 - i)
		}
	}
	return bits
}

// TriggerConfigFromBits decodes the FDC configuration register. A rate code
// of 00b reads as SPS100.
func TriggerConfigFromBits(bits uint16) TriggerConfig {
	t := TriggerConfig{
		Reset:  bits&(1<<bitReset) != 0,
		Rate:   OutputRate(bits >> 10 & 0b11),
		Repeat: bits&(1<<bitRepeat) != 0,
	}
	if t.Rate == 0 {
		t.Rate = SPS100
	}
	for i := 0; i < 4; i++ {
		t.Initiate[i] = bits&(1<<(bitInit1-i)) != 0
		t.Done[i] = bits&(1<<(bitDone1-i)) != 0
	}
	return t
}
