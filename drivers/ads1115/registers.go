package ads1115

// Register pointers of an ADS111x.
const (
	RegisterConversion uint8 = 0x00
	RegisterConfig     uint8 = 0x01
	RegisterLoThresh   uint8 = 0x02
	RegisterHiThresh   uint8 = 0x03
)

// Mux selects the input pair fed to the converter.
type Mux uint8

// Constants representing each possible value of type Mux.
const (
	MuxAIN0AIN1 Mux = 0 // (000b) (default)
	MuxAIN0AIN3 Mux = 1 // (001b)
	MuxAIN1AIN3 Mux = 2 // (010b)
	MuxAIN2AIN3 Mux = 3 // (011b)
	MuxAIN0GND  Mux = 4 // (100b)
	MuxAIN1GND  Mux = 5 // (101b)
	MuxAIN2GND  Mux = 6 // (110b)
	MuxAIN3GND  Mux = 7 // (111b)
)

var muxNames = [...]string{
	"AIN0AIN1", "AIN0AIN3", "AIN1AIN3", "AIN2AIN3",
	"AIN0GND", "AIN1GND", "AIN2GND", "AIN3GND",
}

func (m Mux) String() string {
	if int(m) < len(muxNames) {
		return muxNames[m]
	}
	return "invalid"
}

// ParseMux returns the Mux named s.
func ParseMux(s string) (Mux, bool) {
	for i, name := range muxNames {
		if name == s {
			return Mux(i), true
		}
	}
	return 0, false
}

// Gain is the programmable gain amplifier setting, named by its full-scale
// range.
type Gain uint8

// Constants representing each possible value of type Gain. Register codes
// 110b and 111b also select ±0.256 V and decode to Gain0256.
const (
	Gain6144 Gain = 0 // (000b) ±6.144 V
	Gain4096 Gain = 1 // (001b) ±4.096 V
	Gain2048 Gain = 2 // (010b) ±2.048 V (default)
	Gain1024 Gain = 3 // (011b) ±1.024 V
	Gain0512 Gain = 4 // (100b) ±0.512 V
	Gain0256 Gain = 5 // (101b) ±0.256 V
)

var fullScale = [...]float32{6.144, 4.096, 2.048, 1.024, 0.512, 0.256}

// FullScale returns the input range of g in volts.
func (g Gain) FullScale() float32 {
	if int(g) < len(fullScale) {
		return fullScale[g]
	}
	return fullScale[Gain0256]
}

// Mode selects continuous or single-shot conversion.
type Mode uint8

const (
	ModeContinuous Mode = 0
	ModeSingleShot Mode = 1 // default
)

// DataRate is the conversion rate in samples per second.
type DataRate uint8

const (
	SPS8   DataRate = 0 // (000b)
	SPS16  DataRate = 1 // (001b)
	SPS32  DataRate = 2 // (010b)
	SPS64  DataRate = 3 // (011b)
	SPS128 DataRate = 4 // (100b) (default)
	SPS250 DataRate = 5 // (101b)
	SPS475 DataRate = 6 // (110b)
	SPS860 DataRate = 7 // (111b)
)

type CompMode uint8

const (
	CompTraditional CompMode = 0 // default
	CompWindow      CompMode = 1
)

type CompPolarity uint8

const (
	CompActiveLow  CompPolarity = 0 // default
	CompActiveHigh CompPolarity = 1
)

type CompLatch uint8

const (
	CompNonLatching CompLatch = 0 // default
	CompLatching    CompLatch = 1
)

type CompQueue uint8

const (
	CompAssertAfterOne  CompQueue = 0 // (00b)
	CompAssertAfterTwo  CompQueue = 1 // (01b)
	CompAssertAfterFour CompQueue = 2 // (10b)
	CompQueueDisable    CompQueue = 3 // (11b) (default)
)

// Status is the operational status bit as read back from the device.
type Status uint8

const (
	StatusConverting Status = 0
	StatusIdle       Status = 1
)

// Config represents the content of the config register (01h).
//
// Start is the write-only trigger for a single-shot conversion; it always
// decodes false. Status is read-only and ignored when encoding.
type Config struct {
	Start        bool
	Mux          Mux
	Gain         Gain
	Mode         Mode
	DataRate     DataRate
	CompMode     CompMode
	CompPolarity CompPolarity
	CompLatch    CompLatch
	CompQueue    CompQueue
	Status       Status
}

// DefaultConfig returns the power-on configuration of an ADS111x. Status is
// left zero, which is what the encoded default decodes to.
func DefaultConfig() Config {
	return Config{
		Mux:          MuxAIN0AIN1,
		Gain:         Gain2048,
		Mode:         ModeSingleShot,
		DataRate:     SPS128,
		CompMode:     CompTraditional,
		CompPolarity: CompActiveLow,
		CompLatch:    CompNonLatching,
		CompQueue:    CompQueueDisable,
	}
}

type field struct {
	shift uint16
	mask  uint16
	get   func(c *Config) uint8
	set   func(c *Config, v uint8)
}

// configFields drives both directions of the config register codec.
var configFields = [...]field{
	{12, 0b111, func(c *Config) uint8 { return uint8(c.Mux) }, func(c *Config, v uint8) { c.Mux = Mux(v) }},
	{9, 0b111, func(c *Config) uint8 { return uint8(min(c.Gain, Gain0256)) }, func(c *Config, v uint8) { c.Gain = min(Gain(v), Gain0256) }},
	{8, 0b1, func(c *Config) uint8 { return uint8(c.Mode) }, func(c *Config, v uint8) { c.Mode = Mode(v) }},
	{5, 0b111, func(c *Config) uint8 { return uint8(c.DataRate) }, func(c *Config, v uint8) { c.DataRate = DataRate(v) }},
	{4, 0b1, func(c *Config) uint8 { return uint8(c.CompMode) }, func(c *Config, v uint8) { c.CompMode = CompMode(v) }},
	{3, 0b1, func(c *Config) uint8 { return uint8(c.CompPolarity) }, func(c *Config, v uint8) { c.CompPolarity = CompPolarity(v) }},
	{2, 0b1, func(c *Config) uint8 { return uint8(c.CompLatch) }, func(c *Config, v uint8) { c.CompLatch = CompLatch(v) }},
	{0, 0b11, func(c *Config) uint8 { return uint8(c.CompQueue) }, func(c *Config, v uint8) { c.CompQueue = CompQueue(v) }},
}

const bitOS = 15

// Bits encodes c into the 16-bit register value.
func (c Config) Bits() uint16 {
	var bits uint16
	if c.Start {
		bits |= 1 << bitOS
	}
	for i := range configFields {
		f := &configFields[i]
		bits |= (uint16(f.get(&c)) & f.mask) << f.shift
	}
	return bits
}

// ConfigFromBits decodes a register value read from the device.
func ConfigFromBits(bits uint16) Config {
	var c Config
	c.Status = Status(bits >> bitOS & 1)
	for i := range configFields {
		f := &configFields[i]
		f.set(&c, uint8(bits>>f.shift&f.mask))
	}
	return c
}

// WithMux returns a copy of c reading from mux.
func (c Config) WithMux(mux Mux) Config {
	c.Mux = mux
	return c
}

// WithGain returns a copy of c using gain.
func (c Config) WithGain(gain Gain) Config {
	c.Gain = gain
	return c
}

func (c Config) WithMode(mode Mode) Config {
	c.Mode = mode
	return c
}

func (c Config) WithDataRate(dr DataRate) Config {
	c.DataRate = dr
	return c
}

func (c Config) WithCompMode(m CompMode) Config {
	c.CompMode = m
	return c
}

func (c Config) WithCompPolarity(p CompPolarity) Config {
	c.CompPolarity = p
	return c
}

func (c Config) WithCompLatch(l CompLatch) Config {
	c.CompLatch = l
	return c
}

func (c Config) WithCompQueue(q CompQueue) Config {
	c.CompQueue = q
	return c
}
