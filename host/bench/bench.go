// Package bench runs the board's sensor cycle from a Linux host with the
// sensors wired to a host I2C bus and the shift register to host GPIOs.
package bench

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.uber.org/multierr"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"iox/core"
	"iox/drivers/fdc1004"
	"iox/drivers/shiftreg"
	"iox/host/config"
	"iox/standalone"
)

// Measurement is one sensor cycle in physical units. Resistance and
// Temperature stay zero for a tap that could not be converted; Raw.TapOK
// tells which.
type Measurement struct {
	Time        time.Time
	Supply      physic.ElectricPotential
	Resistance  [2]physic.ElectricResistance
	Temperature [2]physic.Temperature
	Picofarads  float64
	CapStatus   fdc1004.Status
	Raw         standalone.Reading
}

// Bench owns the host bus and pins.
type Bench struct {
	manager *standalone.Manager
	pulser  *standalone.Pulser
	bus     i2c.BusCloser
	pins    []gpio.PinIO
	now     func() time.Time
}

// Open initializes periph, opens the configured bus and pins and
// configures the sensors.
func Open(cfg config.BenchConfig, divider config.DividerConfig, ntc config.NTCConfig) (*Bench, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus %q: %w", cfg.I2CBus, err)
	}

	var pins []gpio.PinIO
	for _, name := range []string{cfg.DataPin, cfg.ShiftPin, cfg.StoragePin} {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, multierr.Combine(fmt.Errorf("no such GPIO %q", name), releasePins(pins), bus.Close())
		}
		pins = append(pins, p)
		if err := p.Out(gpio.Low); err != nil {
			return nil, multierr.Combine(fmt.Errorf("failed to drive %s: %w", name, err), releasePins(pins), bus.Close())
		}
	}

	b, err := New(bus, [3]core.Pin{outPin(pins[0]), outPin(pins[1]), outPin(pins[2])}, core.SystemDelay,
		standaloneConfig(cfg, divider, ntc))
	if err != nil {
		return nil, multierr.Combine(err, releasePins(pins), bus.Close())
	}
	b.bus = bus
	b.pins = pins
	return b, nil
}

// New builds a bench on an already open bus. pins are data, shift clock and
// storage clock.
func New(bus core.I2C, pins [3]core.Pin, delay core.Delay, cfg standalone.Config) (*Bench, error) {
	m, err := standalone.NewManager(cfg, core.NewSharedI2C(bus), delay)
	if err != nil {
		return nil, err
	}
	if err := m.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to configure sensors: %w", err)
	}

	reg := shiftreg.NewShiftRegister(shiftreg.New(pins[0], pins[1], pins[2], delay))
	reg.ClearThenFlush()
	pulser, err := standalone.NewPulser(reg, nil, PulseOutputs...)
	if err != nil {
		return nil, err
	}

	return &Bench{manager: m, pulser: pulser, now: time.Now}, nil
}

// PulseOutputs are the outputs walked by Pulse, JP2 FA7 and FA8.
var PulseOutputs = []int{12, 13}

func standaloneConfig(cfg config.BenchConfig, divider config.DividerConfig, ntc config.NTCConfig) standalone.Config {
	sc := standalone.DefaultConfig()
	sc.SupplyADC = core.I2CAddress(cfg.SupplyADC)
	sc.SensorADC = core.I2CAddress(cfg.SensorADC)
	sc.CapSensor = core.I2CAddress(cfg.CapSensor)
	sc.CapChannel = fdc1004.Channel(cfg.CapChannel - 1)
	switch cfg.CapRate {
	case 200:
		sc.CapRate = fdc1004.SPS200
	case 400:
		sc.CapRate = fdc1004.SPS400
	default:
		sc.CapRate = fdc1004.SPS100
	}
	sc.PollLimit = cfg.PollLimit
	sc.DividerTop = float32(divider.TopOhm)
	sc.NTC = core.NTC{R25: float32(ntc.R25), Beta: float32(ntc.Beta)}
	return sc
}

func outPin(p gpio.PinOut) core.Pin {
	return core.PinFunc(func(high bool) {
		if err := p.Out(gpio.Level(high)); err != nil {
			log.Printf("Error driving %s: %v", p, err)
		}
	})
}

// Measure runs one sensor cycle.
func (b *Bench) Measure() Measurement {
	r := b.manager.Sample()
	m := Measurement{
		Time:      b.now(),
		Supply:    volts(r.Supply),
		CapStatus: r.Cap.Status,
		Raw:       r,
	}
	for i := range r.Resistance {
		if !r.TapOK[i] {
			continue
		}
		m.Resistance[i] = physic.ElectricResistance(float64(r.Resistance[i]) * float64(physic.Ohm))
		m.Temperature[i] = physic.ZeroCelsius + physic.Temperature(float64(r.Celsius[i])*float64(physic.Kelvin))
	}
	m.Picofarads = float64(r.Cap.Sample.Attofarads()) / 1e6
	return m
}

func volts(v float32) physic.ElectricPotential {
	return physic.ElectricPotential(float64(v) * float64(physic.Volt))
}

// Telemetry returns the records queued by the last cycles, in the same
// line format the firmware prints.
func (b *Bench) Telemetry() []byte {
	return b.manager.GetOutput()
}

// Pulse latches the next pulse output.
func (b *Bench) Pulse() {
	b.pulser.Step()
}

// Run measures every interval until ctx is done, calling fn for each cycle.
func (b *Bench) Run(ctx context.Context, interval time.Duration, fn func(Measurement)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		fn(b.Measure())
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Close drives the pins low and releases the bus.
func (b *Bench) Close() error {
	err := releasePins(b.pins)
	if b.bus != nil {
		err = multierr.Append(err, b.bus.Close())
	}
	return err
}

func releasePins(pins []gpio.PinIO) error {
	var err error
	for _, p := range pins {
		err = multierr.Append(err, p.Out(gpio.Low))
		err = multierr.Append(err, p.Halt())
	}
	return err
}
