// Package standalone runs the board's sensors and outputs without a host:
// a periodic sensor cycle that emits telemetry records, the output pulse
// sequence and the PWM glow ramp.
package standalone

import (
	"errors"
	"strconv"

	"iox/core"
	"iox/drivers/ads1115"
	"iox/drivers/fdc1004"
	"iox/protocol"
)

// Manager coordinates the sensors on the shared bus
type Manager struct {
	config Config
	bus    *core.SharedI2C

	supply *ads1115.Device
	sensor *ads1115.Device
	cap    *fdc1004.Device
	capdac uint8

	rec          protocol.Record
	outputBuffer []byte

	initialized bool
}

// NewManager creates a manager for cfg on bus. delay paces the capacitance
// settle wait.
func NewManager(cfg Config, bus *core.SharedI2C, delay core.Delay) (*Manager, error) {
	adcCfg := ads1115.DefaultConfig().WithGain(cfg.Gain)

	supply, err := ads1115.New(cfg.SupplyADC, adcCfg.WithMux(ads1115.MuxAIN0GND))
	if err != nil {
		return nil, err
	}
	sensor, err := ads1115.New(cfg.SensorADC, adcCfg.WithMux(ThermistorMux[0]))
	if err != nil {
		return nil, err
	}
	supply.PollLimit = cfg.PollLimit
	sensor.PollLimit = cfg.PollLimit

	return &Manager{
		config:       cfg,
		bus:          bus,
		supply:       supply,
		sensor:       sensor,
		cap:          fdc1004.New(cfg.CapSensor, cfg.CapRate, delay),
		outputBuffer: make([]byte, 0, 4*protocol.LineMax),
	}, nil
}

// Initialize writes the ADC configuration and checks the capacitance
// sensor identity. A missing capacitance sensor is logged, not fatal.
func (m *Manager) Initialize() error {
	if m.initialized {
		return errors.New("already initialized")
	}

	err := m.bus.Do(func(bus core.I2C) error {
		if err := m.supply.WriteConfig(bus); err != nil {
			return err
		}
		return m.sensor.WriteConfig(bus)
	})
	if err != nil {
		return err
	}

	var mfg, dev uint16
	err = m.bus.Do(func(bus core.I2C) error {
		var err error
		if mfg, err = m.cap.ManufacturerID(bus); err != nil {
			return err
		}
		dev, err = m.cap.DeviceID(bus)
		return err
	})
	switch {
	case err != nil:
		core.Error("fdc1004 not responding", err)
	case mfg != fdc1004.ManufacturerTI || dev != fdc1004.DeviceFDC1004:
		core.Warn("fdc1004 unexpected id 0x" + strconv.FormatUint(uint64(mfg), 16) +
			"/0x" + strconv.FormatUint(uint64(dev), 16))
	}

	m.initialized = true
	m.emitHello()
	return nil
}

// Sample runs one sensor cycle, queues its telemetry and returns the
// values. Failed steps are logged and skipped.
func (m *Manager) Sample() Reading {
	var r Reading

	err := m.bus.Do(func(bus core.I2C) error {
		v, err := m.supply.ReadSingleVoltage(bus)
		r.Supply = v
		return err
	})
	if err != nil {
		r.Err = err
		core.Error("supply read failed", err)
	} else {
		r.SupplyOK = true
		m.emitADC(m.supply.Address(), ads1115.MuxAIN0GND, r.Supply)
	}

	for i, mux := range ThermistorMux {
		err := m.bus.Do(func(bus core.I2C) error {
			v, err := m.sensor.ReadSingleVoltageMux(bus, mux)
			r.Tap[i] = v
			return err
		})
		if err != nil {
			r.Err = err
			core.Error("thermistor "+strconv.Itoa(i)+" read failed", err)
			continue
		}
		m.emitADC(m.sensor.Address(), mux, r.Tap[i])
		if !r.SupplyOK {
			continue
		}
		r.Resistance[i] = core.LowSideResistance(r.Tap[i], r.Supply, m.config.DividerTop)
		r.Celsius[i] = m.config.NTC.Celsius(r.Resistance[i])
		r.TapOK[i] = true
		m.emitNTC(i, r.Resistance[i], r.Celsius[i])
	}

	err = m.bus.Do(func(bus core.I2C) error {
		res, err := m.cap.ReadCapacitanceFrom(bus, m.config.CapChannel, m.capdac)
		r.Cap = res
		return err
	})
	if err != nil {
		r.Err = err
		core.Error("capacitance read failed", err)
	} else {
		r.CapOK = true
		if r.Cap.Status == fdc1004.InRange {
			m.capdac = r.Cap.Sample.CapDAC
		} else {
			m.capdac = 0
			core.Warn("capacitance " + r.Cap.Status.String())
		}
		m.emitCap(r.Cap)
	}

	return r
}

// GetOutput returns any pending telemetry and clears the buffer
func (m *Manager) GetOutput() []byte {
	if len(m.outputBuffer) == 0 {
		return nil
	}

	output := make([]byte, len(m.outputBuffer))
	copy(output, m.outputBuffer)
	m.outputBuffer = m.outputBuffer[:0]
	return output
}

// IsInitialized returns whether Initialize succeeded
func (m *Manager) IsInitialized() bool {
	return m.initialized
}

func (m *Manager) record(kind string) *protocol.Record {
	m.rec.Kind = kind
	m.rec.Fields = m.rec.Fields[:0]
	return &m.rec
}

func (m *Manager) flushRecord() {
	m.outputBuffer = protocol.AppendRecord(m.outputBuffer, &m.rec)
	m.outputBuffer = append(m.outputBuffer, '\r', '\n')
}

func (m *Manager) emitHello() {
	m.record(protocol.KindHello).Add("version", protocol.Version)
	m.flushRecord()
}

func (m *Manager) emitADC(addr core.I2CAddress, mux ads1115.Mux, v float32) {
	m.record(protocol.KindADC).
		AddUint("addr", uint64(addr)).
		Add("mux", mux.String()).
		AddFloat("v", v, 5)
	m.flushRecord()
}

func (m *Manager) emitNTC(ch int, ohm, c float32) {
	m.record(protocol.KindNTC).
		AddInt("ch", int64(ch)).
		AddFloat("ohm", ohm, 1).
		AddFloat("c", c, 2)
	m.flushRecord()
}

func (m *Manager) emitCap(res fdc1004.Result) {
	m.record(protocol.KindCap).
		Add("ch", m.config.CapChannel.String()).
		AddUint("capdac", uint64(res.Sample.CapDAC)).
		AddInt("raw", int64(res.Sample.Raw)).
		AddFloat("pf", res.Sample.Picofarads(), 4).
		Add("status", res.Status.String())
	m.flushRecord()
}
