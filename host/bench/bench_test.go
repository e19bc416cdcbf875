package bench

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/i2c/i2ctest"
	"periph.io/x/conn/v3/physic"

	"iox/core"
	"iox/drivers/fdc1004"
	"iox/host/config"
)

type noDelay struct{}

func (noDelay) Sleep(time.Duration) {}

func idle() [3]core.Pin {
	nop := core.PinFunc(func(bool) {})
	return [3]core.Pin{nop, nop, nop}
}

var initOps = []i2ctest.IO{
	{Addr: 0x49, W: []byte{0x01, 0x41, 0x83}},
	{Addr: 0x48, W: []byte{0x01, 0x01, 0x83}},
	{Addr: 0x50, W: []byte{0xFE}, R: []byte{0x54, 0x49}},
	{Addr: 0x50, W: []byte{0xFF}, R: []byte{0x10, 0x04}},
}

var cycleOps = []i2ctest.IO{
	{Addr: 0x49, W: []byte{0x01, 0xC1, 0x83}, R: []byte{0xC1, 0x83}},
	{Addr: 0x49, W: []byte{0x00}, R: []byte{0x44, 0xC0}}, // 3.3 V
	{Addr: 0x48, W: []byte{0x01, 0x81, 0x83}, R: []byte{0x81, 0x83}},
	{Addr: 0x48, W: []byte{0x00}, R: []byte{0x22, 0x60}}, // 1.65 V
	{Addr: 0x48, W: []byte{0x01, 0xB1, 0x83}, R: []byte{0xB1, 0x83}},
	{Addr: 0x48, W: []byte{0x00}, R: []byte{0x11, 0x30}}, // 0.825 V
	{Addr: 0x50, W: []byte{0x0B, 0x70, 0x00}},
	{Addr: 0x50, W: []byte{0x0C, 0x04, 0x10}},
	{Addr: 0x50, W: []byte{0x0C}, R: []byte{0x04, 0x11}},
	{Addr: 0x50, W: []byte{0x06}, R: []byte{0x08, 0x00}},
	{Addr: 0x50, W: []byte{0x07}, R: []byte{0x00, 0x00}}, // 1 pF
}

func defaultStandalone() config.Config {
	return *config.Default()
}

func TestMeasure(t *testing.T) {
	bus := &i2ctest.Playback{Ops: append(append([]i2ctest.IO{}, initOps...), cycleOps...), DontPanic: true}
	cfg := defaultStandalone()

	b, err := New(bus, idle(), noDelay{}, standaloneConfig(cfg.Bench, cfg.Divider, cfg.NTC))
	require.NoError(t, err)

	m := b.Measure()
	require.NoError(t, m.Raw.Err)
	assert.InDelta(t, float64(3300*physic.MilliVolt), float64(m.Supply), float64(physic.MilliVolt))
	assert.InDelta(t, float64(3300*physic.Ohm), float64(m.Resistance[0]), float64(physic.Ohm))
	assert.InDelta(t, float64(1100*physic.Ohm), float64(m.Resistance[1]), float64(physic.Ohm))
	assert.Greater(t, int64(m.Temperature[1]), int64(m.Temperature[0]), "lower resistance reads warmer")
	assert.InDelta(t, 1.0, m.Picofarads, 1e-9)
	assert.Equal(t, fdc1004.InRange, m.CapStatus)
	assert.NoError(t, bus.Close())

	lines := strings.Split(strings.TrimSpace(string(b.Telemetry())), "\r\n")
	require.Len(t, lines, 7)
	assert.True(t, strings.HasPrefix(lines[0], "$hello,"))
	assert.True(t, strings.HasPrefix(lines[6], "$cap,ch=CIN4,capdac=0,raw=524288,pf=1.0000,status=ok*"))
}

func TestMeasureSkipsFailedTaps(t *testing.T) {
	// No supply reply, so neither tap converts
	ops := append(append([]i2ctest.IO{}, initOps...), cycleOps[2:]...)
	bus := &i2ctest.Playback{Ops: ops, DontPanic: true}
	cfg := defaultStandalone()

	b, err := New(bus, idle(), noDelay{}, standaloneConfig(cfg.Bench, cfg.Divider, cfg.NTC))
	require.NoError(t, err)

	m := b.Measure()
	assert.Error(t, m.Raw.Err)
	assert.Equal(t, [2]bool{false, false}, m.Raw.TapOK)
	assert.Equal(t, [2]physic.ElectricResistance{}, m.Resistance)
	assert.Equal(t, [2]physic.Temperature{}, m.Temperature, "no reading instead of 0 °C")
	assert.InDelta(t, 1.0, m.Picofarads, 1e-9)
	assert.NoError(t, bus.Close())
}

func TestReleasePins(t *testing.T) {
	pins := []gpio.PinIO{&gpiotest.Pin{N: "GPIO5", L: gpio.High}, &gpiotest.Pin{N: "GPIO6", L: gpio.High}}
	require.NoError(t, releasePins(pins))
	for _, p := range pins {
		assert.Equal(t, gpio.Low, p.Read(), p.Name())
	}
	assert.NoError(t, releasePins(nil))
}

func TestRunStopsOnCancel(t *testing.T) {
	ops := append(append([]i2ctest.IO{}, initOps...), cycleOps...)
	bus := &i2ctest.Playback{Ops: ops, DontPanic: true}
	cfg := defaultStandalone()

	b, err := New(bus, idle(), noDelay{}, standaloneConfig(cfg.Bench, cfg.Divider, cfg.NTC))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cycles := 0
	err = b.Run(ctx, time.Hour, func(Measurement) {
		cycles++
		cancel()
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, cycles)
	assert.NoError(t, b.Close())
}

func TestStandaloneConfig(t *testing.T) {
	cfg := defaultStandalone()
	cfg.Bench.CapChannel = 2
	cfg.Bench.CapRate = 400

	sc := standaloneConfig(cfg.Bench, cfg.Divider, cfg.NTC)
	assert.Equal(t, fdc1004.CIN2, sc.CapChannel)
	assert.Equal(t, fdc1004.SPS400, sc.CapRate)
	assert.Equal(t, core.I2CAddress(0x49), sc.SupplyADC)
	assert.Equal(t, float32(3300), sc.DividerTop)
	assert.Equal(t, float32(4016), sc.NTC.Beta)
}

func TestPulse(t *testing.T) {
	bus := &i2ctest.Playback{Ops: append([]i2ctest.IO{}, initOps...), DontPanic: true}
	cfg := defaultStandalone()

	var storeEdges int
	nop := core.PinFunc(func(bool) {})
	store := core.PinFunc(func(h bool) {
		if h {
			storeEdges++
		}
	})
	b, err := New(bus, [3]core.Pin{nop, nop, store}, noDelay{}, standaloneConfig(cfg.Bench, cfg.Divider, cfg.NTC))
	require.NoError(t, err)
	assert.Equal(t, 1, storeEdges, "outputs cleared on start")

	b.Pulse()
	b.Pulse()
	assert.Equal(t, 3, storeEdges)
}
