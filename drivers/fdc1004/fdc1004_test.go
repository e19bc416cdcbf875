package fdc1004

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/i2c/i2ctest"
)

type recordingDelay []time.Duration

func (r *recordingDelay) Sleep(d time.Duration) { *r = append(*r, d) }

func TestMeasurementConfigBits(t *testing.T) {
	assert.Equal(t, uint16(0x7000), MeasurementConfig{ChannelA: CIN4, ChannelB: CAPDAC}.Bits())
	assert.Equal(t, uint16(0x1C00|31<<5), MeasurementConfig{ChannelA: CIN1, ChannelB: Disabled, CapDAC: 31}.Bits())

	cfg := MeasurementConfig{ChannelA: CIN3, ChannelB: CIN2, CapDAC: 17}
	assert.Equal(t, cfg, MeasurementConfigFromBits(cfg.Bits()))
}

func TestTriggerConfigBits(t *testing.T) {
	trig := TriggerConfig{Rate: SPS100}
	trig.Initiate[0] = true
	assert.Equal(t, uint16(0x0480), trig.Bits())

	trig = TriggerConfig{Rate: SPS400, Repeat: true}
	trig.Initiate[3] = true
	assert.Equal(t, uint16(0x0D10), trig.Bits(), "repeat sets bit 8, not reset")

	assert.Equal(t, uint16(0x8400), TriggerConfig{Reset: true, Rate: SPS100}.Bits())
}

func TestTriggerConfigFromBits(t *testing.T) {
	trig := TriggerConfigFromBits(0x0811)
	assert.Equal(t, SPS200, trig.Rate)
	assert.True(t, trig.Initiate[3])
	assert.True(t, trig.Done[3])
	assert.False(t, trig.Done[0])

	assert.Equal(t, SPS100, TriggerConfigFromBits(0).Rate, "rate code 00b")

	full := TriggerConfig{Reset: true, Rate: SPS200, Repeat: true, Initiate: [4]bool{true, false, true, false}, Done: [4]bool{false, true, false, true}}
	assert.Equal(t, full, TriggerConfigFromBits(full.Bits()))
}

func TestTriggerConfigRoundTripAllFields(t *testing.T) {
	flags := func(pattern int) (f [4]bool) {
		for i := range f {
			f[i] = pattern&(1<<i) != 0
		}
		return f
	}

	seen := make(map[uint16]bool)
	for _, reset := range []bool{false, true} {
		for _, rate := range []OutputRate{SPS100, SPS200, SPS400} {
			for _, repeat := range []bool{false, true} {
				for initiate := 0; initiate < 16; initiate++ {
					for done := 0; done < 16; done++ {
						trig := TriggerConfig{
							Reset:    reset,
							Rate:     rate,
							Repeat:   repeat,
							Initiate: flags(initiate),
							Done:     flags(done),
						}
						bits := trig.Bits()
						require.Equal(t, trig, TriggerConfigFromBits(bits), "bits %016b", bits)
						seen[bits] = true
					}
				}
			}
		}
	}
	assert.Len(t, seen, 2*3*2*16*16, "every combination encodes distinctly")
}

func TestMeasurementConfigRoundTripAllFields(t *testing.T) {
	inputs := []Channel{CIN1, CIN2, CIN3, CIN4}
	for _, a := range inputs {
		for _, b := range append(inputs, CAPDAC, Disabled) {
			for capdac := uint8(0); capdac <= CapDACMax; capdac++ {
				cfg := MeasurementConfig{ChannelA: a, ChannelB: b, CapDAC: capdac}
				require.Equal(t, cfg, MeasurementConfigFromBits(cfg.Bits()))
			}
		}
	}
}

func TestSettleTime(t *testing.T) {
	assert.Equal(t, 11*time.Millisecond, SPS100.SettleTime())
	assert.Equal(t, 6*time.Millisecond, SPS200.SettleTime())
	assert.Equal(t, 3*time.Millisecond, SPS400.SettleTime())
}

func TestDecodeRaw(t *testing.T) {
	assert.Equal(t, int32(0x123456), decodeRaw(0x1234, 0x5600))
	assert.Equal(t, RawMax, decodeRaw(0x7FFF, 0xFF00))
	assert.Equal(t, RawMin, decodeRaw(0x8000, 0x0000))
	assert.Equal(t, int32(-1), decodeRaw(0xFFFF, 0xFF00))
}

func TestSampleUnits(t *testing.T) {
	assert.Equal(t, float32(0), Sample{Raw: 0, CapDAC: 0}.Picofarads())
	assert.Equal(t, float32(3.125), Sample{Raw: 0, CapDAC: 1}.Picofarads())
	assert.Equal(t, int64(3_125_000), Sample{Raw: 0, CapDAC: 1}.Attofarads())
	assert.Equal(t, int64(1_000_000), Sample{Raw: 524288}.Attofarads())

	for _, s := range []Sample{
		{Raw: 123456, CapDAC: 3},
		{Raw: -400000, CapDAC: 0},
		{Raw: RawMax, CapDAC: 31},
		{Raw: RawMin, CapDAC: 12},
	} {
		assert.InDelta(t, float64(s.Attofarads())/1e6, float64(s.Picofarads()), 1e-3, "%+v", s)
	}
}

func TestMeasureChannel(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x50, W: []byte{0x0B, 0x70, 0x40}},
			{Addr: 0x50, W: []byte{0x0C, 0x04, 0x10}},
			{Addr: 0x50, W: []byte{0x0C}, R: []byte{0x04, 0x11}},
			{Addr: 0x50, W: []byte{0x06}, R: []byte{0x12, 0x34}},
			{Addr: 0x50, W: []byte{0x07}, R: []byte{0x56, 0x00}},
		},
		DontPanic: true,
	}
	var delay recordingDelay
	dev := New(Address, SPS100, &delay)

	raw, err := dev.MeasureChannel(bus, CIN4, 2)
	require.NoError(t, err)
	assert.Equal(t, int32(0x123456), raw)
	assert.Equal(t, recordingDelay{11 * time.Millisecond}, delay)
	assert.NoError(t, bus.Close())
}

func TestMeasureChannelNotComplete(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x50, W: []byte{0x08, 0x10, 0x00}},
			{Addr: 0x50, W: []byte{0x0C, 0x0C, 0x80}},
			{Addr: 0x50, W: []byte{0x0C}, R: []byte{0x0C, 0x80}},
		},
		DontPanic: true,
	}
	var delay recordingDelay
	dev := New(Address, SPS400, &delay)

	_, err := dev.MeasureChannel(bus, CIN1, 0)
	assert.ErrorIs(t, err, ErrMeasurementNotComplete)
	assert.Equal(t, recordingDelay{3 * time.Millisecond}, delay)
	assert.NoError(t, bus.Close())
}

func TestMeasureChannelRejects(t *testing.T) {
	dev := New(Address, SPS100, &recordingDelay{})
	bus := &i2ctest.Playback{DontPanic: true}

	_, err := dev.MeasureChannel(bus, CAPDAC, 0)
	assert.ErrorIs(t, err, ErrInvalidChannel)
	_, err = dev.ReadCapacitance(bus, Disabled)
	assert.ErrorIs(t, err, ErrInvalidChannel)
	_, err = dev.MeasureChannel(bus, CIN1, 32)
	assert.ErrorIs(t, err, ErrCapDACRange)
}

// scripted returns a measure func that serves raw values in order and
// records the offset DAC settings it was called with.
func scripted(values []int32, calls *[]uint8) func(uint8) (int32, error) {
	return func(capdac uint8) (int32, error) {
		*calls = append(*calls, capdac)
		v := values[0]
		if len(values) > 1 {
			values = values[1:]
		}
		return v, nil
	}
}

func TestSearchInRangeImmediately(t *testing.T) {
	var calls []uint8
	res, err := searchCapDAC(0, scripted([]int32{1000}, &calls))
	require.NoError(t, err)
	assert.Equal(t, Result{Status: InRange, Sample: Sample{Raw: 1000}}, res)
	assert.Equal(t, []uint8{0}, calls)
}

func TestSearchStepsUp(t *testing.T) {
	var calls []uint8
	res, err := searchCapDAC(0, scripted([]int32{RawMax, RawMax, RawMax, -5}, &calls))
	require.NoError(t, err)
	assert.Equal(t, InRange, res.Status)
	assert.Equal(t, uint8(3), res.Sample.CapDAC)
	assert.Equal(t, []uint8{0, 1, 2, 3}, calls)
}

func TestSearchUnderflowAtZero(t *testing.T) {
	var calls []uint8
	res, err := searchCapDAC(0, scripted([]int32{RawMin}, &calls))
	require.NoError(t, err)
	assert.Equal(t, Underflow, res.Status)
	assert.Equal(t, []uint8{0}, calls)
}

func TestSearchOverflowAtCeiling(t *testing.T) {
	var calls []uint8
	res, err := searchCapDAC(0, scripted([]int32{RawMax}, &calls))
	require.NoError(t, err)
	assert.Equal(t, Overflow, res.Status)
	assert.Equal(t, uint8(31), res.Sample.CapDAC)
	assert.Len(t, calls, 32)
}

func TestSearchStepsDownFromStart(t *testing.T) {
	var calls []uint8
	res, err := searchCapDAC(10, scripted([]int32{RawMin, RawMin, 42}, &calls))
	require.NoError(t, err)
	assert.Equal(t, InRange, res.Status)
	assert.Equal(t, []uint8{10, 9, 8}, calls)
}

func TestSearchNeverRevisits(t *testing.T) {
	// Saturation that flips sides would bounce between two settings
	var calls []uint8
	res, err := searchCapDAC(5, scripted([]int32{RawMax, RawMin}, &calls))
	require.NoError(t, err)
	assert.Equal(t, Underflow, res.Status)
	assert.Equal(t, []uint8{5, 6}, calls)
}

func TestSearchBounceAboveZero(t *testing.T) {
	// Even settings saturate high and odd ones low
	var calls []uint8
	res, err := searchCapDAC(0, func(capdac uint8) (int32, error) {
		calls = append(calls, capdac)
		if capdac%2 == 0 {
			return RawMax, nil
		}
		return RawMin, nil
	})
	require.NoError(t, err)
	assert.Equal(t, Underflow, res.Status)
	assert.Equal(t, uint8(1), res.Sample.CapDAC, "stopped at the bounce, not at 0")
	assert.Equal(t, []uint8{0, 1}, calls)
}

func TestSearchPropagatesError(t *testing.T) {
	want := errors.New("bus fault")
	calls := 0
	_, err := searchCapDAC(0, func(uint8) (int32, error) {
		calls++
		if calls == 2 {
			return 0, want
		}
		return RawMax, nil
	})
	assert.Equal(t, want, err)
}

func TestReadCapacitanceOverBus(t *testing.T) {
	saturated := []i2ctest.IO{
		{Addr: 0x50, W: []byte{0x08, 0x10, 0x00}},
		{Addr: 0x50, W: []byte{0x0C, 0x04, 0x80}},
		{Addr: 0x50, W: []byte{0x0C}, R: []byte{0x04, 0x88}},
		{Addr: 0x50, W: []byte{0x00}, R: []byte{0x7F, 0xFF}},
		{Addr: 0x50, W: []byte{0x01}, R: []byte{0xFF, 0x00}},
	}
	inRange := []i2ctest.IO{
		{Addr: 0x50, W: []byte{0x08, 0x10, 0x20}},
		{Addr: 0x50, W: []byte{0x0C, 0x04, 0x80}},
		{Addr: 0x50, W: []byte{0x0C}, R: []byte{0x04, 0x88}},
		{Addr: 0x50, W: []byte{0x00}, R: []byte{0x08, 0x00}},
		{Addr: 0x50, W: []byte{0x01}, R: []byte{0x00, 0x00}},
	}
	bus := &i2ctest.Playback{Ops: append(saturated, inRange...), DontPanic: true}
	var delay recordingDelay
	dev := New(Address, SPS100, &delay)

	res, err := dev.ReadCapacitance(bus, CIN1)
	require.NoError(t, err)
	assert.Equal(t, InRange, res.Status)
	assert.Equal(t, Sample{Raw: 0x080000, CapDAC: 1}, res.Sample)
	assert.InDelta(t, 4.125, float64(res.Sample.Picofarads()), 1e-6)
	assert.Len(t, delay, 2)
	assert.NoError(t, bus.Close())
}

func TestIdentification(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x50, W: []byte{0xFE}, R: []byte{0x54, 0x49}},
			{Addr: 0x50, W: []byte{0xFF}, R: []byte{0x10, 0x04}},
			{Addr: 0x50, W: []byte{0x0C, 0x84, 0x00}},
		},
		DontPanic: true,
	}
	dev := New(Address, SPS100, &recordingDelay{})

	mfg, err := dev.ManufacturerID(bus)
	require.NoError(t, err)
	assert.Equal(t, ManufacturerTI, mfg)

	id, err := dev.DeviceID(bus)
	require.NoError(t, err)
	assert.Equal(t, DeviceFDC1004, id)

	require.NoError(t, dev.Reset(bus))
	assert.NoError(t, bus.Close())
}

func TestCalibrationRegisters(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x50, W: []byte{0x0E, 0x12, 0x34}},
			{Addr: 0x50, W: []byte{0x13, 0x40, 0x00}},
		},
		DontPanic: true,
	}
	dev := New(Address, SPS100, &recordingDelay{})

	require.NoError(t, dev.SetOffsetCalibration(bus, CIN2, 0x1234))
	require.NoError(t, dev.SetGainCalibration(bus, CIN3, 0x4000))
	assert.ErrorIs(t, dev.SetOffsetCalibration(bus, CAPDAC, 0), ErrInvalidChannel)
	assert.ErrorIs(t, dev.SetGainCalibration(bus, Disabled, 0), ErrInvalidChannel)
	assert.NoError(t, bus.Close())
}
