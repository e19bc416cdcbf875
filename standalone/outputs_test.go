package standalone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iox/core"
	"iox/drivers/shiftreg"
)

// latch reconstructs latched frames from the three shift register lines.
type latch struct {
	data   bool
	shift  uint16
	frames []uint16
}

func (l *latch) device() *shiftreg.Device {
	return shiftreg.New(
		core.PinFunc(func(h bool) { l.data = h }),
		core.PinFunc(func(h bool) {
			if h {
				l.shift >>= 1
				if l.data {
					l.shift |= 1 << 15
				}
			}
		}),
		core.PinFunc(func(h bool) {
			if h {
				l.frames = append(l.frames, l.shift)
			}
		}),
		noDelay{},
	)
}

func TestPulserSteps(t *testing.T) {
	l := &latch{}
	var led []bool
	p, err := NewPulser(
		shiftreg.NewShiftRegister(l.device()),
		shiftreg.NewDeferredPin(core.PinFunc(func(h bool) { led = append(led, h) })),
		12, 13,
	)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		p.Step()
	}
	assert.Equal(t, []uint16{1 << 12, 1 << 13, 1 << 12}, l.frames)
	assert.Equal(t, []bool{false, true, false}, led)
}

func TestNewPulserRejects(t *testing.T) {
	reg := shiftreg.NewShiftRegister((&latch{}).device())

	_, err := NewPulser(reg, nil)
	assert.Error(t, err)
	_, err = NewPulser(reg, nil, 16)
	assert.ErrorIs(t, err, shiftreg.ErrIndexOutOfRange)
}

type sliceRecorder struct{ timing core.PWMTiming }

func (s *sliceRecorder) ConfigureSlice(_ core.PWMSlice, t core.PWMTiming) error {
	s.timing = t
	return nil
}

func (s *sliceRecorder) DisableSlice(core.PWMSlice) error { return nil }

func TestGlowRamps(t *testing.T) {
	drv := &sliceRecorder{}
	out, err := core.NewPWMOutput(drv, 6, 10000, 20, 0)
	require.NoError(t, err)
	g := NewGlow(out, 0.3)

	var duties []float32
	for i := 0; i < 5; i++ {
		require.NoError(t, g.Step())
		duties = append(duties, g.Duty())
	}
	assert.Equal(t, []float32{0.1, 0.2, 0.3, 0, 0.1}, duties)
	assert.Equal(t, uint16(12), drv.timing.CompareB, "0.1% of 12499")
	assert.Equal(t, uint16(2500), drv.timing.CompareA)
}
