//go:build rp2040

package main

import (
	"machine"
	"time"

	"iox/core"
	"iox/drivers/shiftreg"
	"iox/standalone"
)

// Task periods
const (
	samplePeriodMS = 1000
	pulsePeriodMS  = 5000
	glowPeriodMS   = 10
)

func main() {
	// Clear any watchdog left running across a reset
	if err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0}); err != nil {
		return
	}

	InitUSB()
	InitClock()

	core.SetDebugWriter(func(s string) {
		writeConsole([]byte(s + "\r\n"))
	})
	core.InitAsyncDebug()

	data, shift, storage := initBoard()
	reg := shiftreg.NewShiftRegister(shiftreg.New(data, shift, storage, core.SystemDelay))
	reg.ClearThenFlush()
	led := shiftreg.NewDeferredPin(configureOutput(pinLED, false))

	bus, err := initI2C()
	if err != nil {
		fail("i2c init failed", err)
	}
	manager, err := standalone.NewManager(standalone.DefaultConfig(), core.NewSharedI2C(bus), core.SystemDelay)
	if err != nil {
		fail("sensor setup failed", err)
	}
	if err := manager.Initialize(); err != nil {
		// The cycle still runs and logs each failed read
		core.Error("sensor init failed", err)
	}

	pulser, err := standalone.NewPulser(reg, led, outJP2_FA7, outJP2_FA8)
	if err != nil {
		fail("pulser setup failed", err)
	}

	pinGlow.Configure(machine.PinConfig{Mode: machine.PinPWM})
	glowOut, err := core.NewPWMOutput(PWMDriver{}, glowSlice, glowFrequency, glowDuty, glowDuty)
	if err != nil {
		fail("pwm setup failed", err)
	}
	glow := standalone.NewGlow(glowOut, glowMax)

	now := core.GetTime()
	core.ScheduleTimer(core.Every(now+core.TimerFromMS(samplePeriodMS), core.TimerFromMS(samplePeriodMS), func() {
		manager.Sample()
	}))
	core.ScheduleTimer(core.Every(now, core.TimerFromMS(pulsePeriodMS), pulser.Step))
	core.ScheduleTimer(core.Every(now, core.TimerFromMS(glowPeriodMS), func() {
		if err := glow.Step(); err != nil {
			core.Error("glow", err)
		}
	}))

	core.Info("iox running")
	for {
		core.ProcessTimers()

		if out := manager.GetOutput(); out != nil {
			writeConsole(out)
		}
		drainInput()

		// Yield to the debug writer and USB stack
		time.Sleep(100 * time.Microsecond)
	}
}

// fail logs err and blinks the LED fast forever.
func fail(msg string, err error) {
	core.Error(msg, err)
	led := configureOutput(pinLED, false)
	for {
		led.High()
		time.Sleep(100 * time.Millisecond)
		led.Low()
		time.Sleep(100 * time.Millisecond)
	}
}
