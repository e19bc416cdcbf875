//go:build tinygo

package core

import "sync/atomic"

// The USB reader goroutine and the main loop both read the tick count
var systemTicks atomic.Uint32

// getSystemTicks returns the last stored tick count
func getSystemTicks() uint32 {
	return systemTicks.Load()
}

// setSystemTicks stores the tick count
func setSystemTicks(ticks uint32) {
	systemTicks.Store(ticks)
}
