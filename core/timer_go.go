//go:build !tinygo

package core

var systemTicks uint32

// getSystemTicks returns the last stored tick count
func getSystemTicks() uint32 {
	return systemTicks
}

// setSystemTicks stores the tick count
func setSystemTicks(ticks uint32) {
	systemTicks = ticks
}
