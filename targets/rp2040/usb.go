//go:build rp2040

package main

import (
	"machine"
)

// Consecutive failed writes before pending console output is dropped
const maxWriteFailures = 10

var usbWriteFailures uint32

// InitUSB configures the USB CDC console. The descriptors come from the
// TinyGo runtime.
func InitUSB() {
	machine.Serial.Configure(machine.UARTConfig{})
}

// USBAvailable returns the number of bytes available to read from USB
func USBAvailable() int {
	return machine.Serial.Buffered()
}

// USBRead reads a single byte from USB
func USBRead() (byte, error) {
	return machine.Serial.ReadByte()
}

// USBWriteBytes writes multiple bytes to USB
func USBWriteBytes(data []byte) (int, error) {
	return machine.Serial.Write(data)
}

// writeConsole sends data, giving up after repeated failures so a closed
// port does not stall the main loop.
func writeConsole(data []byte) {
	written := 0
	for written < len(data) {
		n, err := USBWriteBytes(data[written:])
		if err != nil || n == 0 {
			usbWriteFailures++
			if usbWriteFailures > maxWriteFailures {
				usbWriteFailures = 0
				return
			}
			continue
		}
		written += n
	}
	usbWriteFailures = 0
}

// drainInput discards host input; the console is output only.
func drainInput() {
	for USBAvailable() > 0 {
		if _, err := USBRead(); err != nil {
			return
		}
	}
}
