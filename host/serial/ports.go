package serial

import (
	"fmt"
	"sort"
	"strings"

	bugserial "go.bug.st/serial"
)

// Ports returns the serial ports present on the host, sorted by name.
func Ports() ([]string, error) {
	ports, err := bugserial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	sort.Strings(ports)
	return ports, nil
}

// Guess picks the most likely firmware console among ports: the first
// USB CDC ACM device, else the first port.
func Guess(ports []string) (string, bool) {
	for _, p := range ports {
		if strings.Contains(p, "ttyACM") || strings.Contains(p, "usbmodem") {
			return p, true
		}
	}
	if len(ports) > 0 {
		return ports[0], true
	}
	return "", false
}
