package core

import "sync"

// I2CAddress is a 7-bit I2C device address.
type I2CAddress uint8

// I2C is the bus interface that device drivers use.
// It is satisfied by TinyGo's *machine.I2C, tinygo.org/x/drivers.I2C and
// periph.io's i2c.Bus, so the same drivers run on the board and on a host.
type I2C interface {
	// Tx writes w to the device at addr and then reads len(r) bytes into r,
	// with a repeated start in between. Either slice may be empty.
	Tx(addr uint16, w, r []byte) error
}

// SharedI2C guards a single bus so that a whole driver call runs without
// another driver interleaving transactions on the wire.
type SharedI2C struct {
	mu  sync.Mutex
	bus I2C
}

// NewSharedI2C wraps bus. The caller must not use bus directly afterwards.
func NewSharedI2C(bus I2C) *SharedI2C {
	return &SharedI2C{bus: bus}
}

// Do runs fn with exclusive access to the bus. The handle passed to fn is
// only valid until fn returns.
func (s *SharedI2C) Do(fn func(bus I2C) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(s.bus)
}
