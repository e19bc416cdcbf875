package core

import (
	"errors"
	"sync"
	"testing"
)

type countingBus struct {
	inFlight int
	overlap  bool
	calls    int
}

func (b *countingBus) Tx(addr uint16, w, r []byte) error {
	b.inFlight++
	if b.inFlight > 1 {
		b.overlap = true
	}
	b.calls++
	b.inFlight--
	return nil
}

func TestSharedI2CSerializesCalls(t *testing.T) {
	bus := &countingBus{}
	shared := NewSharedI2C(bus)

	var wg sync.WaitGroup
	var mu sync.Mutex
	active := 0
	overlap := false

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = shared.Do(func(b I2C) error {
				mu.Lock()
				active++
				if active > 1 {
					overlap = true
				}
				mu.Unlock()

				for j := 0; j < 3; j++ {
					_ = b.Tx(0x48, []byte{0x01}, nil)
				}

				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	if overlap || bus.overlap {
		t.Error("Driver calls overlapped on the shared bus")
	}
	if bus.calls != 24 {
		t.Errorf("Expected 24 transactions, got %d", bus.calls)
	}
}

func TestSharedI2CReturnsError(t *testing.T) {
	shared := NewSharedI2C(&countingBus{})
	want := errors.New("nak")

	if err := shared.Do(func(I2C) error { return want }); err != want {
		t.Errorf("Expected %v, got %v", want, err)
	}
}
