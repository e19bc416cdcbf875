package monitor

import (
	"fmt"
	"strconv"

	"iox/protocol"
)

// ADCReading is one ADS111x channel reading.
type ADCReading struct {
	Addr  uint8
	Mux   string
	Volts float64
}

// CapReading is one FDC1004 auto-ranged reading.
type CapReading struct {
	Channel    string
	CapDAC     int
	Raw        int64
	Picofarads float64
	Status     string
}

// NTCReading is one thermistor reading.
type NTCReading struct {
	Channel int
	Ohm     float64
	Celsius float64
}

// ParseADC converts an adc record.
func ParseADC(rec *protocol.Record) (ADCReading, error) {
	if rec.Kind != protocol.KindADC {
		return ADCReading{}, fmt.Errorf("expected %s record, got %s", protocol.KindADC, rec.Kind)
	}
	addr, err := rec.Int("addr")
	if err != nil {
		return ADCReading{}, fmt.Errorf("invalid addr: %w", err)
	}
	mux, _ := rec.Get("mux")
	v, err := rec.Float("v")
	if err != nil {
		return ADCReading{}, fmt.Errorf("invalid voltage: %w", err)
	}
	return ADCReading{Addr: uint8(addr), Mux: mux, Volts: v}, nil
}

// ParseCap converts a cap record.
func ParseCap(rec *protocol.Record) (CapReading, error) {
	if rec.Kind != protocol.KindCap {
		return CapReading{}, fmt.Errorf("expected %s record, got %s", protocol.KindCap, rec.Kind)
	}
	var r CapReading
	r.Channel, _ = rec.Get("ch")
	r.Status, _ = rec.Get("status")

	capdac, err := rec.Int("capdac")
	if err != nil {
		return CapReading{}, fmt.Errorf("invalid capdac: %w", err)
	}
	if capdac < 0 || capdac > 31 {
		return CapReading{}, fmt.Errorf("capdac out of range: %d (max 31)", capdac)
	}
	r.CapDAC = int(capdac)

	if r.Raw, err = rec.Int("raw"); err != nil {
		return CapReading{}, fmt.Errorf("invalid raw: %w", err)
	}
	if r.Picofarads, err = rec.Float("pf"); err != nil {
		return CapReading{}, fmt.Errorf("invalid pf: %w", err)
	}
	return r, nil
}

// ParseNTC converts an ntc record.
func ParseNTC(rec *protocol.Record) (NTCReading, error) {
	if rec.Kind != protocol.KindNTC {
		return NTCReading{}, fmt.Errorf("expected %s record, got %s", protocol.KindNTC, rec.Kind)
	}
	ch, err := rec.Int("ch")
	if err != nil {
		return NTCReading{}, fmt.Errorf("invalid channel: %w", err)
	}
	ohm, err := rec.Float("ohm")
	if err != nil {
		return NTCReading{}, fmt.Errorf("invalid resistance: %w", err)
	}
	c, err := rec.Float("c")
	if err != nil {
		return NTCReading{}, fmt.Errorf("invalid temperature: %w", err)
	}
	return NTCReading{Channel: int(ch), Ohm: ohm, Celsius: c}, nil
}

// Format renders a record for the terminal.
func Format(rec *protocol.Record) string {
	switch rec.Kind {
	case protocol.KindADC:
		if r, err := ParseADC(rec); err == nil {
			return fmt.Sprintf("ADC 0x%02X %-8s %9.5f V", r.Addr, r.Mux, r.Volts)
		}
	case protocol.KindCap:
		if r, err := ParseCap(rec); err == nil {
			return fmt.Sprintf("CAP %-4s capdac=%2d %10.4f pF %s", r.Channel, r.CapDAC, r.Picofarads, r.Status)
		}
	case protocol.KindNTC:
		if r, err := ParseNTC(rec); err == nil {
			return fmt.Sprintf("NTC %d %10.1f ohm %6.2f °C", r.Channel, r.Ohm, r.Celsius)
		}
	}
	out := rec.Kind
	for _, f := range rec.Fields {
		out += " " + f.Key + "=" + strconv.Quote(f.Value)
	}
	return out
}
