// Package protocol implements the telemetry line format shared by the
// firmware and the host tools.
//
// A record is one line:
//
//	$kind,key=value,key=value*CRC
//
// where CRC is the CRC16 of the bytes between '$' and '*' as four
// upper-case hex digits. Lines that do not start with '$' are log output.
package protocol

// Version represents the firmware version reported in the hello record
const Version = "0.1.0"

// Line framing
const (
	RecordStart  = '$'
	ChecksumMark = '*'
	FieldSep     = ','
	KeyValueSep  = '='

	// LineMax bounds an encoded record including the line ending
	LineMax = 160
)

// Record kinds emitted by the firmware
const (
	KindHello = "hello"
	KindADC   = "adc"
	KindCap   = "cap"
	KindNTC   = "ntc"
)
