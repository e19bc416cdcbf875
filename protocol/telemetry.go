package protocol

import (
	"errors"
	"strconv"
	"strings"
)

var (
	ErrMalformed   = errors.New("protocol: malformed record")
	ErrBadChecksum = errors.New("protocol: checksum mismatch")
	ErrNoField     = errors.New("protocol: no such field")
)

// Field is one key=value pair of a record.
type Field struct {
	Key   string
	Value string
}

// Record is a decoded telemetry line.
type Record struct {
	Kind   string
	Fields []Field
}

// NewRecord returns an empty record of kind.
func NewRecord(kind string) *Record {
	return &Record{Kind: kind}
}

// Add appends key=value. Keys and values must not contain any of ",=*$".
func (r *Record) Add(key, value string) *Record {
	r.Fields = append(r.Fields, Field{Key: key, Value: value})
	return r
}

func (r *Record) AddInt(key string, v int64) *Record {
	return r.Add(key, strconv.FormatInt(v, 10))
}

func (r *Record) AddUint(key string, v uint64) *Record {
	return r.Add(key, strconv.FormatUint(v, 10))
}

// AddFloat appends v with prec digits after the decimal point.
func (r *Record) AddFloat(key string, v float32, prec int) *Record {
	return r.Add(key, strconv.FormatFloat(float64(v), 'f', prec, 32))
}

// Get returns the value of key.
func (r *Record) Get(key string) (string, bool) {
	for _, f := range r.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Float returns the value of key parsed as a float.
func (r *Record) Float(key string) (float64, error) {
	v, ok := r.Get(key)
	if !ok {
		return 0, ErrNoField
	}
	return strconv.ParseFloat(v, 64)
}

// Int returns the value of key parsed as a decimal integer.
func (r *Record) Int(key string) (int64, error) {
	v, ok := r.Get(key)
	if !ok {
		return 0, ErrNoField
	}
	return strconv.ParseInt(v, 10, 64)
}

const hexDigits = "0123456789ABCDEF"

// AppendRecord appends the encoded record, without a line ending, to dst.
func AppendRecord(dst []byte, r *Record) []byte {
	dst = append(dst, RecordStart)
	body := len(dst)
	dst = append(dst, r.Kind...)
	for _, f := range r.Fields {
		dst = append(dst, FieldSep)
		dst = append(dst, f.Key...)
		dst = append(dst, KeyValueSep)
		dst = append(dst, f.Value...)
	}
	crc := CRC16(dst[body:])
	return append(dst, ChecksumMark,
		hexDigits[crc>>12&0xF], hexDigits[crc>>8&0xF],
		hexDigits[crc>>4&0xF], hexDigits[crc&0xF])
}

// Encode returns the encoded record without a line ending.
func (r *Record) Encode() string {
	return string(AppendRecord(make([]byte, 0, LineMax), r))
}

// IsRecord reports whether line looks like a record rather than log output.
func IsRecord(line string) bool {
	return len(line) > 0 && line[0] == RecordStart
}

// Decode parses one line. Trailing whitespace is ignored.
func Decode(line string) (*Record, error) {
	line = strings.TrimRight(line, "\r\n\t ")
	if !IsRecord(line) {
		return nil, ErrMalformed
	}
	star := strings.LastIndexByte(line, ChecksumMark)
	if star < 0 || len(line)-star != 5 {
		return nil, ErrMalformed
	}
	want, err := strconv.ParseUint(line[star+1:], 16, 16)
	if err != nil {
		return nil, ErrMalformed
	}
	body := line[1:star]
	if CRC16String(body) != uint16(want) {
		return nil, ErrBadChecksum
	}

	parts := strings.Split(body, string(FieldSep))
	if parts[0] == "" {
		return nil, ErrMalformed
	}
	r := &Record{Kind: parts[0], Fields: make([]Field, 0, len(parts)-1)}
	for _, p := range parts[1:] {
		key, value, ok := strings.Cut(p, string(KeyValueSep))
		if !ok || key == "" {
			return nil, ErrMalformed
		}
		r.Fields = append(r.Fields, Field{Key: key, Value: value})
	}
	return r, nil
}
