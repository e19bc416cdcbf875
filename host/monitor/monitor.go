// Package monitor reads the firmware console and splits it into telemetry
// records and log lines.
package monitor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"iox/protocol"
)

// DefaultBufferSize is the default size of the events channel.
const DefaultBufferSize = 64

// Event is one console line. Exactly one of Record and Log is set.
type Event struct {
	Time   time.Time
	Record *protocol.Record
	Log    string
}

// Stats counts what the monitor has seen.
type Stats struct {
	Records     int
	Logs        int
	BadChecksum int
	Malformed   int
	Dropped     int
}

// Monitor reads lines from a console until its context is cancelled or the
// reader fails.
type Monitor struct {
	r      io.Reader
	events chan Event
	now    func() time.Time

	mu    sync.Mutex
	stats Stats
}

// New returns a monitor reading from r. bufSize 0 uses DefaultBufferSize.
func New(r io.Reader, bufSize int) *Monitor {
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}
	return &Monitor{
		r:      r,
		events: make(chan Event, bufSize),
		now:    time.Now,
	}
}

// Events returns the channel events are delivered on. It is closed when Run
// returns.
func (m *Monitor) Events() <-chan Event {
	return m.events
}

// Stats returns a snapshot of the counters.
func (m *Monitor) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// Run reads until ctx is done or the reader returns an error. io.EOF is not
// reported.
func (m *Monitor) Run(ctx context.Context) error {
	defer close(m.events)

	scanner := bufio.NewScanner(m.r)
	scanner.Buffer(make([]byte, protocol.LineMax), 4096)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		ev, ok := m.parse(line)
		if !ok {
			continue
		}

		select {
		case m.events <- ev:
		case <-ctx.Done():
			return nil
		default:
			m.count(func(s *Stats) { s.Dropped++ })
		}
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read console: %w", err)
	}
	return nil
}

func (m *Monitor) parse(line string) (Event, bool) {
	ev := Event{Time: m.now()}
	if !protocol.IsRecord(line) {
		ev.Log = line
		m.count(func(s *Stats) { s.Logs++ })
		return ev, true
	}

	rec, err := protocol.Decode(line)
	switch {
	case errors.Is(err, protocol.ErrBadChecksum):
		m.count(func(s *Stats) { s.BadChecksum++ })
		log.Printf("Checksum mismatch, dropping %q", line)
		return ev, false
	case err != nil:
		m.count(func(s *Stats) { s.Malformed++ })
		log.Printf("Failed to parse line '%s': %v", line, err)
		return ev, false
	}
	ev.Record = rec
	m.count(func(s *Stats) { s.Records++ })
	return ev, true
}

func (m *Monitor) count(fn func(*Stats)) {
	m.mu.Lock()
	fn(&m.stats)
	m.mu.Unlock()
}
