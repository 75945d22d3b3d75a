package nmea

import (
	"errors"
	"sync"
)

// Counters tallies parse outcomes per error class. It is written from
// the intake goroutine and read from the render loop, so access is
// mutex-guarded; each call holds the lock only for the increment.
type Counters struct {
	mu          sync.Mutex
	lines       uint64
	parsed      uint64
	badChecksum uint64
	malformed   uint64
	unsupported uint64
	tooLong     uint64
	lastErr     string
}

// CounterSnapshot is a copy of the tallies at one point in time.
type CounterSnapshot struct {
	Lines       uint64
	Parsed      uint64
	BadChecksum uint64
	Malformed   uint64
	Unsupported uint64
	TooLong     uint64
	LastErr     string
}

// Note records the outcome of one parse attempt; a nil error counts as
// an accepted sentence.
func (c *Counters) Note(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines++
	if err == nil {
		c.parsed++
		return
	}
	var mf MalformedError
	switch {
	case errors.Is(err, ErrBadChecksum):
		c.badChecksum++
	case errors.Is(err, ErrUnsupported):
		c.unsupported++
	case errors.Is(err, ErrTooLong):
		c.tooLong++
	case errors.As(err, &mf):
		c.malformed++
	}
	c.lastErr = err.Error()
}

func (c *Counters) Snapshot() CounterSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CounterSnapshot{
		Lines:       c.lines,
		Parsed:      c.parsed,
		BadChecksum: c.badChecksum,
		Malformed:   c.malformed,
		Unsupported: c.unsupported,
		TooLong:     c.tooLong,
		LastErr:     c.lastErr,
	}
}
