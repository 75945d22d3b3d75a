package nmea

// Assembler accumulates raw receiver bytes into complete sentences
// using a single fixed-capacity buffer. A sentence starts at '$' and
// completes at '\n'; anything between a buffer overrun and the next
// terminator is discarded and reported once as ErrTooLong. The zero
// value is ready to use.
type Assembler struct {
	buf        [MaxSentenceLen]byte
	n          int
	discarding bool
}

// Feed consumes one byte. When the byte completes a sentence, Feed
// returns it with CR/LF stripped; the returned slice aliases the
// internal buffer and is only valid until the next call.
func (a *Assembler) Feed(b byte) ([]byte, error) {
	switch {
	case b == '$':
		// A new start delimiter always resynchronizes, even mid-line.
		a.buf[0] = b
		a.n = 1
		a.discarding = false
		return nil, nil

	case b == '\n':
		if a.discarding {
			a.discarding = false
			a.n = 0
			return nil, ErrTooLong
		}
		line := a.buf[:a.n]
		a.n = 0
		if len(line) > 0 && line[len(line)-1] == '\r' {
			line = line[:len(line)-1]
		}
		if len(line) == 0 {
			return nil, nil
		}
		return line, nil

	case a.discarding || a.n == 0:
		// Waiting for the next '$' (noise, or an overrun in progress).
		return nil, nil

	case a.n == len(a.buf):
		a.n = 0
		a.discarding = true
		return nil, nil

	default:
		a.buf[a.n] = b
		a.n++
		return nil, nil
	}
}
