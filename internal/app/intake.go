package app

import (
	"io"
	"log"

	"github.com/relabs-tech/satbadge/internal/gps"
	"github.com/relabs-tech/satbadge/internal/nmea"
)

// intake is the producer side of the pipeline: raw receiver bytes are
// assembled into sentences, parsed, and folded into the fix store.
// Parse failures are tallied and the line discarded; they never stop
// the intake. Returns when the reader does.
func intake(r io.Reader, store *gps.Store, counters *nmea.Counters) {
	var asm nmea.Assembler
	buf := make([]byte, 256)

	for {
		n, err := r.Read(buf)
		for _, c := range buf[:n] {
			line, ferr := asm.Feed(c)
			if ferr != nil {
				counters.Note(ferr)
				continue
			}
			if line == nil {
				continue
			}
			rec, perr := nmea.Parse(line)
			counters.Note(perr)
			if perr != nil {
				continue
			}
			store.Update(rec)
		}
		if err != nil {
			if err != io.EOF {
				log.Printf("intake: gps read: %v", err)
			}
			return
		}
	}
}
