package gps

import (
	"sync"
	"time"

	"github.com/relabs-tech/satbadge/internal/nmea"
)

// DegradedHDOP is the horizontal dilution above which an otherwise
// active fix is downgraded to Degraded.
const DegradedHDOP = 5.0

// Store is the single-slot holder of the most recent fix, written by
// the intake goroutine and read by the render loop. The mutex is held
// only for the copy-in/copy-out of one record, never across parsing or
// rendering.
type Store struct {
	mu        sync.Mutex
	now       func() time.Time
	fix       Fix
	hasFix    bool
	updatedAt time.Time

	quality    int
	satellites int
	hdop       float64
	hasHDOP    bool
}

// Snapshot is a copy of the store at one point in time. HasFix is false
// until the first accepted position record; callers branch on it rather
// than treating the condition as an error.
type Snapshot struct {
	Fix        Fix
	HasFix     bool
	Age        time.Duration
	Quality    int
	Satellites int
	HDOP       float64
	HasHDOP    bool
}

func NewStore() *Store {
	return &Store{now: time.Now}
}

// NewStoreWithClock injects the time source, for deterministic tests.
func NewStoreWithClock(now func() time.Time) *Store {
	return &Store{now: now}
}

// Update folds one parsed record into the store. An active position
// replaces the fix and resets its age; a void position marks NoSignal
// while retaining the last coordinates; a status record refreshes
// quality metadata and may degrade or restore validity.
func (s *Store) Update(rec nmea.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch rec.Kind {
	case nmea.KindPosition:
		if !rec.Active {
			if s.hasFix {
				s.fix.Validity = NoSignal
			}
			return
		}
		s.fix = Fix{
			Lat:        rec.Lat,
			Lon:        rec.Lon,
			Time:       rec.Time,
			SpeedKnots: rec.SpeedKnots,
			CourseDeg:  rec.CourseDeg,
			HasSpeed:   rec.HasSpeed,
			HasCourse:  rec.HasCourse,
			Validity:   Valid,
		}
		if s.hasHDOP && s.hdop > DegradedHDOP {
			s.fix.Validity = Degraded
		}
		s.hasFix = true
		s.updatedAt = s.now()

	case nmea.KindStatus:
		s.quality = rec.Quality
		s.satellites = rec.Satellites
		if rec.HasHDOP {
			s.hdop = rec.HDOP
			s.hasHDOP = true
		}
		if !s.hasFix {
			return
		}
		switch {
		case rec.Quality == 0:
			s.fix.Validity = NoSignal
		case rec.HasHDOP && rec.HDOP > DegradedHDOP:
			s.fix.Validity = Degraded
		case s.fix.Validity == Degraded:
			s.fix.Validity = Valid
		}
	}
}

// Read returns a copy of the current fix and its age. Before any update
// it returns the explicit no-fix snapshot.
func (s *Store) Read() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Fix:        s.fix,
		HasFix:     s.hasFix,
		Quality:    s.quality,
		Satellites: s.satellites,
		HDOP:       s.hdop,
		HasHDOP:    s.hasHDOP,
	}
	if s.hasFix {
		snap.Age = s.now().Sub(s.updatedAt)
	}
	return snap
}

// Stale reports whether the fix is old enough for the stale display
// treatment. A snapshot with no fix at all is not stale; it is absent.
func (snap Snapshot) Stale(threshold time.Duration) bool {
	return snap.HasFix && snap.Age > threshold
}
