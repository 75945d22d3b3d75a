package gps

import "time"

// Validity describes how much trust the current Fix deserves.
type Validity int

const (
	// Valid means the receiver reports an active fix with healthy
	// dilution.
	Valid Validity = iota
	// NoSignal means the receiver lost the fix; the last known
	// coordinates are retained so the UI can show a stale position.
	NoSignal
	// Degraded means the fix is active but the dilution of precision is
	// poor enough that the position should be treated as approximate.
	Degraded
)

func (v Validity) String() string {
	switch v {
	case Valid:
		return "valid"
	case NoSignal:
		return "no signal"
	case Degraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// Fix is a single resolved position/velocity reading. Coordinate and
// velocity fields are only meaningful while Validity is Valid or
// Degraded; after signal loss they hold the last known values.
type Fix struct {
	Lat        float64
	Lon        float64
	Time       time.Time
	SpeedKnots float64
	CourseDeg  float64
	HasSpeed   bool
	HasCourse  bool
	Validity   Validity
}
