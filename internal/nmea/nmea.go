// Package nmea parses the subset of NMEA 0183 the badge cares about:
// RMC for position/velocity and GGA for fix quality. Parsing is strict
// and allocation-free beyond the returned record, so it is safe to run
// on every byte arriving from the receiver.
package nmea

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// MaxSentenceLen is the NMEA 0183 maximum sentence length including the
// leading '$' and the checksum field, excluding CR/LF.
const MaxSentenceLen = 82

var (
	ErrBadChecksum = errors.New("nmea: checksum mismatch")
	ErrUnsupported = errors.New("nmea: unsupported sentence type")
	ErrTooLong     = errors.New("nmea: sentence exceeds maximum length")
)

// MalformedError reports a field that failed strict validation. Field is
// the comma-separated field index within the sentence, with 0 being the
// talker/type field.
type MalformedError struct {
	Field int
}

func (e MalformedError) Error() string {
	return fmt.Sprintf("nmea: malformed field %d", e.Field)
}

// Kind distinguishes the two record shapes the parser emits.
type Kind int

const (
	// KindPosition is an RMC-derived position/velocity record.
	KindPosition Kind = iota
	// KindStatus is a GGA-derived fix quality record.
	KindStatus
)

// Record is the parsed form of one accepted sentence. Position fields
// are meaningful for KindPosition, status fields for KindStatus.
type Record struct {
	Kind Kind

	// Position (RMC). Active is false for a void sentence, which marks
	// loss of signal; coordinate fields are only set when Active.
	Active     bool
	Lat        float64
	Lon        float64
	Time       time.Time
	SpeedKnots float64
	CourseDeg  float64
	HasSpeed   bool
	HasCourse  bool

	// Status (GGA).
	Quality    int
	Satellites int
	HDOP       float64
	HasHDOP    bool
}

// Parse validates and decodes one complete sentence, stripped of its
// line terminator. The checksum is verified before any field is
// interpreted; on any error no partial record is returned.
func Parse(line []byte) (Record, error) {
	if len(line) > MaxSentenceLen {
		return Record{}, ErrTooLong
	}
	s := string(line)
	if !strings.HasPrefix(s, "$") {
		return Record{}, MalformedError{Field: 0}
	}
	star := strings.LastIndexByte(s, '*')
	if star == -1 || len(s)-star-1 < 2 {
		return Record{}, ErrBadChecksum
	}
	payload := s[1:star]
	want, err := strconv.ParseUint(s[star+1:star+3], 16, 8)
	if err != nil {
		return Record{}, ErrBadChecksum
	}
	got := byte(0)
	for i := 0; i < len(payload); i++ {
		got ^= payload[i]
	}
	if got != byte(want) {
		return Record{}, ErrBadChecksum
	}

	f := strings.Split(payload, ",")
	typ := f[0]
	if len(typ) < 3 {
		return Record{}, MalformedError{Field: 0}
	}
	// Accept any talker (GP, GN, GL, ...); the last three characters
	// name the sentence.
	switch strings.ToUpper(typ[len(typ)-3:]) {
	case "RMC":
		return parseRMC(f)
	case "GGA":
		return parseGGA(f)
	default:
		return Record{}, ErrUnsupported
	}
}

// RMC fields (NMEA 0183 v2.3):
//
//	0: talker+type
//	1: time (hhmmss.sss)
//	2: status (A=active, V=void)
//	3: latitude (ddmm.mmmm)
//	4: N/S
//	5: longitude (dddmm.mmmm)
//	6: E/W
//	7: speed over ground (knots)
//	8: course over ground (deg)
//	9: date (ddmmyy)
func parseRMC(f []string) (Record, error) {
	if len(f) < 10 {
		return Record{}, MalformedError{Field: len(f)}
	}
	rec := Record{Kind: KindPosition}

	switch strings.TrimSpace(f[2]) {
	case "A":
		rec.Active = true
	case "V":
		// Void sentences legitimately carry empty coordinate fields;
		// the record marks loss of signal and nothing else.
		return rec, nil
	default:
		return Record{}, MalformedError{Field: 2}
	}

	lat, err := parseLatLon(f[3], f[4], 90)
	if err != nil {
		return Record{}, MalformedError{Field: 3}
	}
	lon, err := parseLatLon(f[5], f[6], 180)
	if err != nil {
		return Record{}, MalformedError{Field: 5}
	}
	rec.Lat = lat
	rec.Lon = lon

	when, err := parseTimestamp(f[1], f[9])
	if err != nil {
		return Record{}, err
	}
	rec.Time = when

	if v := strings.TrimSpace(f[7]); v != "" {
		gs, err := strconv.ParseFloat(v, 64)
		if err != nil || gs < 0 {
			return Record{}, MalformedError{Field: 7}
		}
		rec.SpeedKnots = gs
		rec.HasSpeed = true
	}
	if v := strings.TrimSpace(f[8]); v != "" {
		trk, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Record{}, MalformedError{Field: 8}
		}
		rec.CourseDeg = math.Mod(trk+360.0, 360.0)
		rec.HasCourse = true
	}
	return rec, nil
}

// GGA fields:
//
//	0: talker+type
//	1: time
//	2: latitude
//	3: N/S
//	4: longitude
//	5: E/W
//	6: fix quality (0=invalid)
//	7: number of satellites
//	8: HDOP
func parseGGA(f []string) (Record, error) {
	if len(f) < 9 {
		return Record{}, MalformedError{Field: len(f)}
	}
	rec := Record{Kind: KindStatus}

	q, err := strconv.Atoi(strings.TrimSpace(f[6]))
	if err != nil || q < 0 {
		return Record{}, MalformedError{Field: 6}
	}
	rec.Quality = q

	if v := strings.TrimSpace(f[7]); v != "" {
		sats, err := strconv.Atoi(v)
		if err != nil || sats < 0 {
			return Record{}, MalformedError{Field: 7}
		}
		rec.Satellites = sats
	}
	if v := strings.TrimSpace(f[8]); v != "" {
		hdop, err := strconv.ParseFloat(v, 64)
		if err != nil || hdop < 0 {
			return Record{}, MalformedError{Field: 8}
		}
		rec.HDOP = hdop
		rec.HasHDOP = true
	}
	return rec, nil
}

// parseLatLon decodes ddmm.mmmm (or dddmm.mmmm) plus hemisphere into
// signed decimal degrees and range-checks against limit.
func parseLatLon(v, hemi string, limit float64) (float64, error) {
	v = strings.TrimSpace(v)
	hemi = strings.TrimSpace(strings.ToUpper(hemi))
	if v == "" {
		return 0, errors.New("empty coordinate")
	}
	if hemi != "N" && hemi != "S" && hemi != "E" && hemi != "W" {
		return 0, errors.New("bad hemisphere")
	}

	dot := strings.IndexByte(v, '.')
	intPart := v
	if dot != -1 {
		intPart = v[:dot]
	}
	if len(intPart) < 3 {
		return 0, errors.New("short coordinate")
	}

	deg, err := strconv.Atoi(intPart[:len(intPart)-2])
	if err != nil {
		return 0, err
	}
	mins, err := strconv.ParseFloat(v[len(intPart)-2:], 64)
	if err != nil {
		return 0, err
	}
	if mins >= 60 {
		return 0, errors.New("minutes out of range")
	}

	dec := float64(deg) + mins/60.0
	if hemi == "S" || hemi == "W" {
		dec = -dec
	}
	if dec < -limit || dec > limit {
		return 0, errors.New("coordinate out of range")
	}
	return dec, nil
}

// parseTimestamp combines RMC time (hhmmss[.sss]) and date (ddmmyy)
// fields into a UTC time.
func parseTimestamp(tf, df string) (time.Time, error) {
	tf = strings.TrimSpace(tf)
	df = strings.TrimSpace(df)
	if len(tf) < 6 {
		return time.Time{}, MalformedError{Field: 1}
	}
	h, err1 := strconv.Atoi(tf[0:2])
	m, err2 := strconv.Atoi(tf[2:4])
	sec, err3 := strconv.ParseFloat(tf[4:], 64)
	if err1 != nil || err2 != nil || err3 != nil ||
		h > 23 || m > 59 || sec >= 61 {
		return time.Time{}, MalformedError{Field: 1}
	}

	if len(df) != 6 {
		return time.Time{}, MalformedError{Field: 9}
	}
	day, err1 := strconv.Atoi(df[0:2])
	mon, err2 := strconv.Atoi(df[2:4])
	yy, err3 := strconv.Atoi(df[4:6])
	if err1 != nil || err2 != nil || err3 != nil ||
		day < 1 || day > 31 || mon < 1 || mon > 12 {
		return time.Time{}, MalformedError{Field: 9}
	}
	// Two-digit years: 80..99 map to the 1900s, the rest to the 2000s.
	year := 2000 + yy
	if yy >= 80 {
		year = 1900 + yy
	}

	whole, frac := math.Modf(sec)
	return time.Date(year, time.Month(mon), day, h, m, int(whole),
		int(frac*1e9), time.UTC), nil
}
