package nmea

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	gonmea "github.com/adrianmo/go-nmea"
)

const sampleRMC = "$GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W*6A"
const sampleGGA = "GNGGA,123519,4807.038,N,01131.000,E,1,08,0.9,545.4,M,46.9,M,,"

func nmeaLine(payload string) string {
	return "$" + payload + "*" + Checksum(payload)
}

func TestParse_RMC(t *testing.T) {
	rec, err := Parse([]byte(sampleRMC))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if rec.Kind != KindPosition || !rec.Active {
		t.Fatalf("expected active position record, got %+v", rec)
	}
	wantLat := 48.0 + 7.038/60.0
	wantLon := 11.0 + 31.0/60.0
	if math.Abs(rec.Lat-wantLat) > 1e-9 {
		t.Fatalf("lat: expected %v, got %v", wantLat, rec.Lat)
	}
	if math.Abs(rec.Lon-wantLon) > 1e-9 {
		t.Fatalf("lon: expected %v, got %v", wantLon, rec.Lon)
	}
	if !rec.HasSpeed || math.Abs(rec.SpeedKnots-22.4) > 1e-9 {
		t.Fatalf("speed: got %+v", rec)
	}
	if !rec.HasCourse || math.Abs(rec.CourseDeg-84.4) > 1e-9 {
		t.Fatalf("course: got %+v", rec)
	}
	want := time.Date(1994, 3, 23, 12, 35, 19, 0, time.UTC)
	if !rec.Time.Equal(want) {
		t.Fatalf("time: expected %v, got %v", want, rec.Time)
	}
}

// The hand parser must agree with the reference NMEA library on
// well-formed position sentences.
func TestParse_MatchesReferenceParser(t *testing.T) {
	lines := []string{
		sampleRMC,
		nmeaLine("GPRMC,081836,A,3751.650,S,14507.360,E,000.0,360.0,130998,011.3,E"),
		nmeaLine("GNRMC,001031.00,A,4404.13993,N,12118.86023,W,0.146,,100117,,,A"),
	}
	for _, line := range lines {
		rec, err := Parse([]byte(line))
		if err != nil {
			t.Fatalf("%q: %v", line, err)
		}
		ref, err := gonmea.Parse(line)
		if err != nil {
			t.Fatalf("%q: reference parser: %v", line, err)
		}
		rmc, ok := ref.(gonmea.RMC)
		if !ok {
			t.Fatalf("%q: reference parser returned %T", line, ref)
		}
		if math.Abs(rec.Lat-rmc.Latitude) > 1e-9 {
			t.Errorf("%q: lat %v != reference %v", line, rec.Lat, rmc.Latitude)
		}
		if math.Abs(rec.Lon-rmc.Longitude) > 1e-9 {
			t.Errorf("%q: lon %v != reference %v", line, rec.Lon, rmc.Longitude)
		}
	}
}

func TestParse_RoundTripCoordinates(t *testing.T) {
	rec, err := Parse([]byte(sampleRMC))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v, hemi := FormatLat(rec.Lat); v != "4807.038" || hemi != "N" {
		t.Fatalf("lat round trip: got %q %q", v, hemi)
	}
	if v, hemi := FormatLon(rec.Lon); v != "01131.000" || hemi != "E" {
		t.Fatalf("lon round trip: got %q %q", v, hemi)
	}
}

func TestParse_BadChecksum(t *testing.T) {
	cases := []string{
		sampleRMC[:len(sampleRMC)-1] + "B", // altered final checksum digit
		sampleRMC[:len(sampleRMC)-2],       // truncated checksum
		strings.Replace(sampleRMC, "123519", "123520", 1),
		"$GPRMC,123519,A",
	}
	for _, line := range cases {
		if _, err := Parse([]byte(line)); !errors.Is(err, ErrBadChecksum) {
			t.Errorf("%q: expected ErrBadChecksum, got %v", line, err)
		}
	}
}

func TestParse_Unsupported(t *testing.T) {
	line := nmeaLine("GPGSV,2,1,08,01,40,083,46,02,17,308,41,12,07,344,39,14,22,228,45")
	if _, err := Parse([]byte(line)); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestParse_TooLong(t *testing.T) {
	long := "$GPRMC," + strings.Repeat("0", MaxSentenceLen) + "*00"
	if _, err := Parse([]byte(long)); !errors.Is(err, ErrTooLong) {
		t.Fatalf("expected ErrTooLong, got %v", err)
	}
}

func TestParse_Malformed(t *testing.T) {
	cases := []struct {
		payload string
		field   int
	}{
		{"GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4", 9},        // missing date
		{"GPRMC,123519,X,4807.038,N,01131.000,E,022.4,084.4,230394", 2}, // bad status
		{"GPRMC,123519,A,notanum,N,01131.000,E,022.4,084.4,230394", 3},
		{"GPRMC,123519,A,9107.038,N,01131.000,E,022.4,084.4,230394", 3},  // lat out of range
		{"GPRMC,123519,A,4807.038,N,18131.000,E,022.4,084.4,230394", 5},  // lon out of range
		{"GPRMC,123519,A,4807.038,N,01131.000,E,abc,084.4,230394", 7},    // bad speed
		{"GPRMC,123519,A,4807.038,N,01131.000,E,022.4,xyz,230394", 8},    // bad course
		{"GPRMC,9999,A,4807.038,N,01131.000,E,022.4,084.4,230394", 1},    // bad time
		{"GNGGA,123519,4807.038,N,01131.000,E,q,08,0.9,545.4,M,46.9", 6}, // bad quality
	}
	for _, c := range cases {
		_, err := Parse([]byte(nmeaLine(c.payload)))
		var mf MalformedError
		if !errors.As(err, &mf) {
			t.Errorf("%q: expected MalformedError, got %v", c.payload, err)
			continue
		}
		if mf.Field != c.field {
			t.Errorf("%q: expected field %d, got %d", c.payload, c.field, mf.Field)
		}
	}
}

func TestParse_VoidRMCIsLossOfSignal(t *testing.T) {
	line := nmeaLine("GPRMC,,V,,,,,,,230394,,")
	rec, err := Parse([]byte(line))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if rec.Kind != KindPosition || rec.Active {
		t.Fatalf("expected inactive position record, got %+v", rec)
	}
}

func TestParse_GGA(t *testing.T) {
	rec, err := Parse([]byte(nmeaLine(sampleGGA)))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if rec.Kind != KindStatus {
		t.Fatalf("expected status record, got %+v", rec)
	}
	if rec.Quality != 1 || rec.Satellites != 8 {
		t.Fatalf("quality/satellites: got %+v", rec)
	}
	if !rec.HasHDOP || math.Abs(rec.HDOP-0.9) > 1e-9 {
		t.Fatalf("hdop: got %+v", rec)
	}
}

func TestAssembler_CompletesLines(t *testing.T) {
	var a Assembler
	stream := "junk before\x00$GPRMC,1*56\r\n$GPGGA,2*48\n"
	var lines []string
	for i := 0; i < len(stream); i++ {
		line, err := a.Feed(stream[i])
		if err != nil {
			t.Fatalf("byte %d: %v", i, err)
		}
		if line != nil {
			lines = append(lines, string(line))
		}
	}
	if len(lines) != 2 || lines[0] != "$GPRMC,1*56" || lines[1] != "$GPGGA,2*48" {
		t.Fatalf("unexpected lines: %q", lines)
	}
}

func TestAssembler_OverlongDiscarded(t *testing.T) {
	var a Assembler
	stream := "$GPRMC," + strings.Repeat("A", 2*MaxSentenceLen) + "\n"
	var tooLong bool
	for i := 0; i < len(stream); i++ {
		line, err := a.Feed(stream[i])
		if line != nil {
			t.Fatalf("expected no line from overlong input, got %q", line)
		}
		if errors.Is(err, ErrTooLong) {
			tooLong = true
		}
	}
	if !tooLong {
		t.Fatalf("expected ErrTooLong")
	}
	// The assembler must resynchronize on the next sentence.
	var got []byte
	for i := 0; i < len(sampleRMC); i++ {
		if line, _ := a.Feed(sampleRMC[i]); line != nil {
			got = line
		}
	}
	if line, err := a.Feed('\n'); err != nil || line == nil {
		t.Fatalf("expected recovery line, got %q err %v", line, err)
	} else {
		got = line
	}
	if string(got) != sampleRMC {
		t.Fatalf("recovered line mismatch: %q", got)
	}
}

func TestCounters_Classify(t *testing.T) {
	var c Counters
	c.Note(nil)
	c.Note(ErrBadChecksum)
	c.Note(ErrUnsupported)
	c.Note(ErrTooLong)
	c.Note(MalformedError{Field: 3})
	s := c.Snapshot()
	if s.Lines != 5 || s.Parsed != 1 || s.BadChecksum != 1 ||
		s.Unsupported != 1 || s.TooLong != 1 || s.Malformed != 1 {
		t.Fatalf("unexpected snapshot: %+v", s)
	}
	if s.LastErr == "" {
		t.Fatalf("expected last error to be recorded")
	}
}

func TestSentence_String(t *testing.T) {
	s := Sentence{
		Type: "GPGGA",
		Data: []string{"070319.000", "0000.00000", "N", "00000.00000", "E", "0", "00", "99.0", "100.00", "M", "0.0", "M", "", ""},
	}
	want := "$GPGGA,070319.000,0000.00000,N,00000.00000,E,0,00,99.0,100.00,M,0.0,M,,*60"
	if got := s.String(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
