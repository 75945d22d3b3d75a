package nmea

import (
	"fmt"
	"strings"
)

// Sentence builds an NMEA sentence from its type and fields, appending
// the checksum. Used by diagnostics and tests to construct known-good
// wire lines.
type Sentence struct {
	Type string
	Data []string
}

func Checksum(payload string) string {
	var sum uint8
	for i := 0; i < len(payload); i++ {
		sum ^= payload[i]
	}
	return fmt.Sprintf("%02X", sum)
}

func (s Sentence) String() string {
	payload := s.Type
	if len(s.Data) > 0 {
		payload += "," + strings.Join(s.Data, ",")
	}
	return fmt.Sprintf("$%s*%s", payload, Checksum(payload))
}

// FormatLat renders decimal degrees back into the RMC ddmm.mmm wire
// format, returning the value and hemisphere fields.
func FormatLat(deg float64) (string, string) {
	hemi := "N"
	if deg < 0 {
		hemi = "S"
		deg = -deg
	}
	d, mins := splitMinutes(deg)
	return fmt.Sprintf("%02d%06.3f", d, mins), hemi
}

// FormatLon is FormatLat for longitudes (dddmm.mmm, E/W).
func FormatLon(deg float64) (string, string) {
	hemi := "E"
	if deg < 0 {
		hemi = "W"
		deg = -deg
	}
	d, mins := splitMinutes(deg)
	return fmt.Sprintf("%03d%06.3f", d, mins), hemi
}

func splitMinutes(deg float64) (int, float64) {
	d := int(deg)
	mins := (deg - float64(d)) * 60.0
	// %06.3f rounds; carry a rounded-up 60.000 into the degrees.
	if mins >= 59.9995 {
		d++
		mins = 0
	}
	return d, mins
}
