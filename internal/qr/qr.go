// Package qr produces the module grid for the badge identity QR code.
//
// The code is drawn in a 64x64 pixel region of the 128x64 panel at one
// pixel per module minimum, with the quiet zone supplied by the blanked
// background. That budgets 64 modules per side, so the version ceiling
// is 11 (61x61 modules); larger payloads are rejected rather than
// rendered unscannable.
package qr

import (
	"errors"
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// MaxVersion is the symbol version ceiling imposed by the display
// budget. Version 11 is 61 modules per side.
const MaxVersion = 11

// ErrPayloadTooLarge is returned when the payload cannot fit the
// version ceiling at the requested ECC level. The encoder never
// truncates.
var ErrPayloadTooLarge = errors.New("qr: payload exceeds capacity for version ceiling")

// ECCLevel selects error-correction strength, trading capacity for
// resilience to partial occlusion.
type ECCLevel int

const (
	Low ECCLevel = iota
	Medium
	Quartile
	High
)

// Byte-mode capacities of version 11 per ECC level. Payloads are
// checked against byte mode, the most conservative encoding, so mixed
// content can never exceed the ceiling.
var capacities = [...]int{Low: 321, Medium: 251, Quartile: 177, High: 137}

func (l ECCLevel) String() string {
	switch l {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case Quartile:
		return "quartile"
	case High:
		return "high"
	default:
		return "unknown"
	}
}

// ParseECCLevel maps a config string onto an ECC level.
func ParseECCLevel(s string) (ECCLevel, error) {
	switch s {
	case "low":
		return Low, nil
	case "medium":
		return Medium, nil
	case "quartile":
		return Quartile, nil
	case "high":
		return High, nil
	default:
		return 0, fmt.Errorf("qr: unknown ecc level %q", s)
	}
}

func (l ECCLevel) recovery() qrcode.RecoveryLevel {
	switch l {
	case Low:
		return qrcode.Low
	case Medium:
		return qrcode.Medium
	case Quartile:
		return qrcode.High // library's "High" is ISO quartile (25%)
	default:
		return qrcode.Highest
	}
}

// Capacity returns the byte capacity at the version ceiling for the
// given ECC level.
func Capacity(level ECCLevel) int {
	if level < Low || level > High {
		return 0
	}
	return capacities[level]
}

// Matrix is the bare module grid, quiet zone stripped. It is immutable
// once produced.
type Matrix struct {
	size    int
	modules []bool
}

func (m *Matrix) Size() int { return m.size }

// At reports whether the module at (x, y) is dark. Out-of-range
// coordinates are light, matching the surrounding quiet zone.
func (m *Matrix) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.size || y >= m.size {
		return false
	}
	return m.modules[y*m.size+x]
}

// Encode builds the module grid for payload at the given ECC level.
// Encoding is deterministic: identical inputs produce bit-identical
// matrices.
func Encode(payload string, level ECCLevel) (*Matrix, error) {
	if len(payload) > Capacity(level) {
		return nil, ErrPayloadTooLarge
	}
	code, err := qrcode.New(payload, level.recovery())
	if err != nil {
		return nil, fmt.Errorf("qr: encode: %w", err)
	}
	if code.VersionNumber > MaxVersion {
		return nil, ErrPayloadTooLarge
	}

	code.DisableBorder = true
	bitmap := code.Bitmap()
	size := len(bitmap)
	m := &Matrix{size: size, modules: make([]bool, size*size)}
	for y, row := range bitmap {
		for x, dark := range row {
			m.modules[y*size+x] = dark
		}
	}
	return m, nil
}
