package screen

import (
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/devices/v3/ssd1306/image1bit"

	"github.com/relabs-tech/satbadge/internal/ble"
	"github.com/relabs-tech/satbadge/internal/gps"
	"github.com/relabs-tech/satbadge/internal/qr"
)

// qrRegion is the square pixel area reserved for the identity code on
// the left half of the panel.
const qrRegion = 64

// Render produces the full frame for the active mode. It is a pure
// function of the view: absent fixes, stale data and encode failures
// all render explicit placeholders.
func (c *Controller) Render(v View) *image1bit.VerticalLSB {
	switch c.mode {
	case ModeCode:
		return c.renderCode(v)
	case ModeDiagnostic:
		return c.renderDiagnostic(v)
	default:
		return c.renderStatus(v)
	}
}

func newFrame() *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, Width, Height))
	for i := range img.Pix {
		img.Pix[i] = 0
	}
	return img
}

func drawText(img *image1bit.VerticalLSB, x, y int, s string) {
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
	drawer.Dot = fixed.P(x, y)
	drawer.DrawBytes([]byte(s))
}

func bleShort(v View) string {
	switch v.BLE {
	case ble.Advertising:
		return "B:ADV"
	case ble.Connected:
		return "B:CON"
	default:
		return "B:OFF"
	}
}

func (c *Controller) renderStatus(v View) *image1bit.VerticalLSB {
	img := newFrame()
	drawText(img, 0, 13, "SATBADGE")
	drawText(img, 93, 13, bleShort(v))

	if !v.GPS.HasFix {
		drawText(img, 0, 26, "NO FIX YET")
		drawText(img, 0, 39, "waiting for gps")
		drawText(img, 0, 52, fmt.Sprintf("sats %d", v.GPS.Satellites))
		return img
	}

	fix := v.GPS.Fix
	latDir, lat := "N", fix.Lat
	if lat < 0 {
		latDir, lat = "S", -lat
	}
	lonDir, lon := "E", fix.Lon
	if lon < 0 {
		lonDir, lon = "W", -lon
	}
	drawText(img, 0, 26, fmt.Sprintf("%.4f%s", lat, latDir))
	drawText(img, 0, 39, fmt.Sprintf("%.4f%s", lon, lonDir))

	switch {
	case fix.Validity == gps.NoSignal:
		drawText(img, 0, 52, fmt.Sprintf("NO SIGNAL %ds", int(v.GPS.Age.Seconds())))
	case v.GPS.Stale(c.cfg.StaleAfter):
		drawText(img, 0, 52, fmt.Sprintf("STALE %ds", int(v.GPS.Age.Seconds())))
	case fix.Validity == gps.Degraded:
		drawText(img, 0, 52, fmt.Sprintf("DEGRADED hdop %.1f", v.GPS.HDOP))
	case fix.HasSpeed && fix.HasCourse:
		drawText(img, 0, 52, fmt.Sprintf("%.1fkt %03.0f", fix.SpeedKnots, fix.CourseDeg))
	default:
		drawText(img, 0, 52, fmt.Sprintf("sats %d", v.GPS.Satellites))
	}
	return img
}

func (c *Controller) renderCode(v View) *image1bit.VerticalLSB {
	img := newFrame()

	if v.Identity == "" {
		drawText(img, 0, 26, "NO IDENTITY")
		drawText(img, 0, 39, "radio offline")
		return img
	}

	matrix, err := qr.Encode(v.Identity, c.cfg.QRLevel)
	if err != nil {
		drawText(img, 0, 26, "CODE")
		drawText(img, 0, 39, "UNAVAILABLE")
		return img
	}
	drawMatrix(img, matrix)

	drawText(img, qrRegion+8, 26, "SCAN TO")
	drawText(img, qrRegion+8, 39, "PAIR")
	return img
}

// drawMatrix fills one rectangle of pixels per dark module, scaled to
// the largest integer factor that fits the region.
func drawMatrix(img *image1bit.VerticalLSB, m *qr.Matrix) {
	scale := qrRegion / m.Size()
	if scale < 1 {
		scale = 1
	}
	off := (qrRegion - m.Size()*scale) / 2
	for y := 0; y < m.Size(); y++ {
		for x := 0; x < m.Size(); x++ {
			if !m.At(x, y) {
				continue
			}
			for dy := 0; dy < scale; dy++ {
				for dx := 0; dx < scale; dx++ {
					img.SetBit(off+x*scale+dx, off+y*scale+dy, image1bit.On)
				}
			}
		}
	}
}

func (c *Controller) renderDiagnostic(v View) *image1bit.VerticalLSB {
	img := newFrame()
	n := v.Counters
	drawText(img, 0, 13, fmt.Sprintf("rx %d ok %d", n.Lines, n.Parsed))
	drawText(img, 0, 26, fmt.Sprintf("ck%d mf%d un%d lg%d",
		n.BadChecksum, n.Malformed, n.Unsupported, n.TooLong))
	hdop := "-"
	if v.GPS.HasHDOP {
		hdop = fmt.Sprintf("%.1f", v.GPS.HDOP)
	}
	drawText(img, 0, 39, fmt.Sprintf("sat %d q %d h %s",
		v.GPS.Satellites, v.GPS.Quality, hdop))
	drawText(img, 0, 52, "ble "+v.BLE.String())
	return img
}
