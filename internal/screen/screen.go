// Package screen owns the display state machine and turns app state
// into complete 1-bit frames for the OLED. Each render produces a whole
// frame from scratch, so a frame either reaches the panel complete or
// not at all.
package screen

import (
	"time"

	"github.com/relabs-tech/satbadge/internal/ble"
	"github.com/relabs-tech/satbadge/internal/gps"
	"github.com/relabs-tech/satbadge/internal/nmea"
	"github.com/relabs-tech/satbadge/internal/qr"
)

// Panel geometry (SSD1306 128x64).
const (
	Width  = 128
	Height = 64
)

// Config carries the screen policy values from configuration.
type Config struct {
	// IdleRevertTicks returns a non-status mode to the status view
	// after this many ticks without a button press; 0 disables it.
	IdleRevertTicks int
	// StaleAfter selects the stale display treatment for old fixes.
	StaleAfter time.Duration
	// QRLevel is the error-correction level of the identity code.
	QRLevel qr.ECCLevel
}

// View is everything a render step may look at. It is assembled by the
// application loop from store snapshots, so rendering never touches
// shared state.
type View struct {
	GPS      gps.Snapshot
	BLE      ble.Status
	Identity string
	Counters nmea.CounterSnapshot
}

// Controller is the screen state machine. It is confined to the render
// goroutine and needs no locking.
type Controller struct {
	cfg       Config
	mode      Mode
	idleTicks int
}

func NewController(cfg Config) *Controller {
	return &Controller{cfg: cfg, mode: ModeStatus}
}

func (c *Controller) Mode() Mode {
	return c.mode
}

// ButtonPressed advances to the next mode in the cycle and resets the
// idle countdown.
func (c *Controller) ButtonPressed() {
	c.mode = c.mode.Next()
	c.idleTicks = 0
}

// Tick advances the idle countdown and reports whether the mode
// reverted to the status view.
func (c *Controller) Tick() bool {
	if c.mode == ModeStatus || c.cfg.IdleRevertTicks <= 0 {
		c.idleTicks = 0
		return false
	}
	c.idleTicks++
	if c.idleTicks < c.cfg.IdleRevertTicks {
		return false
	}
	c.mode = ModeStatus
	c.idleTicks = 0
	return true
}
