// Package app wires the badge together: serial intake feeding the fix
// store, BLE advertising, the button, and the ticker-driven render
// loop pushing frames to the OLED.
package app

import (
	"fmt"
	"image"
	"log"
	"time"

	serial "github.com/jacobsa/go-serial/serial"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/satbadge/internal/ble"
	"github.com/relabs-tech/satbadge/internal/config"
	"github.com/relabs-tech/satbadge/internal/gps"
	"github.com/relabs-tech/satbadge/internal/input"
	"github.com/relabs-tech/satbadge/internal/nmea"
	"github.com/relabs-tech/satbadge/internal/screen"
)

// frameSink is the display surface the loop draws whole frames onto.
// *ssd1306.Dev satisfies it.
type frameSink interface {
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
}

// radio is the slice of the BLE stack the render path needs.
type radio interface {
	Status() ble.Status
	Identity() string
}

// staticRadio stands in when BLE is disabled in configuration.
type staticRadio struct {
	identity string
}

func (s staticRadio) Status() ble.Status { return ble.Disconnected }
func (s staticRadio) Identity() string   { return s.identity }

// renderSig is the coarse dirty-check: a frame is redrawn when any of
// these change, or on the periodic forced refresh.
type renderSig struct {
	mode     screen.Mode
	hasFix   bool
	validity gps.Validity
	stale    bool
	ble      ble.Status
}

type badge struct {
	cfg      *config.Config
	store    *gps.Store
	counters *nmea.Counters
	ctrl     *screen.Controller
	radio    radio
	presses  <-chan struct{}

	ticks        int
	lastDrawTick int
	lastSig      renderSig
	drawn        bool
}

func newBadge(cfg *config.Config, store *gps.Store, counters *nmea.Counters, rad radio, presses <-chan struct{}) *badge {
	return &badge{
		cfg:      cfg,
		store:    store,
		counters: counters,
		radio:    rad,
		presses:  presses,
		ctrl: screen.NewController(screen.Config{
			IdleRevertTicks: cfg.IdleRevertTicks(),
			StaleAfter:      cfg.Screen.StaleAfter,
			QRLevel:         cfg.ECCLevel(),
		}),
	}
}

// step is one synchronous tick: consume pending button presses,
// advance the idle timeout, and redraw when the view changed
// materially.
func (b *badge) step(sink frameSink) error {
	b.ticks++
	changed := !b.drawn

drain:
	for {
		select {
		case <-b.presses:
			b.ctrl.ButtonPressed()
			changed = true
		default:
			break drain
		}
	}

	if b.ctrl.Tick() {
		changed = true
	}

	snap := b.store.Read()
	sig := renderSig{
		mode:     b.ctrl.Mode(),
		hasFix:   snap.HasFix,
		validity: snap.Fix.Validity,
		stale:    snap.Stale(b.cfg.Screen.StaleAfter),
		ble:      b.radio.Status(),
	}
	if !changed && sig == b.lastSig && b.ticks-b.lastDrawTick < b.cfg.Display.RefreshEvery {
		return nil
	}

	frame := b.ctrl.Render(screen.View{
		GPS:      snap,
		BLE:      sig.ble,
		Identity: b.radio.Identity(),
		Counters: b.counters.Snapshot(),
	})
	if err := sink.Draw(frame.Bounds(), frame, image.Point{}); err != nil {
		return err
	}
	b.lastSig = sig
	b.lastDrawTick = b.ticks
	b.drawn = true
	return nil
}

// loop drives step on the configured tick until stop closes.
func (b *badge) loop(sink frameSink, stop <-chan struct{}) {
	ticker := time.NewTicker(b.cfg.Display.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := b.step(sink); err != nil {
				log.Printf("badge: display draw: %v", err)
			}
		}
	}
}

// RunBadge brings up the hardware and runs the badge until the process
// is killed. Only bring-up failures are fatal; everything downstream is
// recovered per tick.
func RunBadge() error {
	cfg := config.Get()

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}
	bus, err := i2creg.Open(cfg.Display.Bus)
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Printf("badge: display initialized on bus %q", bus)

	var rad radio = staticRadio{identity: cfg.BLE.Identity}
	if cfg.BLE.Enable {
		adv, err := ble.NewAdvertiser(cfg.BLE.Name)
		if err != nil {
			return err
		}
		if err := adv.Start([]byte(adv.Identity())); err != nil {
			return err
		}
		rad = adv
	}

	btn, err := input.NewButton(cfg.Button.Chip, cfg.Button.Line, cfg.Button.Debounce)
	if err != nil {
		return err
	}
	defer btn.Close()

	port, err := serial.Open(serial.OpenOptions{
		PortName:        cfg.Serial.Port,
		BaudRate:        cfg.Serial.Baud,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
		ParityMode:      serial.PARITY_NONE,
	})
	if err != nil {
		return fmt.Errorf("failed to open gps serial port: %w", err)
	}
	defer port.Close()
	log.Printf("badge: gps serial port opened on %s at %d baud", cfg.Serial.Port, cfg.Serial.Baud)

	store := gps.NewStore()
	counters := &nmea.Counters{}
	go intake(port, store, counters)

	b := newBadge(cfg, store, counters, rad, btn.Events())
	log.Println("badge: starting render loop")
	b.loop(dev, nil)
	return nil
}
