// Package config holds all badge configuration. Policy values (stale
// threshold, idle revert, QR ECC level) live here as named settings
// rather than literals in the render path.
package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/relabs-tech/satbadge/internal/qr"
)

type Config struct {
	Serial  SerialConfig  `yaml:"serial"`
	Display DisplayConfig `yaml:"display"`
	Screen  ScreenConfig  `yaml:"screen"`
	QR      QRConfig      `yaml:"qr"`
	BLE     BLEConfig     `yaml:"ble"`
	Button  ButtonConfig  `yaml:"button"`
}

type SerialConfig struct {
	Port string `yaml:"port"`
	Baud uint   `yaml:"baud"`
}

type DisplayConfig struct {
	// Bus selects the I2C bus by name; empty picks the first available.
	Bus string `yaml:"bus"`
	// Tick is the render loop period.
	Tick time.Duration `yaml:"tick"`
	// RefreshEvery forces a redraw every N ticks even without material
	// change, so elapsed stale time stays visible.
	RefreshEvery int `yaml:"refresh_every"`
}

type ScreenConfig struct {
	// StaleAfter is the fix age beyond which the stale treatment kicks in.
	StaleAfter time.Duration `yaml:"stale_after"`
	// IdleRevert returns any non-status screen to the status view after
	// this long without a button press; 0 disables the revert.
	IdleRevert time.Duration `yaml:"idle_revert"`
}

type QRConfig struct {
	// ECC is one of low, medium, quartile, high.
	ECC string `yaml:"ecc"`
}

type BLEConfig struct {
	Enable bool   `yaml:"enable"`
	Name   string `yaml:"name"`
	// Identity overrides the advertised payload; defaults to the
	// adapter MAC when empty. Useful on machines without an adapter.
	Identity string `yaml:"identity"`
}

type ButtonConfig struct {
	Chip     string        `yaml:"chip"`
	Line     int           `yaml:"line"`
	Debounce time.Duration `yaml:"debounce"`
}

// Default returns the built-in configuration for the reference
// hardware.
func Default() *Config {
	return &Config{
		Serial: SerialConfig{Port: "/dev/serial0", Baud: 9600},
		Display: DisplayConfig{
			Tick:         250 * time.Millisecond,
			RefreshEvery: 8,
		},
		Screen: ScreenConfig{
			StaleAfter: 10 * time.Second,
			IdleRevert: 30 * time.Second,
		},
		QR:     QRConfig{ECC: "high"},
		BLE:    BLEConfig{Enable: true, Name: "satbadge"},
		Button: ButtonConfig{Chip: "/dev/gpiochip0", Line: 17, Debounce: 20 * time.Millisecond},
	}
}

// Load reads the configuration file, fills defaults and validates.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Serial.Port == "" {
		return fmt.Errorf("serial.port is required")
	}
	if c.Serial.Baud == 0 {
		return fmt.Errorf("serial.baud must be > 0")
	}
	if c.Display.Tick <= 0 {
		return fmt.Errorf("display.tick must be > 0")
	}
	if c.Display.RefreshEvery <= 0 {
		return fmt.Errorf("display.refresh_every must be > 0")
	}
	if c.Screen.StaleAfter <= 0 {
		return fmt.Errorf("screen.stale_after must be > 0")
	}
	if c.Screen.IdleRevert < 0 {
		return fmt.Errorf("screen.idle_revert must be >= 0")
	}
	if _, err := qr.ParseECCLevel(c.QR.ECC); err != nil {
		return fmt.Errorf("qr.ecc: %w", err)
	}
	if c.BLE.Enable && c.BLE.Name == "" {
		return fmt.Errorf("ble.name is required when ble.enable is true")
	}
	return nil
}

// ECCLevel returns the parsed QR ECC level. Only meaningful after
// validation has passed.
func (c *Config) ECCLevel() qr.ECCLevel {
	level, _ := qr.ParseECCLevel(c.QR.ECC)
	return level
}

// IdleRevertTicks converts the idle revert duration into whole render
// ticks; 0 means the revert is disabled.
func (c *Config) IdleRevertTicks() int {
	if c.Screen.IdleRevert <= 0 || c.Display.Tick <= 0 {
		return 0
	}
	return int(c.Screen.IdleRevert / c.Display.Tick)
}

// Package-level singleton, initialized once at startup and read-only
// afterwards.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// InitGlobal initializes the global configuration. An empty path uses
// the built-in defaults. Only the first call has any effect.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		if configPath == "" {
			globalConfig = Default()
			return
		}
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance. InitGlobal must be
// called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
