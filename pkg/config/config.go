// Package config loads and persists framstore configuration files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

// Device kinds understood by the CLI.
const (
	DeviceMem    = "mem"
	DeviceFile   = "file"
	DevicePebble = "pebble"
	DeviceSim    = "sim"
)

// ErrInvalid reports a configuration that fails validation.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the framstore configuration.
type Config struct {
	Device  Device  `yaml:"device"`
	Store   Store   `yaml:"store"`
	API     API     `yaml:"api"`
	Logging Logging `yaml:"logging"`
}

// Device selects and parameterizes the backing device.
type Device struct {
	// Kind is one of mem, file, pebble or sim.
	Kind string `yaml:"kind"`
	// Path locates the image for the file and pebble kinds.
	Path string `yaml:"path"`
	// Size is the device capacity in bytes.
	Size uint32 `yaml:"size_bytes"`
}

// Store holds the slot region parameters.
type Store struct {
	BaseAddress uint32 `yaml:"base_address"`
	Slots       int    `yaml:"slots"`
	Version     uint16 `yaml:"version"`
	PayloadSize int    `yaml:"payload_size"`
}

// API configures the REST server.
type API struct {
	Listen string `yaml:"listen"`
}

// Logging configures log output.
type Logging struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the configuration used when no file is given:
// an 8 KiB in-memory device with four slots at base 0x0200.
func DefaultConfig() *Config {
	return &Config{
		Device: Device{
			Kind: DeviceMem,
			Size: 8 * 1024,
		},
		Store: Store{
			BaseAddress: 0x0200,
			Slots:       4,
			Version:     1,
			PayloadSize: 12,
		},
		API: API{
			Listen: "127.0.0.1:8080",
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// LoadConfig reads and validates the configuration at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SaveConfig writes cfg to path atomically, creating parent directories
// as needed.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Validate checks the configuration for internally detectable problems.
// Slot geometry against the actual device is rechecked by the store.
func (c *Config) Validate() error {
	switch c.Device.Kind {
	case DeviceMem, DeviceFile, DevicePebble, DeviceSim:
	default:
		return fmt.Errorf("%w: unknown device kind %q", ErrInvalid, c.Device.Kind)
	}

	if (c.Device.Kind == DeviceFile || c.Device.Kind == DevicePebble) && c.Device.Path == "" {
		return fmt.Errorf("%w: device kind %q requires a path", ErrInvalid, c.Device.Kind)
	}

	if c.Device.Size == 0 {
		return fmt.Errorf("%w: device size must be positive", ErrInvalid)
	}

	if c.Store.Slots < 1 {
		return fmt.Errorf("%w: slot count %d", ErrInvalid, c.Store.Slots)
	}

	if c.Store.PayloadSize <= 0 {
		return fmt.Errorf("%w: payload size %d", ErrInvalid, c.Store.PayloadSize)
	}

	return nil
}
