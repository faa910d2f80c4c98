// Package config loads the settings of pioxfer. Values come from, in
// increasing precedence, the built-in defaults, a YAML file, a .env file, the
// PIOXFER_* environment variables, and command line flags applied by the
// caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/pioxfer/board"
	"github.com/sarchlab/pioxfer/device"
	"github.com/sarchlab/pioxfer/logging"
	"github.com/sarchlab/pioxfer/portio"
	"github.com/sarchlab/pioxfer/register"
	"github.com/sarchlab/pioxfer/transfer"
)

// Backends.
const (
	BackendSim     = "sim"
	BackendDevPort = "devport"
)

// ErrInvalid is wrapped by all validation errors.
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete configuration.
type Config struct {
	Device    DeviceConfig    `yaml:"device"`
	Transfer  TransferConfig  `yaml:"transfer"`
	Workers   WorkersConfig   `yaml:"workers"`
	Sim       SimConfig       `yaml:"sim"`
	Monitor   MonitorConfig   `yaml:"monitor"`
	Recording RecordingConfig `yaml:"recording"`
	Log       LogConfig       `yaml:"log"`
}

// DeviceConfig selects the board and how it is reached.
type DeviceConfig struct {
	Name        string `yaml:"name"`
	Backend     string `yaml:"backend"`
	DevPortPath string `yaml:"devport-path"`
	PortBase    uint16 `yaml:"port-base"`
	PortCount   uint16 `yaml:"port-count"`
}

// TransferConfig tunes the poll loop.
type TransferConfig struct {
	ReadCheckInterval  uint64        `yaml:"read-check-interval"`
	WriteCheckInterval uint64        `yaml:"write-check-interval"`
	YieldDelay         time.Duration `yaml:"yield-delay"`
}

// WorkersConfig bounds the transfer workers of the process. 0 means no
// bound.
type WorkersConfig struct {
	Max int `yaml:"max"`
}

// SimConfig shapes the simulated board.
type SimConfig struct {
	FIFODepth int    `yaml:"fifo-depth"`
	PeerRate  uint64 `yaml:"peer-rate"`
}

// MonitorConfig controls the HTTP monitor.
type MonitorConfig struct {
	Enabled     bool `yaml:"enabled"`
	Port        int  `yaml:"port"`
	OpenBrowser bool `yaml:"open-browser"`
}

// RecordingConfig controls trace recording.
type RecordingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration of the board as shipped, on the
// simulated backend.
func Default() Config {
	return Config{
		Device: DeviceConfig{
			Name:        "S5933DK1",
			Backend:     BackendSim,
			DevPortPath: portio.DefaultDevPortPath,
			PortBase:    register.DefaultBase,
			PortCount:   register.Span,
		},
		Transfer: TransferConfig{
			ReadCheckInterval:  transfer.DefaultReadCheckInterval,
			WriteCheckInterval: transfer.DefaultWriteCheckInterval,
			YieldDelay:         transfer.DefaultYieldDelay,
		},
		Sim: SimConfig{
			FIFODepth: board.DefaultFIFODepth,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load builds the configuration from the defaults, the YAML file at path (if
// path is not empty), the .env file in the working directory (if present),
// and the environment.
func Load(path string) (*Config, error) {
	c := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		defer f.Close()

		if err := c.Decode(f); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	if err := c.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

// Decode overlays YAML from r. Unknown keys are errors.
func (c *Config) Decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	err := dec.Decode(c)
	if errors.Is(err, io.EOF) {
		return nil
	}

	return err
}

// Encode writes the configuration as YAML.
func (c *Config) Encode(w io.Writer) error {
	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(c); err != nil {
		return err
	}

	if err := enc.Close(); err != nil {
		return err
	}

	_, err := w.Write(buf.Bytes())

	return err
}

// LoadDotEnv adds the variables of a .env file to the environment. Variables
// that are already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return fmt.Errorf("loading %s: %w", path, err)
}

// Validate checks the configuration for values the rest of the program
// cannot work with.
func (c *Config) Validate() error {
	var errs []error

	invalid := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format,
			append([]any{ErrInvalid}, args...)...))
	}

	if c.Device.Name == "" {
		invalid("device.name must be set")
	}

	switch c.Device.Backend {
	case BackendSim, BackendDevPort:
	default:
		invalid("device.backend %q is not one of %s, %s",
			c.Device.Backend, BackendSim, BackendDevPort)
	}

	if err := c.Resources().Validate(); err != nil {
		invalid("device port window: %v", err)
	}

	if c.Transfer.YieldDelay <= 0 {
		invalid("transfer.yield-delay must be positive, got %s",
			c.Transfer.YieldDelay)
	}

	if c.Workers.Max < 0 {
		invalid("workers.max must not be negative, got %d", c.Workers.Max)
	}

	if c.Sim.FIFODepth <= 0 {
		invalid("sim.fifo-depth must be positive, got %d", c.Sim.FIFODepth)
	}

	if c.Monitor.Port < 0 || c.Monitor.Port > 65535 {
		invalid("monitor.port %d is out of range", c.Monitor.Port)
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		invalid("log.level: %v", err)
	}

	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		invalid("log.format: %v", err)
	}

	return errors.Join(errs...)
}

// Policy returns the transfer policy.
func (c *Config) Policy() transfer.Policy {
	return transfer.Policy{
		ReadCheckInterval:  c.Transfer.ReadCheckInterval,
		WriteCheckInterval: c.Transfer.WriteCheckInterval,
		YieldDelay:         c.Transfer.YieldDelay,
	}
}

// Resources returns the device resources.
func (c *Config) Resources() device.Resources {
	return device.Resources{
		Window: portio.Window{
			Base:  c.Device.PortBase,
			Count: c.Device.PortCount,
		},
	}
}
