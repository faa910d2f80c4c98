package config

import (
	"fmt"
	"strconv"
	"time"
)

// Environment variables that override the configuration file.
const (
	EnvBackend            = "PIOXFER_BACKEND"
	EnvDevPort            = "PIOXFER_DEVPORT"
	EnvPortBase           = "PIOXFER_PORT_BASE"
	EnvReadCheckInterval  = "PIOXFER_READ_CHECK_INTERVAL"
	EnvWriteCheckInterval = "PIOXFER_WRITE_CHECK_INTERVAL"
	EnvYieldDelay         = "PIOXFER_YIELD_DELAY"
	EnvMaxWorkers         = "PIOXFER_MAX_WORKERS"
	EnvMonitorPort        = "PIOXFER_MONITOR_PORT"
	EnvRecordPath         = "PIOXFER_RECORD_PATH"
	EnvLogLevel           = "PIOXFER_LOG_LEVEL"
	EnvLogFormat          = "PIOXFER_LOG_FORMAT"
)

// LookupFunc finds an environment variable, like os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides settings from the environment.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str(EnvBackend, &c.Device.Backend)
	str(EnvDevPort, &c.Device.DevPortPath)
	str(EnvLogLevel, &c.Log.Level)
	str(EnvLogFormat, &c.Log.Format)

	if v, ok := lookup(EnvRecordPath); ok && v != "" {
		c.Recording.Enabled = true
		c.Recording.Path = v
	}

	return c.applyNumericEnv(lookup)
}

func (c *Config) applyNumericEnv(lookup LookupFunc) error {
	parse := func(key string, bits int, set func(uint64)) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}

		n, err := strconv.ParseUint(v, 0, bits)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, key, v, err)
		}

		set(n)

		return nil
	}

	if err := parse(EnvPortBase, 16, func(n uint64) {
		c.Device.PortBase = uint16(n)
	}); err != nil {
		return err
	}

	if err := parse(EnvReadCheckInterval, 64, func(n uint64) {
		c.Transfer.ReadCheckInterval = n
	}); err != nil {
		return err
	}

	if err := parse(EnvWriteCheckInterval, 64, func(n uint64) {
		c.Transfer.WriteCheckInterval = n
	}); err != nil {
		return err
	}

	if err := parse(EnvMaxWorkers, 31, func(n uint64) {
		c.Workers.Max = int(n)
	}); err != nil {
		return err
	}

	if err := parse(EnvMonitorPort, 16, func(n uint64) {
		c.Monitor.Enabled = true
		c.Monitor.Port = int(n)
	}); err != nil {
		return err
	}

	if v, ok := lookup(EnvYieldDelay); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalid, EnvYieldDelay, v, err)
		}

		c.Transfer.YieldDelay = d
	}

	return nil
}
