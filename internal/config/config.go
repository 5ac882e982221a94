package config

import (
	"fmt"
	"slices"
	"time"

	"guessmac/internal/route"
	"guessmac/internal/shell"
)

// Defaults
const (
	DefaultCommandTimeout = shell.DefaultTimeout
	DefaultHintSource     = route.SourceRoute
	DefaultLogMaxSizeMB   = 1
	DefaultLogMaxBackups  = 3
)

// Config holds the command line options. There is no config file: every
// field comes from a flag or its default.
type Config struct {
	CommandTimeout time.Duration
	HintSource     string
	LogFile        string
	LogMaxSizeMB   int
	LogMaxBackups  int
	Verbose        bool
	SysLog         bool
	QR             bool
	JSON           bool
}

// Default returns the configuration used when no flags are given.
func Default() *Config {
	return &Config{
		CommandTimeout: DefaultCommandTimeout,
		HintSource:     DefaultHintSource,
		LogMaxSizeMB:   DefaultLogMaxSizeMB,
		LogMaxBackups:  DefaultLogMaxBackups,
	}
}

// Validate reports the first invalid option.
func (c *Config) Validate() error {
	if c.CommandTimeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.CommandTimeout)
	}
	if !slices.Contains(route.Sources, c.HintSource) {
		return fmt.Errorf("invalid hint source %q", c.HintSource)
	}
	if c.LogMaxSizeMB <= 0 {
		return fmt.Errorf("log size must be at least 1 MB, got %d", c.LogMaxSizeMB)
	}
	if c.LogMaxBackups < 0 {
		return fmt.Errorf("log backups must not be negative, got %d", c.LogMaxBackups)
	}
	if c.QR && c.JSON {
		return fmt.Errorf("--qr and --json cannot be combined")
	}
	return nil
}
