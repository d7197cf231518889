// Package config provides configuration management for the harness.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"PerfHarness/pkg/clock"
	"PerfHarness/pkg/exporting"
	"PerfHarness/pkg/reptest"

	"github.com/google/uuid"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all harness configuration options.
type Config struct {
	// Measurement settings
	Clock           string
	Calibration     time.Duration
	Timeout         time.Duration
	PrintEvery      int
	PinCPU          bool
	PageFaults      bool
	ContextSwitches bool
	ReadBytes       bool
	Resident        bool
	CPUTime         bool

	// Output settings
	OutputDir    string
	OutputFormat string
	OutputName   string
	PromTextfile string

	// Graph settings
	GenerateGraphs bool
	GraphOutput    string

	// Logging
	LogLevel string

	// Session identification
	SessionID string
	Hostname  string
}

// Default configuration values.
const (
	DefaultClock       = "auto"
	DefaultTimeout     = reptest.DefaultTimeout
	DefaultPrintEvery  = reptest.DefaultPrintEvery
	DefaultOutputDir   = "."
	DefaultFormat      = "jsonl"
	DefaultLogLevel    = "info"
	DefaultCalibration = clock.DefaultCalibration
)

// New creates a Config with default values.
func New() *Config {
	hostname, _ := os.Hostname()

	return &Config{
		Clock:        DefaultClock,
		Calibration:  DefaultCalibration,
		Timeout:      DefaultTimeout,
		PrintEvery:   DefaultPrintEvery,
		PinCPU:       true,
		PageFaults:   true,
		OutputDir:    DefaultOutputDir,
		OutputFormat: DefaultFormat,
		LogLevel:     DefaultLogLevel,
		Hostname:     hostname,
		SessionID:    uuid.NewString(),
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if !slices.Contains(clock.Names(), strings.ToLower(c.Clock)) {
		return fmt.Errorf("%w: unknown clock %q (valid: %s)", ErrInvalid, c.Clock, strings.Join(clock.Names(), ", "))
	}

	if c.Calibration < time.Millisecond {
		return fmt.Errorf("%w: calibration window must be at least 1ms, got %v", ErrInvalid, c.Calibration)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %v", ErrInvalid, c.Timeout)
	}

	if c.PrintEvery < 1 {
		return fmt.Errorf("%w: print-every must be at least 1, got %d", ErrInvalid, c.PrintEvery)
	}

	if _, ok := exporting.Get(c.OutputFormat); !ok {
		return fmt.Errorf("%w: output format %s (valid: %s)", ErrInvalid, c.OutputFormat, strings.Join(exporting.Names(), ", "))
	}

	if _, err := ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if c.OutputDir != "" {
		if info, err := os.Stat(c.OutputDir); err != nil {
			if !os.IsNotExist(err) {
				return fmt.Errorf("cannot access output directory: %w", err)
			}
		} else if !info.IsDir() {
			return fmt.Errorf("%w: output path is not a directory: %s", ErrInvalid, c.OutputDir)
		}
	}

	return nil
}

// ApplyDefaults fills in any missing values with defaults.
func (c *Config) ApplyDefaults() {
	if c.Clock == "" {
		c.Clock = DefaultClock
	}
	if c.Calibration == 0 {
		c.Calibration = DefaultCalibration
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.PrintEvery == 0 {
		c.PrintEvery = DefaultPrintEvery
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.OutputFormat == "" {
		c.OutputFormat = DefaultFormat
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Hostname == "" {
		c.Hostname, _ = os.Hostname()
	}
	if c.SessionID == "" {
		c.SessionID = uuid.NewString()
	}
}

// OutputPath returns the export path for a run. An explicit OutputName wins;
// otherwise the name is prefix plus a timestamp.
func (c *Config) OutputPath(prefix string) string {
	name := c.OutputName
	if name == "" {
		name = fmt.Sprintf("%s-%s", prefix, time.Now().Format("20060102-150405"))
	} else {
		name = strings.TrimSuffix(name, exporting.GetExtension(c.OutputFormat))
	}
	return exporting.OutputPath(c.OutputDir, name, c.OutputFormat)
}

// ExporterOptions returns the options stamping this session on exports.
func (c *Config) ExporterOptions(kind string) []exporting.ExporterOption {
	return []exporting.ExporterOption{
		exporting.WithSession(c.SessionID),
		exporting.WithHostname(c.Hostname),
		exporting.WithKind(kind),
	}
}
