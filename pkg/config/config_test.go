package config

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"PerfHarness/pkg/reptest"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommand(c *Config) *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	c.AddAllFlags(cmd)
	return cmd
}

func TestNew_Valid(t *testing.T) {
	c := New()
	require.NoError(t, c.Validate())
	assert.Equal(t, DefaultClock, c.Clock)
	assert.Equal(t, DefaultFormat, c.OutputFormat)
	assert.NotEmpty(t, c.SessionID)
	assert.True(t, c.PinCPU)
}

func TestValidate(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"clock", func(c *Config) { c.Clock = "sundial" }},
		{"calibration", func(c *Config) { c.Calibration = time.Microsecond }},
		{"timeout", func(c *Config) { c.Timeout = 0 }},
		{"print every", func(c *Config) { c.PrintEvery = 0 }},
		{"format", func(c *Config) { c.OutputFormat = "xml" }},
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
		{"output dir", func(c *Config) { c.OutputDir = file }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid), err)
		})
	}
}

func TestValidate_MissingOutputDirIsFine(t *testing.T) {
	c := New()
	c.OutputDir = filepath.Join(t.TempDir(), "later")
	assert.NoError(t, c.Validate())
}

func TestApplyDefaults(t *testing.T) {
	c := &Config{}
	c.ApplyDefaults()
	assert.Equal(t, DefaultClock, c.Clock)
	assert.Equal(t, DefaultTimeout, c.Timeout)
	assert.Equal(t, DefaultPrintEvery, c.PrintEvery)
	assert.Equal(t, DefaultCalibration, c.Calibration)
	assert.NotEmpty(t, c.SessionID)
	assert.NoError(t, c.Validate())
}

func TestOutputPath(t *testing.T) {
	c := New()
	c.OutputDir = "out"
	c.OutputFormat = "csv"

	c.OutputName = "results.csv"
	assert.Equal(t, filepath.Join("out", "results.csv"), c.OutputPath("reptest"))

	c.OutputName = ""
	path := c.OutputPath("reptest")
	assert.Equal(t, "out", filepath.Dir(path))
	assert.Regexp(t, `^reptest-\d{8}-\d{6}\.csv$`, filepath.Base(path))
}

func TestFlags(t *testing.T) {
	c := New()
	cmd := newCommand(c)
	require.NoError(t, cmd.ParseFlags([]string{"--clock", "monotonic", "-t", "2s", "-f", "parquet", "--pin=false"}))
	assert.Equal(t, "monotonic", c.Clock)
	assert.Equal(t, 2*time.Second, c.Timeout)
	assert.Equal(t, "parquet", c.OutputFormat)
	assert.False(t, c.PinCPU)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "perfh.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timeout: 5s\nprint_every: 3\nformat: csv\nclock: tsc\n"), 0o644))
	t.Setenv("PERFH_OUTPUT_DIR", "/tmp/perfh-out")
	t.Setenv("PERFH_CLOCK", "monotonic")

	c := New()
	cmd := newCommand(c)
	require.NoError(t, cmd.ParseFlags([]string{"--format", "tsv"}))
	require.NoError(t, Load(viper.New(), cmd.Flags(), path))

	assert.Equal(t, 5*time.Second, c.Timeout)
	assert.Equal(t, 3, c.PrintEvery)
	assert.Equal(t, "tsv", c.OutputFormat, "explicit flag wins over the file")
	assert.Equal(t, "/tmp/perfh-out", c.OutputDir)
	assert.Equal(t, "monotonic", c.Clock, "environment wins over the file")
}

func TestLoad_BadValue(t *testing.T) {
	t.Setenv("PERFH_PRINT_EVERY", "often")
	c := New()
	cmd := newCommand(c)
	err := Load(viper.New(), cmd.Flags(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoad_MissingFile(t *testing.T) {
	c := New()
	cmd := newCommand(c)
	assert.Error(t, Load(viper.New(), cmd.Flags(), filepath.Join(t.TempDir(), "none.yaml")))
}

func TestNewLogger(t *testing.T) {
	c := New()
	c.LogLevel = "warn"
	var buf bytes.Buffer
	logger, err := c.NewLogger(&buf)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	level, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_SliceFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "perfh.yaml")
	require.NoError(t, os.WriteFile(path, []byte("columns: [best_mibs, worst_ms]\n"), 0o644))
	t.Setenv("PERFH_ONLY", "fresh, read")

	c := New()
	cmd := newCommand(c)
	var columns, only []string
	cmd.Flags().StringSliceVar(&columns, "columns", []string{"best_ms", "avg_ms"}, "")
	cmd.Flags().StringSliceVar(&only, "only", nil, "")
	require.NoError(t, cmd.ParseFlags(nil))

	require.NoError(t, Load(viper.New(), cmd.Flags(), path))
	assert.Equal(t, []string{"best_mibs", "worst_ms"}, columns)
	assert.Equal(t, []string{"fresh", "read"}, only)
	assert.True(t, cmd.Flags().Changed("columns"))
}

func TestLoad_SliceFlagKeepsExplicitValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "perfh.yaml")
	require.NoError(t, os.WriteFile(path, []byte("columns: [best_mibs]\n"), 0o644))

	c := New()
	cmd := newCommand(c)
	var columns []string
	cmd.Flags().StringSliceVar(&columns, "columns", []string{"best_ms"}, "")
	require.NoError(t, cmd.ParseFlags([]string{"--columns", "avg_ms"}))

	require.NoError(t, Load(viper.New(), cmd.Flags(), path))
	assert.Equal(t, []string{"avg_ms"}, columns)
}

func TestDefaults_MatchTester(t *testing.T) {
	assert.Equal(t, reptest.DefaultTimeout, New().Timeout)
	assert.Equal(t, reptest.DefaultPrintEvery, New().PrintEvery)
}
