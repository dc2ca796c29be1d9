package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/u2kit/internal/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "u2kit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "stream", cfg.Reader.Backend)
	assert.Equal(t, time.Second, cfg.Reader.PollInterval)
	assert.Equal(t, "stream", cfg.Writer.Backend)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.Equal(t, DefaultSplitPrefix, cfg.Split.Prefix)
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "stream", cfg.Reader.Backend)
	assert.Nil(t, cfg.Log.File)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
  file:
    filename: /tmp/u2kit.log
    max_size: 10
reader:
  backend: descriptor
  follow: true
  poll_interval: 250ms
  keep_going: true
writer:
  backend: descriptor
  append: true
split:
  prefix: out
  count: 100
output:
  format: json
  decode: true
  filter:
    types: [packet, "7"]
    sids: [10000, 2000]
    bpf: "tcp port 80"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	require.NotNil(t, cfg.Log.File)
	assert.Equal(t, "/tmp/u2kit.log", cfg.Log.File.Filename)
	assert.Equal(t, 10, cfg.Log.File.MaxSize)
	assert.Equal(t, "%time [%level] %field %msg\n", cfg.Log.Pattern)

	assert.Equal(t, "descriptor", cfg.Reader.Backend)
	assert.True(t, cfg.Reader.Follow)
	assert.Equal(t, 250*time.Millisecond, cfg.Reader.PollInterval)
	assert.True(t, cfg.Reader.KeepGoing)
	assert.True(t, cfg.Writer.Append)

	assert.Equal(t, "out", cfg.Split.Prefix)
	assert.Equal(t, 100, cfg.Split.Count)

	assert.Equal(t, "json", cfg.Output.Format)
	assert.True(t, cfg.Output.Decode)
	assert.Equal(t, []string{"packet", "7"}, cfg.Output.Filter.Types)
	assert.Equal(t, []uint32{10000, 2000}, cfg.Output.Filter.SIDs)
	assert.Equal(t, "tcp port 80", cfg.Output.Filter.BPF)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("U2KIT_READER_BACKEND", "memory")
	t.Setenv("U2KIT_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Reader.Backend)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"log level", func(c *Config) { c.Log.Level = "loud" }},
		{"reader backend", func(c *Config) { c.Reader.Backend = "tape" }},
		{"writer backend", func(c *Config) { c.Writer.Backend = "mmap" }},
		{"poll interval", func(c *Config) { c.Reader.PollInterval = -time.Second }},
		{"split count", func(c *Config) { c.Split.Count = -1 }},
		{"format", func(c *Config) { c.Output.Format = "xml" }},
		{"filter type", func(c *Config) { c.Output.Filter.Types = []string{"bogus"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			assert.ErrorIs(t, err, core.ErrConfigInvalid)
		})
	}
}

func TestLoadInvalidValue(t *testing.T) {
	path := writeConfig(t, "output:\n  format: xml\n")
	_, err := Load(path)
	assert.ErrorIs(t, err, core.ErrConfigInvalid)
}
