// Package config loads u2kit settings from an optional file, the environment
// and command-line overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"firestige.xyz/u2kit/internal/core"
	"firestige.xyz/u2kit/internal/log"
	"firestige.xyz/u2kit/internal/source"
)

// Config is the root of the configuration tree.
type Config struct {
	Log    *log.LoggerConfig `mapstructure:"log"`
	Reader ReaderConfig      `mapstructure:"reader"`
	Writer WriterConfig      `mapstructure:"writer"`
	Split  SplitConfig       `mapstructure:"split"`
	Output OutputConfig      `mapstructure:"output"`
}

// ReaderConfig selects how logs are read.
type ReaderConfig struct {
	Backend      string        `mapstructure:"backend"`
	Follow       bool          `mapstructure:"follow"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	KeepGoing    bool          `mapstructure:"keep_going"` // continue past partial packet records
}

// WriterConfig selects how logs are written.
type WriterConfig struct {
	Backend string `mapstructure:"backend"`
	Append  bool   `mapstructure:"append"`
}

type SplitConfig struct {
	Prefix string `mapstructure:"prefix"`
	Count  int    `mapstructure:"count"`
}

// OutputConfig controls the dump front-ends.
type OutputConfig struct {
	Format string       `mapstructure:"format"` // text | json | yaml
	Decode bool         `mapstructure:"decode"`
	Filter FilterConfig `mapstructure:"filter"`
}

// FilterConfig narrows the records handed to a front-end.
type FilterConfig struct {
	Types []string `mapstructure:"types"`
	SIDs  []uint32 `mapstructure:"sids"`
	BPF   string   `mapstructure:"bpf"`
}

const (
	DefaultBackend      = "stream"
	DefaultPollInterval = time.Second
	DefaultSplitPrefix  = "unified2.log"
)

var outputFormats = map[string]bool{"text": true, "json": true, "yaml": true}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Validate checks the loaded values; every failure wraps core.ErrConfigInvalid.
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level %q", core.ErrConfigInvalid, c.Log.Level)
	}
	if !source.Registered(c.Reader.Backend) {
		return fmt.Errorf("%w: reader.backend %q (known: %s)", core.ErrConfigInvalid,
			c.Reader.Backend, strings.Join(source.Names(), ", "))
	}
	if !source.SinkRegistered(c.Writer.Backend) {
		return fmt.Errorf("%w: writer.backend %q (known: %s)", core.ErrConfigInvalid,
			c.Writer.Backend, strings.Join(source.SinkNames(), ", "))
	}
	if c.Reader.PollInterval <= 0 {
		return fmt.Errorf("%w: reader.poll_interval must be positive", core.ErrConfigInvalid)
	}
	if c.Split.Count < 0 {
		return fmt.Errorf("%w: split.count must not be negative", core.ErrConfigInvalid)
	}
	if !outputFormats[c.Output.Format] {
		return fmt.Errorf("%w: output.format %q (must be text/json/yaml)", core.ErrConfigInvalid, c.Output.Format)
	}
	for _, t := range c.Output.Filter.Types {
		if _, ok := core.ParseRecordType(t); !ok {
			return fmt.Errorf("%w: output.filter.types: unknown record type %q", core.ErrConfigInvalid, t)
		}
	}
	return nil
}
