package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"firestige.xyz/u2kit/internal/log"
)

// EnvPrefix prefixes every environment override, e.g. U2KIT_READER_BACKEND.
const EnvPrefix = "U2KIT"

// Load reads the file at path (if non-empty), applies environment overrides
// and defaults, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it without a file.
func setDefaults(v *viper.Viper) {
	def := log.DefaultConfig()
	v.SetDefault("log.level", def.Level)
	v.SetDefault("log.pattern", def.Pattern)
	v.SetDefault("log.time", def.Time)

	v.SetDefault("reader.backend", DefaultBackend)
	v.SetDefault("reader.follow", false)
	v.SetDefault("reader.poll_interval", DefaultPollInterval)
	v.SetDefault("reader.keep_going", false)

	v.SetDefault("writer.backend", DefaultBackend)
	v.SetDefault("writer.append", false)

	v.SetDefault("split.prefix", DefaultSplitPrefix)
	v.SetDefault("split.count", 0)

	v.SetDefault("output.format", "text")
	v.SetDefault("output.decode", false)
	v.SetDefault("output.filter.bpf", "")
}

// applyDefaults fills the fields a partial file may leave empty.
func applyDefaults(cfg *Config) {
	def := log.DefaultConfig()
	if cfg.Log == nil {
		cfg.Log = def
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Level
	}
	if cfg.Log.Pattern == "" {
		cfg.Log.Pattern = def.Pattern
	}
	if cfg.Log.Time == "" {
		cfg.Log.Time = def.Time
	}
	if cfg.Log.File != nil && cfg.Log.File.Filename == "" {
		cfg.Log.File = nil
	}
	if cfg.Reader.Backend == "" {
		cfg.Reader.Backend = DefaultBackend
	}
	if cfg.Reader.PollInterval == 0 {
		cfg.Reader.PollInterval = DefaultPollInterval
	}
	if cfg.Writer.Backend == "" {
		cfg.Writer.Backend = DefaultBackend
	}
	if cfg.Split.Prefix == "" {
		cfg.Split.Prefix = DefaultSplitPrefix
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = "text"
	}
}
