// SPDX-License-Identifier: EPL-2.0

// Package config loads runtime settings and the sound manifest.
//
// Settings come from defaults, an optional YAML file, SNDPOOL_* environment
// variables and command line flags, lowest to highest precedence. Nested
// keys map to variables with dots turned into underscores, so log.level is
// SNDPOOL_LOG_LEVEL.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ik5/sndpool/internal/logger"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ErrInvalidConfig indicates a setting outside its allowed values
var ErrInvalidConfig = errors.New("invalid config")

// Backend names accepted in the backend key.
const (
	BackendOto  = "oto"
	BackendBeep = "beep"
)

// Config is the full runtime configuration.
type Config struct {
	// Dir is the directory of the config file, used to resolve relative
	// sound paths. Empty when no file was read.
	Dir string `mapstructure:"-"`

	Backend    string `mapstructure:"backend"`
	SampleRate int    `mapstructure:"sample_rate"`
	BufferMS   int    `mapstructure:"buffer_ms"`
	PoolSize   int    `mapstructure:"pool_size"`
	Mono       bool   `mapstructure:"mono"`

	// ManifestPath points at a YAML sound manifest.
	ManifestPath string `mapstructure:"manifest"`
	// Sounds maps keys to files inline. Keys are lowercased by viper.
	Sounds map[string]string `mapstructure:"sounds"`

	Log logger.Config `mapstructure:"log"`
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"backend":     "backend",
	"sample-rate": "sample_rate",
	"buffer-ms":   "buffer_ms",
	"pool-size":   "pool_size",
	"mono":        "mono",
	"manifest":    "manifest",
	"log-level":   "log.level",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend", BackendOto)
	v.SetDefault("sample_rate", 44100)
	v.SetDefault("buffer_ms", 50)
	v.SetDefault("pool_size", 16)
	v.SetDefault("mono", true)
	v.SetDefault("manifest", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.stdout", true)
	v.SetDefault("log.file.enabled", false)
	v.SetDefault("log.file.path", "./logs")
	v.SetDefault("log.file.name", logger.DefaultFileName)
	v.SetDefault("log.file.max_size_mb", 100)
	v.SetDefault("log.file.max_backups", 5)
	v.SetDefault("log.file.max_age_days", 30)
	v.SetDefault("log.file.compress", true)
}

// Load reads the configuration. path may be empty, in which case
// sndpool.yaml in the working directory is used if present. flags may be
// nil.
func Load(fs afero.Fs, path string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetFs(fs)
	setDefaults(v)

	v.SetEnvPrefix("sndpool")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	var dir string
	path = strings.TrimSpace(path)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}
		dir = filepath.Dir(path)
	} else {
		v.SetConfigName("sndpool")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.MergeInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, err
			}
		} else {
			dir = filepath.Dir(v.ConfigFileUsed())
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Dir = dir

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every setting.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendOto, BackendBeep:
	default:
		return fmt.Errorf("%w: backend %q, want %s or %s", ErrInvalidConfig, c.Backend, BackendOto, BackendBeep)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample_rate %d", ErrInvalidConfig, c.SampleRate)
	}
	if c.BufferMS < 0 {
		return fmt.Errorf("%w: buffer_ms %d", ErrInvalidConfig, c.BufferMS)
	}
	if c.PoolSize < 0 {
		return fmt.Errorf("%w: pool_size %d", ErrInvalidConfig, c.PoolSize)
	}
	return nil
}
