// Package config loads workout-builder settings from a config file, the
// environment and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	fileName  = "workout-builder"
	envPrefix = "WORKOUT_BUILDER"
	appDir    = ".workout-builder"
)

// Config holds all configuration for the application
type Config struct {
	FTP      float64        `mapstructure:"ftp"`
	Server   ServerConfig   `mapstructure:"server"`
	Library  LibraryConfig  `mapstructure:"library"`
	AutoSave AutoSaveConfig `mapstructure:"autosave"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// LibraryConfig selects the workout library backend
type LibraryConfig struct {
	Driver string `mapstructure:"driver"` // "file" or "sqlite"
	Dir    string `mapstructure:"dir"`
}

type AutoSaveConfig struct {
	Delay time.Duration `mapstructure:"delay"`
}

type CacheConfig struct {
	Size int `mapstructure:"size"`
}

// LogConfig controls the log destination. An empty File logs to stderr.
type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// flagKeys maps command line flags onto config keys
var flagKeys = map[string]string{
	"ftp":            "ftp",
	"addr":           "server.address",
	"library-driver": "library.driver",
	"library-dir":    "library.dir",
	"log-file":       "log.file",
}

// RegisterFlags adds the flags Load understands to fs
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a config file")
	fs.Float64("ftp", 0, "functional threshold power in watts")
	fs.String("addr", "", "HTTP listen address")
	fs.String("library-driver", "", "workout library backend (file or sqlite)")
	fs.String("library-dir", "", "directory holding the workout library")
	fs.String("log-file", "", "write logs to this file instead of stderr")
}

// DefaultDir returns the per-user data directory
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return appDir
	}
	return filepath.Join(home, appDir)
}

// Load reads configuration. Precedence, highest first: flags that were set
// on the command line, WORKOUT_BUILDER_* environment variables, the config
// file, defaults. fs may be nil.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configFile := ""
	if fs != nil {
		if f := fs.Lookup("config"); f != nil {
			configFile = f.Value.String()
		}
		for name, key := range flagKeys {
			f := fs.Lookup(name)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return Config{}, fmt.Errorf("binding flag %s: %w", name, err)
			}
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(fileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(DefaultDir())
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ftp", 250)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("library.driver", "file")
	v.SetDefault("library.dir", DefaultDir())
	v.SetDefault("autosave.delay", "1s")
	v.SetDefault("cache.size", 256)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
}

// Validate rejects settings no component can run with
func (c Config) Validate() error {
	if c.FTP <= 0 {
		return fmt.Errorf("config: ftp must be positive, got %g", c.FTP)
	}
	if strings.TrimSpace(c.Library.Dir) == "" {
		return errors.New("config: library.dir must be set")
	}
	if c.AutoSave.Delay < 0 {
		return fmt.Errorf("config: autosave.delay must not be negative, got %s", c.AutoSave.Delay)
	}
	return nil
}
