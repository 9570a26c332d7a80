// Package config loads ColorVibe settings from defaults, an optional YAML
// file, an optional .env file, COLORVIBE_* environment variables and
// command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jmylchreest/colorvibe/internal/colour"
)

// EnvPrefix is prepended to every environment override, e.g. COLORVIBE_SERVER_ADDR.
const EnvPrefix = "COLORVIBE"

// Config is the fully resolved application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Upload  UploadConfig  `mapstructure:"upload"`
	Extract ExtractConfig `mapstructure:"extract"`
	Session SessionConfig `mapstructure:"session"`
	Mood    MoodConfig    `mapstructure:"mood"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// UploadConfig bounds accepted images.
type UploadConfig struct {
	MaxBytes  int64 `mapstructure:"max_bytes"`
	MaxPixels int64 `mapstructure:"max_pixels"`
}

// ExtractConfig selects and tunes the quantiser.
type ExtractConfig struct {
	Algorithm     string        `mapstructure:"algorithm"`
	Count         int           `mapstructure:"count"`
	MaxDimension  int           `mapstructure:"max_dimension"`
	MergeDistance float64       `mapstructure:"merge_distance"`

	// Timeout bounds one extraction. The built-in quantisers stop at the
	// next split or clustering pass once it expires.
	Timeout time.Duration `mapstructure:"timeout"`
}

// SessionConfig configures browser sessions.
type SessionConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	CookieName    string        `mapstructure:"cookie_name"`
	SecureCookie  bool          `mapstructure:"secure_cookie"`
	MaxSessions   int           `mapstructure:"max_sessions"`
}

// MoodConfig selects hue averaging for mood labels.
type MoodConfig struct {
	Averaging string `mapstructure:"averaging"`
}

// LogConfig configures the root hclog logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// MetricsConfig configures OpenTelemetry metric export.
type MetricsConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Endpoint string        `mapstructure:"endpoint"`
	Insecure bool          `mapstructure:"insecure"`
	Interval time.Duration `mapstructure:"interval"`
}

// LoadOptions says where to look for configuration beyond the defaults.
type LoadOptions struct {
	// File is a YAML config file. Empty means none.
	File string

	// EnvFile is a dotenv file. A missing file is not an error.
	EnvFile string

	// Flags are bound by FlagBindings when non-nil.
	Flags *pflag.FlagSet
}

// FlagBindings maps command-line flag names to configuration keys.
var FlagBindings = map[string]string{
	"addr":          "server.addr",
	"algorithm":     "extract.algorithm",
	"count":         "extract.count",
	"max-upload":    "upload.max_bytes",
	"mood":          "mood.averaging",
	"log-level":     "log.level",
	"log-json":      "log.json",
	"metrics":       "metrics.enabled",
	"otlp-endpoint": "metrics.endpoint",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("upload.max_bytes", int64(10<<20))
	v.SetDefault("upload.max_pixels", int64(40_000_000))

	v.SetDefault("extract.algorithm", string(colour.AlgorithmMedianCut))
	v.SetDefault("extract.count", 8)
	v.SetDefault("extract.max_dimension", 400)
	v.SetDefault("extract.merge_distance", 0.03)
	v.SetDefault("extract.timeout", 10*time.Second)

	v.SetDefault("session.ttl", 2*time.Hour)
	v.SetDefault("session.sweep_interval", 5*time.Minute)
	v.SetDefault("session.cookie_name", "colorvibe_session")
	v.SetDefault("session.secure_cookie", false)
	v.SetDefault("session.max_sessions", 10000)

	v.SetDefault("mood.averaging", string(colour.HueCircular))

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.endpoint", "localhost:4317")
	v.SetDefault("metrics.insecure", true)
	v.SetDefault("metrics.interval", 30*time.Second)
}

// Default returns the configuration with no overrides applied.
func Default() *Config {
	cfg, err := Load(LoadOptions{})
	if err != nil {
		// Defaults are static and always valid.
		panic(err)
	}
	return cfg
}

// Load resolves configuration and validates it.
func Load(opts LoadOptions) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", opts.EnvFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", opts.File, err)
		}
	}

	if opts.Flags != nil {
		for name, key := range FlagBindings {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every section and joins the problems found.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, fmt.Errorf("server.addr cannot be empty"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.shutdown_timeout must be positive"))
	}
	if c.Upload.MaxBytes <= 0 {
		errs = append(errs, fmt.Errorf("upload.max_bytes must be positive, got %d", c.Upload.MaxBytes))
	}
	if c.Upload.MaxPixels <= 0 {
		errs = append(errs, fmt.Errorf("upload.max_pixels must be positive, got %d", c.Upload.MaxPixels))
	}
	if _, err := c.ExtractorConfig(); err != nil {
		errs = append(errs, fmt.Errorf("extract: %w", err))
	}
	if c.Extract.MaxDimension < 0 {
		errs = append(errs, fmt.Errorf("extract.max_dimension cannot be negative"))
	}
	if c.Extract.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("extract.timeout must be positive"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, fmt.Errorf("session.ttl must be positive"))
	}
	if c.Session.CookieName == "" {
		errs = append(errs, fmt.Errorf("session.cookie_name cannot be empty"))
	}
	if _, err := colour.ParseHueAveraging(c.Mood.Averaging); err != nil {
		errs = append(errs, fmt.Errorf("mood.averaging: %w", err))
	}
	if hclog.LevelFromString(c.Log.Level) == hclog.NoLevel {
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	if c.Metrics.Enabled && c.Metrics.Endpoint == "" {
		errs = append(errs, fmt.Errorf("metrics.endpoint is required when metrics are enabled"))
	}

	return errors.Join(errs...)
}

// ExtractorConfig converts the extract section to a colour.ExtractorConfig.
func (c *Config) ExtractorConfig() (colour.ExtractorConfig, error) {
	ec := colour.ExtractorConfig{
		Algorithm:     colour.Algorithm(c.Extract.Algorithm),
		ColorCount:    c.Extract.Count,
		MergeDistance: c.Extract.MergeDistance,
	}
	return ec, ec.Validate()
}

// MoodOptions converts the mood section to colour.MoodOptions.
func (c *Config) MoodOptions() colour.MoodOptions {
	return colour.MoodOptions{Averaging: colour.HueAveraging(c.Mood.Averaging)}
}
