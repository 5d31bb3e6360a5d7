package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"cloudpick/internal/domain"
	"cloudpick/internal/printers"
	"cloudpick/internal/telemetry"
)

// Config is the fully resolved runtime configuration.
type Config struct {
	Profile string `mapstructure:"profile"`
	Region  string `mapstructure:"region"`
	Editor  string `mapstructure:"editor"`
	Output  string `mapstructure:"output"`

	Log       LogConfig         `mapstructure:"log"`
	Trace     TraceConfig       `mapstructure:"trace"`
	Remote    RemoteConfig      `mapstructure:"remote"`
	Selector  SelectorConfig    `mapstructure:"selector"`
	Aggregate ConcurrencyConfig `mapstructure:"aggregate"`
	Batch     ConcurrencyConfig `mapstructure:"batch"`
	Logs      LogsConfig        `mapstructure:"logs"`
	Storage   StorageConfig     `mapstructure:"storage"`
	Download  DownloadConfig    `mapstructure:"download"`
}

// LogConfig controls diagnostic logging on stderr.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// TraceConfig selects where spans are exported.
type TraceConfig struct {
	Exporter string `mapstructure:"exporter"`
	Endpoint string `mapstructure:"endpoint"`
	Insecure bool   `mapstructure:"insecure"`
}

// RemoteConfig controls the platform CLI gateway.
type RemoteConfig struct {
	CLI   string  `mapstructure:"cli"`
	Rate  float64 `mapstructure:"rate"`
	Burst int     `mapstructure:"burst"`
}

// SelectorConfig controls the fuzzy finder.
type SelectorConfig struct {
	Command string `mapstructure:"command"`
	Height  string `mapstructure:"height"`
}

// ConcurrencyConfig bounds parallel work units. Zero means unbounded where
// the consumer allows it.
type ConcurrencyConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// LogsConfig controls log tailing.
type LogsConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	Lookback     time.Duration `mapstructure:"lookback"`
}

// StorageConfig points the object store client at an S3-compatible endpoint.
type StorageConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Secure   bool   `mapstructure:"secure"`
	PageSize int    `mapstructure:"page_size"`
}

// DownloadConfig controls where downloaded objects land.
type DownloadConfig struct {
	Dir string `mapstructure:"dir"`
}

// flagKeys maps persistent flag names to config keys.
var flagKeys = map[string]string{
	"profile":   "profile",
	"region":    "region",
	"log-level": "log.level",
	"editor":    "editor",
	"output":    "output",
}

// SetDefaults installs the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("profile", "")
	v.SetDefault("region", "")
	v.SetDefault("editor", "")
	v.SetDefault("output", "yaml")
	v.SetDefault("log.level", "warn")
	v.SetDefault("trace.exporter", "none")
	v.SetDefault("trace.endpoint", "localhost:4317")
	v.SetDefault("trace.insecure", true)
	v.SetDefault("remote.cli", "aws")
	v.SetDefault("remote.rate", 10.0)
	v.SetDefault("remote.burst", 5)
	v.SetDefault("selector.command", "fzf")
	v.SetDefault("selector.height", "40%")
	v.SetDefault("aggregate.concurrency", 0)
	v.SetDefault("batch.concurrency", 4)
	v.SetDefault("logs.poll_interval", 2*time.Second)
	v.SetDefault("logs.lookback", 5*time.Minute)
	v.SetDefault("storage.endpoint", "s3.amazonaws.com")
	v.SetDefault("storage.secure", true)
	v.SetDefault("storage.page_size", 1000)
	v.SetDefault("download.dir", ".")
}

// Load resolves the configuration. file may be empty to use the default
// location, where a missing file is not an error. flags may be nil.
func Load(file string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix("CLOUDPICK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := readFile(v, file); err != nil {
		return nil, err
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readFile(v *viper.Viper, file string) error {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", file, err)
		}
		return nil
	}

	dir, err := DefaultDir()
	if err != nil {
		return nil
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// DefaultDir returns $XDG_CONFIG_HOME/cloudpick (or the OS equivalent).
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "cloudpick"), nil
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return &domain.ValidationError{Field: "log.level", Reason: fmt.Sprintf("unknown level %q", c.Log.Level)}
	}
	if !slices.Contains(printers.SupportedFormats(), c.Output) {
		return &domain.ValidationError{
			Field:  "output",
			Reason: fmt.Sprintf("unknown format %q, want one of %s", c.Output, strings.Join(printers.SupportedFormats(), ", ")),
		}
	}
	if !slices.Contains(telemetry.Exporters(), c.Trace.Exporter) {
		return &domain.ValidationError{
			Field:  "trace.exporter",
			Reason: fmt.Sprintf("unknown exporter %q, want one of %s", c.Trace.Exporter, strings.Join(telemetry.Exporters(), ", ")),
		}
	}
	if c.Trace.Exporter == telemetry.ExporterOTLP && c.Trace.Endpoint == "" {
		return &domain.ValidationError{Field: "trace.endpoint", Reason: "must not be empty with the otlp exporter"}
	}
	if c.Remote.CLI == "" {
		return &domain.ValidationError{Field: "remote.cli", Reason: "must not be empty"}
	}
	if c.Remote.Rate <= 0 {
		return &domain.ValidationError{Field: "remote.rate", Reason: "must be positive"}
	}
	if c.Remote.Burst < 1 {
		return &domain.ValidationError{Field: "remote.burst", Reason: "must be at least 1"}
	}
	if c.Selector.Command == "" {
		return &domain.ValidationError{Field: "selector.command", Reason: "must not be empty"}
	}
	if c.Aggregate.Concurrency < 0 {
		return &domain.ValidationError{Field: "aggregate.concurrency", Reason: "must not be negative"}
	}
	if c.Batch.Concurrency < 1 {
		return &domain.ValidationError{Field: "batch.concurrency", Reason: "must be at least 1"}
	}
	if c.Logs.PollInterval <= 0 {
		return &domain.ValidationError{Field: "logs.poll_interval", Reason: "must be positive"}
	}
	if c.Storage.PageSize < 1 || c.Storage.PageSize > 1000 {
		return &domain.ValidationError{Field: "storage.page_size", Reason: "must be between 1 and 1000"}
	}
	return nil
}
