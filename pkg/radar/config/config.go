package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/komsit37/radar/pkg/radar/types"
)

// Keys shared by the config file, RADAR_* environment variables and flags.
const (
	KeyBaseURL       = "base_url"
	KeyExchange      = "exchange"
	KeyTimeframe     = "timeframe"
	KeyOutput        = "output"
	KeyColor         = "color"
	KeyLogLevel      = "log_level"
	KeyWatchInterval = "watch.interval"
	KeyRefTimeout    = "ref.timeout"

	EnvPrefix = "RADAR"
	// FileName is looked up in the home directory when no --config is given.
	FileName = ".radar"
)

// Output formats.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputSyms  = "syms"
)

type Config struct {
	BaseURL       string
	Exchange      types.Exchange
	Timeframe     types.Timeframe
	Output        string
	Color         bool
	LogLevel      string
	WatchInterval time.Duration
	RefTimeout    time.Duration
	// File is the config file that was read, empty when none.
	File string
}

// New returns a viper instance with defaults and environment binding.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyBaseURL, "http://localhost:8000")
	v.SetDefault(KeyExchange, string(types.ExchangeKucoin))
	v.SetDefault(KeyTimeframe, string(types.Timeframe4h))
	v.SetDefault(KeyOutput, OutputTable)
	v.SetDefault(KeyColor, true)
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyWatchInterval, "30s")
	v.SetDefault(KeyRefTimeout, "5s")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file (explicit path, or ~/.radar.yaml when present)
// and returns the validated configuration. A missing default file is not
// an error; a missing explicit file is.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		BaseURL:       strings.TrimSpace(v.GetString(KeyBaseURL)),
		Output:        strings.ToLower(strings.TrimSpace(v.GetString(KeyOutput))),
		Color:         v.GetBool(KeyColor),
		LogLevel:      v.GetString(KeyLogLevel),
		WatchInterval: v.GetDuration(KeyWatchInterval),
		RefTimeout:    v.GetDuration(KeyRefTimeout),
		File:          v.ConfigFileUsed(),
	}
	var err error
	if cfg.Exchange, err = types.ParseExchange(v.GetString(KeyExchange)); err != nil {
		return Config{}, err
	}
	if cfg.Timeframe, err = types.ParseTimeframe(v.GetString(KeyTimeframe)); err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%s must not be empty", KeyBaseURL)
	}
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("%s must be an http(s) URL, got %q", KeyBaseURL, c.BaseURL)
	}
	switch c.Output {
	case OutputTable, OutputJSON, OutputSyms:
	default:
		return &types.InvalidValueError{Field: KeyOutput, Value: c.Output, Allowed: strings.Join([]string{OutputTable, OutputJSON, OutputSyms}, ", ")}
	}
	if c.WatchInterval <= 0 {
		return fmt.Errorf("%s must be positive, got %s", KeyWatchInterval, c.WatchInterval)
	}
	if c.RefTimeout <= 0 {
		return fmt.Errorf("%s must be positive, got %s", KeyRefTimeout, c.RefTimeout)
	}
	return nil
}
