package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// Config holds the static options fixed at startup. Values come from an
// optional JSON config file, then environment variables, then validation.
type Config struct {
	Port                   int     `json:"port" env:"PROCWATCH_PORT" validate:"gt=0,lte=65535"`
	RefreshIntervalSeconds float64 `json:"refresh_interval_seconds" env:"PROCWATCH_REFRESH_INTERVAL" validate:"gt=0"`
	PageSize               int     `json:"page_size" env:"PROCWATCH_PAGE_SIZE" validate:"gt=0"`
	WindowCapacity         int     `json:"window_capacity" env:"PROCWATCH_WINDOW_CAPACITY" validate:"gt=0"`
	Theme                  string  `json:"theme" env:"PROCWATCH_THEME" validate:"oneof=dark light"`
	LogFile                string  `json:"log_file" env:"PROCWATCH_LOG_FILE"`
	VerboseHTTP            bool    `json:"verbose_http" env:"PROCWATCH_VERBOSE_HTTP"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:                   8337,
		RefreshIntervalSeconds: 2,
		PageSize:               50,
		WindowCapacity:         60,
		Theme:                  "dark",
		LogFile:                "procwatch.log",
	}
}

// Load builds the effective configuration. A missing file at path is not an
// error (defaults apply); a malformed or invalid one is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := json.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// defaults
		default:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// RefreshInterval returns the tick interval as a duration.
func (c Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSeconds * float64(time.Second))
}
