package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "DRILLSCHED"

// keys lists every setting so that AutomaticEnv can see values that have
// neither a default nor a config file entry.
var keys = []string{
	"server.port", "server.log_level", "server.request_timeout", "server.shutdown_timeout",
	"database.driver", "database.url", "database.max_open_conns",
	"auth.jwt_secret", "auth.audience", "auth.required", "auth.clock_skew",
	"schedule.timezone", "schedule.forecast_days", "schedule.max_forecast_days", "schedule.due_list_limit",
	"activity.drill_log_limit", "activity.log_limit", "activity.max_log_limit",
	"activity.heatmap_days", "activity.max_heatmap_days",
	"srs.initial_ease_factor", "srs.min_ease_factor", "srs.lapse_threshold",
	"srs.lapse_penalty", "srs.first_interval", "srs.second_interval",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.request_timeout", "10s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.max_open_conns", 10)

	v.SetDefault("auth.audience", "authenticated")
	v.SetDefault("auth.required", true)
	v.SetDefault("auth.clock_skew", "30s")

	v.SetDefault("schedule.timezone", "UTC")
	v.SetDefault("schedule.forecast_days", 7)
	v.SetDefault("schedule.max_forecast_days", 90)
	v.SetDefault("schedule.due_list_limit", 0)

	v.SetDefault("activity.drill_log_limit", 50)
	v.SetDefault("activity.log_limit", 100)
	v.SetDefault("activity.max_log_limit", 1000)
	v.SetDefault("activity.heatmap_days", 90)
	v.SetDefault("activity.max_heatmap_days", 366)
}

// Load reads configuration from config.yaml in the working directory, if
// present, and from environment variables.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file. An empty path searches the
// working directory for config.yaml and tolerates its absence; an explicit
// path must exist.
// Environment variables take precedence over values from config files.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags and cross-field rules.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if cfg.Auth.Required && cfg.Auth.JWTSecret == "" {
		return errors.New("config validation failed: auth.jwt_secret is required when auth.required is true")
	}
	if _, err := cfg.Schedule.Location(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
