package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Schedule ScheduleConfig `mapstructure:"schedule" validate:"required"`
	Activity ActivityConfig `mapstructure:"activity" validate:"required"`
	SRS      SRSConfig      `mapstructure:"srs"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel        string        `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	URL          string `mapstructure:"url" validate:"required"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret" validate:"omitempty,min=32"`
	Audience  string        `mapstructure:"audience"`
	Required  bool          `mapstructure:"required"`
	ClockSkew time.Duration `mapstructure:"clock_skew" validate:"gte=0"`
}

// ScheduleConfig controls calendar handling and result bounds.
type ScheduleConfig struct {
	Timezone        string `mapstructure:"timezone" validate:"required"`
	ForecastDays    int    `mapstructure:"forecast_days" validate:"gte=0,ltefield=MaxForecastDays"`
	MaxForecastDays int    `mapstructure:"max_forecast_days" validate:"gte=1"`
	DueListLimit    int    `mapstructure:"due_list_limit" validate:"gte=0"`
}

// Location resolves the configured IANA time zone.
func (c ScheduleConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// ActivityConfig bounds the training history listings.
type ActivityConfig struct {
	DrillLogLimit  int `mapstructure:"drill_log_limit" validate:"gte=1,ltefield=MaxLogLimit"`
	LogLimit       int `mapstructure:"log_limit" validate:"gte=1,ltefield=MaxLogLimit"`
	MaxLogLimit    int `mapstructure:"max_log_limit" validate:"gte=1"`
	HeatmapDays    int `mapstructure:"heatmap_days" validate:"gte=1,ltefield=MaxHeatmapDays"`
	MaxHeatmapDays int `mapstructure:"max_heatmap_days" validate:"gte=1"`
}

// SRSConfig overrides the scheduling constants. Zero values keep the defaults.
type SRSConfig struct {
	InitialEaseFactor float64 `mapstructure:"initial_ease_factor" validate:"omitempty,gte=1.3"`
	MinEaseFactor     float64 `mapstructure:"min_ease_factor" validate:"omitempty,gte=1.3"`
	LapseThreshold    int     `mapstructure:"lapse_threshold" validate:"omitempty,gte=1,lte=5"`
	LapsePenalty      float64 `mapstructure:"lapse_penalty" validate:"omitempty,gt=0"`
	FirstInterval     int     `mapstructure:"first_interval" validate:"omitempty,gte=1"`
	SecondInterval    int     `mapstructure:"second_interval" validate:"omitempty,gte=1"`
}
