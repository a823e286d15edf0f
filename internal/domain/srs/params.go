package srs

import (
	"errors"
	"fmt"

	"github.com/phrazzld/drillsched/internal/domain"
)

// ErrInvalidParams is returned when a Params instance cannot drive the scheduler.
var ErrInvalidParams = errors.New("invalid scheduler parameters")

// Params defines all configurable parameters for the SRS algorithm
type Params struct {
	// Ease limits
	InitialEaseFactor float64
	MinEaseFactor     float64

	// Lapse handling: a quality below LapseThreshold resets the streak
	// and lowers the ease by LapsePenalty.
	LapseThreshold domain.Quality
	LapsePenalty   float64

	// Intervals after the first and second consecutive successes
	FirstInterval  int
	SecondInterval int
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance
type ParamsConfig struct {
	InitialEaseFactor float64
	MinEaseFactor     float64
	LapseThreshold    int
	LapsePenalty      float64
	FirstInterval     int
	SecondInterval    int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		InitialEaseFactor: domain.DefaultEaseFactor,
		MinEaseFactor:     domain.MinEaseFactor,
		LapseThreshold:    domain.QualityPass,
		LapsePenalty:      0.2,
		FirstInterval:     1,
		SecondInterval:    6,
	}
}

// NewParams creates a new Params instance with custom configuration.
// Zero values in config keep the default.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.InitialEaseFactor > 0 {
		params.InitialEaseFactor = config.InitialEaseFactor
	}
	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}
	if config.LapseThreshold > 0 {
		params.LapseThreshold = domain.Quality(config.LapseThreshold)
	}
	if config.LapsePenalty > 0 {
		params.LapsePenalty = config.LapsePenalty
	}
	if config.FirstInterval > 0 {
		params.FirstInterval = config.FirstInterval
	}
	if config.SecondInterval > 0 {
		params.SecondInterval = config.SecondInterval
	}

	return params
}

// Validate checks that the parameters keep every produced state valid.
func (p *Params) Validate() error {
	switch {
	case p.MinEaseFactor < domain.MinEaseFactor:
		return fmt.Errorf("%w: minimum ease %.2f is below %.2f",
			ErrInvalidParams, p.MinEaseFactor, domain.MinEaseFactor)
	case p.InitialEaseFactor < p.MinEaseFactor:
		return fmt.Errorf("%w: initial ease %.2f is below minimum ease %.2f",
			ErrInvalidParams, p.InitialEaseFactor, p.MinEaseFactor)
	case p.LapseThreshold <= domain.MinQuality || p.LapseThreshold > domain.MaxQuality:
		return fmt.Errorf("%w: lapse threshold %d out of range", ErrInvalidParams, p.LapseThreshold)
	case p.LapsePenalty < 0:
		return fmt.Errorf("%w: lapse penalty cannot be negative", ErrInvalidParams)
	case p.FirstInterval < 1 || p.SecondInterval < 1:
		return fmt.Errorf("%w: intervals must be at least 1 day", ErrInvalidParams)
	}
	return nil
}
