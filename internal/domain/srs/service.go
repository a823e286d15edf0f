package srs

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/drillsched/internal/domain"
)

// Common errors
var (
	ErrNilState       = errors.New("practice state cannot be nil")
	ErrInvalidQuality = domain.ErrInvalidQuality
	ErrInvalidState   = errors.New("invalid scheduling state")
)

// Service defines the interface for SRS algorithm operations.
// All methods are pure: they return new states and never mutate their input.
type Service interface {
	// ComputeNext runs one scheduling step on raw values.
	ComputeNext(quality domain.Quality, easeFactor float64, intervalDays, repetitions int) (Result, error)

	// Initial returns the default state for a drill that has never been practiced.
	Initial(ownerID, drillID uuid.UUID, now time.Time) (*domain.PracticeState, error)

	// CalculateNext computes the state that follows a practice with the given quality.
	CalculateNext(
		state *domain.PracticeState,
		quality domain.Quality,
		now time.Time,
	) (*domain.PracticeState, error)

	// Reset returns state with its scheduling fields restored to the defaults.
	Reset(state *domain.PracticeState, now time.Time) (*domain.PracticeState, error)

	// Location is the time zone in which calendar dates are taken.
	Location() *time.Location
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
	loc    *time.Location
}

// NewDefaultService creates a new SRS service with default parameters and UTC dates
func NewDefaultService() (Service, error) {
	return NewServiceWithParams(NewDefaultParams(), time.UTC)
}

// NewServiceWithParams creates a new SRS service with custom parameters.
// A nil loc means UTC.
func NewServiceWithParams(params *Params, loc *time.Location) (Service, error) {
	if params == nil {
		return nil, ErrInvalidParams
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}
	return &defaultService{
		params: params,
		loc:    loc,
	}, nil
}

// ComputeNext implements Service.
func (s *defaultService) ComputeNext(
	quality domain.Quality,
	easeFactor float64,
	intervalDays int,
	repetitions int,
) (Result, error) {
	return s.params.ComputeNext(quality, easeFactor, intervalDays, repetitions)
}

// Initial implements Service.
func (s *defaultService) Initial(ownerID, drillID uuid.UUID, now time.Time) (*domain.PracticeState, error) {
	state, err := domain.NewPracticeState(ownerID, drillID, now, s.loc)
	if err != nil {
		return nil, err
	}
	state.EaseFactor = s.params.InitialEaseFactor
	return state, nil
}

// CalculateNext implements Service.
func (s *defaultService) CalculateNext(
	state *domain.PracticeState,
	quality domain.Quality,
	now time.Time,
) (*domain.PracticeState, error) {
	if state == nil {
		return nil, ErrNilState
	}

	res, err := s.params.ComputeNext(quality, state.EaseFactor, state.IntervalDays, state.Repetitions)
	if err != nil {
		return nil, err
	}

	now = now.UTC()
	next := state.Clone()
	next.EaseFactor = res.EaseFactor
	next.IntervalDays = res.IntervalDays
	next.Repetitions = res.Repetitions
	next.LastPracticedAt = now
	next.NextDueDate = domain.AddDays(domain.DateOf(now, s.loc), res.IntervalDays)
	next.UpdatedAt = now

	return next, nil
}

// Reset implements Service.
func (s *defaultService) Reset(state *domain.PracticeState, now time.Time) (*domain.PracticeState, error) {
	if state == nil {
		return nil, ErrNilState
	}

	now = now.UTC()
	next := state.Clone()
	next.EaseFactor = s.params.InitialEaseFactor
	next.IntervalDays = domain.DefaultIntervalDays
	next.Repetitions = 0
	next.LastPracticedAt = now
	next.NextDueDate = domain.AddDays(domain.DateOf(now, s.loc), domain.DefaultIntervalDays)
	next.UpdatedAt = now

	return next, nil
}

// Location implements Service.
func (s *defaultService) Location() *time.Location {
	return s.loc
}
