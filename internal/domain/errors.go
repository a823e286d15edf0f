package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidQuality is returned when a recall quality is outside 0..5.
	ErrInvalidQuality = errors.New("quality must be an integer between 0 and 5")

	// ErrInvalidReps is returned when a rep log does not record at least one rep.
	ErrInvalidReps = errors.New("reps must be a positive integer")

	// ErrInvalidDate is returned when a calendar date cannot be parsed.
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")
)
