package practice

import "time"

// Default bounds applied when no option overrides them. A zero due list
// limit means ListDue returns every due record.
const (
	DefaultDueListLimit    = 0
	DefaultMaxForecastDays = 90
)

// Option configures a practice service.
type Option func(*practiceService)

// WithClock replaces time.Now. Tests use it to pin "now".
func WithClock(now func() time.Time) Option {
	return func(s *practiceService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithDueListLimit caps the number of records ListDue returns. Zero or a
// negative value removes the cap. CountDue is never capped, so callers can
// detect a truncated listing by comparing the two.
func WithDueListLimit(limit int) Option {
	return func(s *practiceService) {
		s.dueListLimit = limit
	}
}

// WithMaxForecastDays bounds the length of an Upcoming window.
func WithMaxForecastDays(days int) Option {
	return func(s *practiceService) {
		if days > 0 {
			s.maxForecastDays = days
		}
	}
}
