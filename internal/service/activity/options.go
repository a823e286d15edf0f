package activity

import "time"

// Default bounds applied when no option overrides them.
const (
	DefaultDrillLogLimit  = 50
	DefaultLogLimit       = 100
	DefaultMaxLogLimit    = 1000
	DefaultHeatmapDays    = 90
	DefaultMaxHeatmapDays = 366
)

// Option configures an activity service.
type Option func(*activityService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *activityService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the time zone that decides which calendar day a log
// belongs to.
func WithLocation(loc *time.Location) Option {
	return func(s *activityService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithLogLimits sets the default page size for one drill's logs and for all
// logs, and the largest page a caller may ask for. Non-positive values keep
// the defaults.
func WithLogLimits(drillLogs, logs, maxLogs int) Option {
	return func(s *activityService) {
		if drillLogs > 0 {
			s.drillLogLimit = drillLogs
		}
		if logs > 0 {
			s.logLimit = logs
		}
		if maxLogs > 0 {
			s.maxLogLimit = maxLogs
		}
	}
}

// WithHeatmapDays sets the default and maximum length of a DailyActivity window.
func WithHeatmapDays(days, maxDays int) Option {
	return func(s *activityService) {
		if days > 0 {
			s.heatmapDays = days
		}
		if maxDays > 0 {
			s.maxHeatmapDays = maxDays
		}
	}
}
