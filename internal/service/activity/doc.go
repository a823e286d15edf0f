// Package activity keeps the training history: append-only rep logs, the
// per-day totals a heatmap is drawn from and the consecutive-day streak.
package activity
