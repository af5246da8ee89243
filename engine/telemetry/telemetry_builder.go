package telemetry

import "time"

// BuilderOption is a function that modifies the recorder during construction.
type BuilderOption func(*recorder)

// WithLogInterval sets how often the recorder logs a pacing summary.
// A non-positive interval disables periodic logging; Snapshot still works.
//
// Parameters:
//   - interval: the minimum time between summaries
//
// Returns:
//   - BuilderOption: a function that applies the interval
func WithLogInterval(interval time.Duration) BuilderOption {
	return func(r *recorder) {
		r.logInterval = interval
	}
}
