package repository

import "time"

// Option applies a configuration option to the RosterStore.
type Option func(*RosterStore)

// WithDefaultBudget sets the starting budget for teams registered
// without an explicit one.
func WithDefaultBudget(budget float64) Option {
	return func(s *RosterStore) {
		if budget > 0 {
			s.defaultBudget = budget
		}
	}
}

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *RosterStore) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}
