// Package worker defines the runner contract for asynchronous race
// settlement.
package worker

import (
	"github.com/okian/paddock/pkg/logger"
)

// Option applies a configuration option to the RaceRunner.
type Option func(*RaceRunner)

// WithName sets the runner name for identification and logging.
func WithName(name string) Option {
	return func(r *RaceRunner) {
		if name != "" {
			r.name = name
		}
	}
}

// WithLogger sets a custom logger for the runner.
func WithLogger(log logger.Logger) Option {
	return func(r *RaceRunner) {
		if log != nil {
			r.logger = log
		}
	}
}
