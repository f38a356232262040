// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package supervisor

import (
	"time"

	"github.com/matt-FFFFFF/tedrun/internal/launcher"
)

// DefaultPollInterval bounds how long an exited process goes unnoticed.
const DefaultPollInterval = 100 * time.Millisecond

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithLauncher sets the process launcher.
func WithLauncher(l launcher.Launcher) Option {
	return func(s *Supervisor) {
		s.launcher = l
	}
}

// WithPollInterval sets the interval of the exit probe.
func WithPollInterval(d time.Duration) Option {
	return func(s *Supervisor) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithMarkerPolicy controls whether an "ERROR:" line on stderr fails an item
// whose process exited successfully. Enabled by default.
func WithMarkerPolicy(strict bool) Option {
	return func(s *Supervisor) {
		s.strictStderr = strict
	}
}

// WithGetenv sets the lookup used to compute the environment overrides.
func WithGetenv(getenv func(string) string) Option {
	return func(s *Supervisor) {
		s.getenv = getenv
	}
}
