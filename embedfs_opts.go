package embedfs

import "log/slog"

// Option configures an FS.
type Option func(*FS)

// WithLogger sets a logger for debug output during mount and resolution.
// Without it, logging is discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(fsys *FS) {
		fsys.logger = logger
	}
}
