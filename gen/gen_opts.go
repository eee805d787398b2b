package gen

import "log/slog"

// Option configures Generate.
type Option func(*config)

// WithPackage sets the package clause of the generated file.
// Defaults to "assets".
func WithPackage(name string) Option {
	return func(cfg *config) {
		cfg.pkg = name
	}
}

// WithPrefix sets the identifier prefix of the generated declarations.
// Defaults to "Asset".
func WithPrefix(prefix string) Option {
	return func(cfg *config) {
		cfg.prefix = prefix
	}
}

// WithBuildTag adds a //go:build constraint to the generated file.
func WithBuildTag(tag string) Option {
	return func(cfg *config) {
		cfg.buildTag = tag
	}
}

// WithMaxFiles overrides the file-count limit (default DefaultMaxFiles).
func WithMaxFiles(n int) Option {
	return func(cfg *config) {
		cfg.maxFiles = n
	}
}

// WithGenerateLogger sets a logger for progress output during generation.
func WithGenerateLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}
