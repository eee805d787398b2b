package bundle

import "log/slog"

// WriteOption configures bundle writing.
type WriteOption func(*writeConfig)

type writeConfig struct {
	compression Compression
	logger      *slog.Logger
}

// WithCompression selects the compression applied to the data section.
// The default is CompressionNone.
func WithCompression(c Compression) WriteOption {
	return func(cfg *writeConfig) {
		cfg.compression = c
	}
}

// WithWriteLogger sets the logger used during bundle writing.
func WithWriteLogger(logger *slog.Logger) WriteOption {
	return func(cfg *writeConfig) {
		cfg.logger = logger
	}
}
