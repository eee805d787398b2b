package bundle

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ExtractOption configures extraction.
type ExtractOption func(*extractConfig)

type extractConfig struct {
	concurrency int
	overwrite   bool
	logger      *slog.Logger
}

// WithConcurrency sets the number of entries written in parallel.
// The default is runtime.GOMAXPROCS(0).
func WithConcurrency(n int) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.concurrency = n
	}
}

// WithOverwrite allows extraction to replace existing files. By default
// existing files are skipped.
func WithOverwrite(overwrite bool) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.overwrite = overwrite
	}
}

// WithExtractLogger sets the logger used during extraction.
func WithExtractLogger(logger *slog.Logger) ExtractOption {
	return func(cfg *extractConfig) {
		cfg.logger = logger
	}
}

// Extract writes every entry under destDir, recreating the directory
// structure implied by entry paths. Each file is written to a temp file in
// its final directory and renamed into place, so partially written files
// are never visible at the final path. Entry paths must satisfy
// fs.ValidPath; anything else is rejected before any file is touched.
func (a *Archive) Extract(ctx context.Context, destDir string, opts ...ExtractOption) error {
	cfg := extractConfig{concurrency: runtime.GOMAXPROCS(0)}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.concurrency < 1 {
		cfg.concurrency = 1
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	for _, e := range a.entries {
		if !fs.ValidPath(e.Path) || e.Path == "." {
			return &fs.PathError{Op: "extract", Path: e.Path, Err: fs.ErrInvalid}
		}
	}

	if err := os.MkdirAll(destDir, 0o750); err != nil {
		return err
	}
	root, err := os.OpenRoot(destDir)
	if err != nil {
		return fmt.Errorf("open destination root %s: %w", destDir, err)
	}
	defer root.Close()

	logger.Info("extracting bundle",
		"dest", destDir, "entries", len(a.entries), "concurrency", cfg.concurrency)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(cfg.concurrency)
	for _, e := range a.entries {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			written, err := writeEntry(root, e.Path, a.section(e), cfg.overwrite)
			if err != nil {
				return fmt.Errorf("extract %s: %w", e.Path, err)
			}
			if !written {
				logger.Debug("skipping existing file", "path", e.Path)
			}
			return nil
		})
	}
	return eg.Wait()
}

// writeEntry writes content to rel inside root via a temp file and rename.
// It reports false when the file already exists and overwrite is off.
func writeEntry(root *os.Root, rel string, content []byte, overwrite bool) (bool, error) {
	rel = filepath.FromSlash(rel)
	if !overwrite {
		if _, err := root.Stat(rel); err == nil {
			return false, nil
		}
	}

	dir := filepath.Dir(rel)
	if dir != "." {
		if err := root.MkdirAll(dir, 0o750); err != nil {
			return false, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	tempRel, err := writeTempFile(root, dir, content)
	if err != nil {
		return false, err
	}
	if err := root.Rename(tempRel, rel); err != nil {
		_ = root.Remove(tempRel)
		return false, fmt.Errorf("rename temp file: %w", err)
	}
	return true, nil
}

// writeTempFile writes content to a randomly named temp file in dir and
// returns its path relative to root.
func writeTempFile(root *os.Root, dir string, content []byte) (string, error) {
	for range 10 {
		var suffix [8]byte
		if _, err := rand.Read(suffix[:]); err != nil {
			return "", fmt.Errorf("generate temp name: %w", err)
		}
		tempRel := filepath.Join(dir, ".embedfs-"+hex.EncodeToString(suffix[:])+".tmp")
		f, err := root.OpenFile(tempRel, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err != nil {
			if os.IsExist(err) {
				continue
			}
			return "", fmt.Errorf("create temp file: %w", err)
		}
		if _, err := f.Write(content); err != nil {
			_ = f.Close()
			_ = root.Remove(tempRel)
			return "", fmt.Errorf("write temp file: %w", err)
		}
		if err := f.Close(); err != nil {
			_ = root.Remove(tempRel)
			return "", fmt.Errorf("close temp file: %w", err)
		}
		return tempRel, nil
	}
	return "", fmt.Errorf("create temp file: too many collisions")
}
