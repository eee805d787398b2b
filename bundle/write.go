package bundle

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/opencontainers/go-digest"
)

// Write builds a bundle from the contents of dir and writes it to w.
//
// Files are recorded in lexical path order. Empty directories are not
// preserved and symbolic links are not followed, matching the view embedfs
// synthesizes after mounting. The whole data section is buffered in memory
// to compute its digest before the header is emitted; bundles are meant
// for embedded asset sets, not bulk archives.
//
// The context can be used to cancel writes over large trees.
func Write(ctx context.Context, dir string, w io.Writer, opts ...WriteOption) error {
	cfg := writeConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	root, err := os.OpenRoot(dir)
	if err != nil {
		return err
	}
	defer root.Close()

	bw := &bundleWriter{cfg: cfg}
	bw.log().Info("writing bundle", "dir", dir, "compression", cfg.compression.String())

	entries, data, err := bw.collect(ctx, root)
	if err != nil {
		return err
	}

	hdr := header{
		Version:     Version,
		Compression: cfg.compression,
		DataSize:    uint64(len(data)),
		DataDigest:  digest.FromBytes(data).String(),
		Entries:     entries,
	}

	if cfg.compression == CompressionZstd {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1), zstd.WithLowerEncoderMem(true))
		if err != nil {
			return fmt.Errorf("create zstd encoder: %w", err)
		}
		data = enc.EncodeAll(data, nil)
		if err := enc.Close(); err != nil {
			return fmt.Errorf("close zstd encoder: %w", err)
		}
	}

	hdrData, err := cbor.Marshal(hdr)
	if err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	bw.log().Debug("bundle assembled",
		"file_count", len(entries), "data_size", hdr.DataSize, "stored_size", len(data))

	var lenBuf [4]byte
	byteOrder.PutUint32(lenBuf[:], uint32(len(hdrData)))
	for _, chunk := range [][]byte{[]byte(Magic), lenBuf[:], hdrData, data} {
		if _, err := w.Write(chunk); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile writes a bundle for dir to path.
func WriteFile(ctx context.Context, dir, path string, opts ...WriteOption) error {
	var buf bytes.Buffer
	if err := Write(ctx, dir, &buf, opts...); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

type bundleWriter struct {
	cfg writeConfig
}

// log returns the logger, falling back to a discard logger if nil.
func (bw *bundleWriter) log() *slog.Logger {
	if bw.cfg.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return bw.cfg.logger
}

// collect walks the tree, concatenating file contents and recording the
// offset of each within the data section.
func (bw *bundleWriter) collect(ctx context.Context, root *os.Root) ([]Entry, []byte, error) {
	entries := make([]Entry, 0, 64)
	var data bytes.Buffer

	err := fs.WalkDir(root.FS(), ".", func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		content, err := fs.ReadFile(root.FS(), path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		entries = append(entries, Entry{
			Path:   path,
			Offset: uint64(data.Len()),
			Size:   uint64(len(content)),
		})
		data.Write(content)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if len(entries) == 0 {
		return nil, nil, fmt.Errorf("bundle: no regular files under %q", root.Name())
	}
	return entries, data.Bytes(), nil
}
