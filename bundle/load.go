package bundle

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/opencontainers/go-digest"

	"github.com/embedkit/embedfs"
)

// Archive is a loaded bundle. The data section has been decompressed and
// verified against the header digest; entries are served as slices of the
// decoded buffer without copying.
type Archive struct {
	entries     []Entry
	data        []byte
	dataDigest  digest.Digest
	compression Compression
}

// Load parses a bundle from raw, verifying the header digest against the
// decompressed data section.
func Load(raw []byte) (*Archive, error) {
	if len(raw) < len(Magic)+4 {
		return nil, ErrTruncated
	}
	if string(raw[:len(Magic)]) != Magic {
		return nil, ErrBadMagic
	}
	raw = raw[len(Magic):]

	hdrLen := byteOrder.Uint32(raw[:4])
	raw = raw[4:]
	if hdrLen > headerSizeLimit {
		return nil, fmt.Errorf("%w: header length %d exceeds limit", ErrTruncated, hdrLen)
	}
	if uint64(len(raw)) < uint64(hdrLen) {
		return nil, ErrTruncated
	}

	var hdr header
	if err := cbor.Unmarshal(raw[:hdrLen], &hdr); err != nil {
		return nil, fmt.Errorf("bundle: decode header: %w", err)
	}
	if hdr.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, hdr.Version)
	}

	data := raw[hdrLen:]
	switch hdr.Compression {
	case CompressionNone:
		if uint64(len(data)) < hdr.DataSize {
			return nil, ErrTruncated
		}
		data = data[:hdr.DataSize]
	case CompressionZstd:
		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
		}
		data, err = dec.DecodeAll(data, make([]byte, 0, hdr.DataSize))
		dec.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
		}
		if uint64(len(data)) != hdr.DataSize {
			return nil, fmt.Errorf("%w: decompressed to %d bytes, header says %d",
				ErrTruncated, len(data), hdr.DataSize)
		}
	default:
		return nil, fmt.Errorf("bundle: unknown compression %d", hdr.Compression)
	}

	want, err := digest.Parse(hdr.DataDigest)
	if err != nil {
		return nil, fmt.Errorf("bundle: parse digest: %w", err)
	}
	if got := digest.FromBytes(data); got != want {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrDigestMismatch, got, want)
	}

	for _, e := range hdr.Entries {
		if e.Offset+e.Size < e.Offset || e.Offset+e.Size > uint64(len(data)) {
			return nil, fmt.Errorf("%w: entry %q outside data section", ErrTruncated, e.Path)
		}
	}

	return &Archive{
		entries:     hdr.Entries,
		data:        data,
		dataDigest:  want,
		compression: hdr.Compression,
	}, nil
}

// LoadFile reads and parses the bundle at path.
func LoadFile(path string) (*Archive, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(raw)
}

// Entries returns the entry table in bundle order.
func (a *Archive) Entries() []Entry {
	return a.entries
}

// Len returns the number of entries.
func (a *Archive) Len() int {
	return len(a.entries)
}

// DataDigest returns the verified digest of the uncompressed data section.
func (a *Archive) DataDigest() digest.Digest {
	return a.dataDigest
}

// Compression returns the compression the bundle was stored with.
func (a *Archive) Compression() Compression {
	return a.compression
}

// Data returns the bytes of the named entry, or nil if absent.
func (a *Archive) Data(path string) []byte {
	for _, e := range a.entries {
		if e.Path == path {
			return a.section(e)
		}
	}
	return nil
}

// Table returns the entry table as the parallel slices embedfs.FS.Mount
// accepts.
func (a *Archive) Table() (names []string, data [][]byte, sizes []int64) {
	names = make([]string, len(a.entries))
	data = make([][]byte, len(a.entries))
	sizes = make([]int64, len(a.entries))
	for i, e := range a.entries {
		names[i] = e.Path
		data[i] = a.section(e)
		sizes[i] = int64(e.Size)
	}
	return names, data, sizes
}

// Mount installs the archive's entry table into fsys. Entries alias the
// archive's decoded buffer, so the archive must outlive the mount.
func (a *Archive) Mount(fsys *embedfs.FS) error {
	entries := make([]embedfs.Entry, len(a.entries))
	for i, e := range a.entries {
		entries[i] = embedfs.Entry{
			Path: e.Path,
			Data: embedfs.Bytes(a.section(e)),
			Size: int64(e.Size),
		}
	}
	return fsys.MountEntries(entries)
}

// section slices the data buffer for an entry. Ranges were validated at
// load time.
func (a *Archive) section(e Entry) []byte {
	return a.data[e.Offset : e.Offset+e.Size]
}
