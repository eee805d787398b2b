// Package bundle reads and writes a single-file container for embedfs
// entry tables.
//
// A bundle is a header followed by a data section:
//
//	magic "EBFS" | uint32 big-endian header length | CBOR header | data
//
// The header records the format version, the data section's compression,
// its uncompressed size and digest, and the entry table (path, offset,
// size). Entries are laid out in path-sorted order so a directory's files
// occupy one contiguous range. The data section may be zstd-compressed as
// a whole; it is decompressed once at load time and entries are served as
// sections of the decoded buffer.
package bundle

import (
	"encoding/binary"
	"errors"
)

// Format constants.
const (
	// Magic identifies a bundle file.
	Magic = "EBFS"

	// Version is the current format version.
	Version = 1

	// headerSizeLimit bounds the encoded header to keep a corrupt length
	// field from driving a huge allocation.
	headerSizeLimit = 64 << 20
)

// Compression identifies the compression applied to the data section.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionZstd
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// Sentinel errors.
var (
	// ErrBadMagic is returned when the input does not start with Magic.
	ErrBadMagic = errors.New("bundle: bad magic")

	// ErrUnsupportedVersion is returned for format versions this package
	// does not understand.
	ErrUnsupportedVersion = errors.New("bundle: unsupported version")

	// ErrTruncated is returned when the input is shorter than its header
	// claims, or an entry range falls outside the data section.
	ErrTruncated = errors.New("bundle: truncated data")

	// ErrDigestMismatch is returned when the data section does not match
	// the digest recorded in the header.
	ErrDigestMismatch = errors.New("bundle: digest mismatch")

	// ErrDecompression is returned when the data section fails to
	// decompress.
	ErrDecompression = errors.New("bundle: decompression failed")
)

// header is the CBOR-encoded bundle header.
type header struct {
	Version     uint32      `cbor:"version"`
	Compression Compression `cbor:"compression"`
	DataSize    uint64      `cbor:"data_size"`
	DataDigest  string      `cbor:"data_digest"`
	Entries     []Entry     `cbor:"entries"`
}

// Entry is one file record in the bundle header.
type Entry struct {
	Path   string `cbor:"path"`
	Offset uint64 `cbor:"offset"`
	Size   uint64 `cbor:"size"`
}

var byteOrder = binary.BigEndian
