package embedfs

import "io"

// ByteSource provides random access to one entry's backing bytes.
//
// It is the injection point for platform-specific read primitives: the
// common case is directly addressable memory (see Bytes), but backing
// stores that need a dedicated read instruction, such as memory-mapped
// flash or section readers over a larger blob, plug in here so the resolver and
// handle logic stay platform-agnostic.
type ByteSource interface {
	io.ReaderAt
	Size() int64
}

// Bytes adapts an in-memory byte slice to a ByteSource.
// The slice is referenced, not copied, and must not be mutated afterwards.
func Bytes(b []byte) ByteSource {
	return bytesSource(b)
}

type bytesSource []byte

// ReadAt implements io.ReaderAt over the backing slice.
func (s bytesSource) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, io.EOF
	}
	if off >= int64(len(s)) {
		return 0, io.EOF
	}
	n := copy(p, s[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Size returns the total size of the backing data.
func (s bytesSource) Size() int64 {
	return int64(len(s))
}

// Interface compliance.
var _ ByteSource = (bytesSource)(nil)
