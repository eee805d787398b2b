package embedfs

import (
	"io"
	"io/fs"

	"github.com/embedkit/embedfs/internal/pathutil"
)

// File is a read cursor over one entry's byte range.
//
// Reads go through the entry's ByteSource, never copying the blob into a
// separate buffer, and advance an internal position. A closed File reports
// fs.ErrClosed from every positioned operation.
type File struct {
	path string // normalized
	name string
	src  ByteSource
	size int64
	pos  int64

	closed bool
}

// Interface compliance.
var (
	_ fs.File       = (*File)(nil)
	_ io.ReaderAt   = (*File)(nil)
	_ io.Seeker     = (*File)(nil)
	_ io.ByteReader = (*File)(nil)
	_ io.Writer     = (*File)(nil)
)

func newFile(name string, src ByteSource, size int64) *File {
	return &File{
		path: name,
		name: pathutil.Base(name),
		src:  src,
		size: size,
	}
}

// Read copies up to len(p) bytes from the current position and advances it.
// At end of data it returns (0, io.EOF); exhaustion is a signal, not an error.
func (f *File) Read(p []byte) (int, error) {
	if f.closed {
		return 0, &fs.PathError{Op: "read", Path: f.path, Err: fs.ErrClosed}
	}
	if f.pos >= f.size {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	if remaining := f.size - f.pos; int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err := f.src.ReadAt(p, f.pos)
	f.pos += int64(n)
	if err == io.EOF && n == len(p) {
		err = nil
	}
	return n, err
}

// ReadByte returns the next byte and advances the position by one,
// or io.EOF when the range is exhausted.
func (f *File) ReadByte() (byte, error) {
	var scratch [1]byte
	n, err := f.Read(scratch[:])
	if n == 1 {
		return scratch[0], nil
	}
	if err == nil {
		err = io.EOF
	}
	return 0, err
}

// ReadAt copies bytes starting at off without moving the read position.
func (f *File) ReadAt(p []byte, off int64) (int, error) {
	if f.closed {
		return 0, &fs.PathError{Op: "read", Path: f.path, Err: fs.ErrClosed}
	}
	if off < 0 {
		return 0, &fs.PathError{Op: "read", Path: f.path, Err: fs.ErrInvalid}
	}
	if off >= f.size {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	expected := len(p)
	if remaining := f.size - off; remaining < int64(expected) {
		expected = int(remaining)
	}
	n, err := f.src.ReadAt(p[:expected], off)
	if err == io.EOF && n == expected {
		err = nil
	}
	if err != nil {
		return n, err
	}
	if expected < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Seek sets the read position. The target must land inside [0, Size()];
// an out-of-range target fails and leaves the position unchanged.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	if f.closed {
		return 0, &fs.PathError{Op: "seek", Path: f.path, Err: fs.ErrClosed}
	}

	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = f.pos + offset
	case io.SeekEnd:
		target = f.size + offset
	default:
		return f.pos, &fs.PathError{Op: "seek", Path: f.path, Err: fs.ErrInvalid}
	}
	if target < 0 || target > f.size {
		return f.pos, &fs.PathError{Op: "seek", Path: f.path, Err: fs.ErrInvalid}
	}
	f.pos = target
	return f.pos, nil
}

// Write is accepted syntactically but performs no mutation and reports
// zero bytes written: the medium is read-only by construction.
func (f *File) Write(_ []byte) (int, error) {
	return 0, ErrReadOnly
}

// Available returns the number of unread bytes, Size() - Position().
// Clients can drive read loops off it without a separate end-of-stream flag.
func (f *File) Available() int64 {
	return f.size - f.pos
}

// Position returns the current read position in [0, Size()].
func (f *File) Position() int64 {
	return f.pos
}

// Size returns the entry's byte length.
func (f *File) Size() int64 {
	return f.size
}

// Path returns the client-facing path, e.g. "/static/index.html".
func (f *File) Path() string {
	return pathutil.Display(f.path)
}

// Name returns the last path segment.
func (f *File) Name() string {
	return f.name
}

// IsDir reports false; directory handles are *Dir.
func (f *File) IsDir() bool {
	return false
}

// Stat returns file info for the entry.
func (f *File) Stat() (fs.FileInfo, error) {
	if f.closed {
		return nil, &fs.PathError{Op: "stat", Path: f.path, Err: fs.ErrClosed}
	}
	return &Info{name: f.name, size: f.size}, nil
}

// Close releases the handle's view of the backing range. It is idempotent;
// subsequent positioned operations report fs.ErrClosed.
func (f *File) Close() error {
	f.src = nil
	f.size = 0
	f.pos = 0
	f.closed = true
	return nil
}
