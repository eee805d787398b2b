package embedfs

import (
	"io"
	"io/fs"

	"github.com/embedkit/embedfs/internal/index"
	"github.com/embedkit/embedfs/internal/pathutil"
)

// Dir is an enumeration cursor over a synthesized directory.
//
// The deduplicated child list is built once, when the directory is opened,
// by a single pass over the entry table; Rewind resets the cursor without
// rebuilding it. Children appear in table order (first seen wins), the
// same order the entries were mounted in.
type Dir struct {
	fsys     *FS
	path     string // normalized
	name     string
	children []index.Child
	cursor   int
}

// Interface compliance.
var (
	_ fs.File        = (*Dir)(nil)
	_ fs.ReadDirFile = (*Dir)(nil)
)

func newDir(fsys *FS, name string, children []index.Child) *Dir {
	return &Dir{
		fsys:     fsys,
		path:     name,
		name:     pathutil.Base(name),
		children: children,
	}
}

// OpenNext resolves the child at the cursor into a fresh handle (a *File
// or a nested *Dir) and advances the cursor. It returns io.EOF when the
// child list is exhausted; exhaustion is a signal, not an error.
//
// The child is re-resolved against the entry table, so a child that is
// both a file and a directory prefix opens the way Open would open it.
func (d *Dir) OpenNext() (fs.File, error) {
	if d.cursor >= len(d.children) {
		return nil, io.EOF
	}
	child := d.children[d.cursor]
	d.cursor++
	return d.fsys.Open(pathutil.Join(d.path, child.Name))
}

// NextName returns the display path of the child at the cursor and
// advances it, without constructing a handle. ok is false at exhaustion.
func (d *Dir) NextName() (name string, ok bool) {
	if d.cursor >= len(d.children) {
		return "", false
	}
	child := d.children[d.cursor]
	d.cursor++
	return pathutil.Display(pathutil.Join(d.path, child.Name)), true
}

// Rewind resets the cursor to the first child. The child list itself is
// not rebuilt; it reflects the entry table at open time.
func (d *Dir) Rewind() {
	d.cursor = 0
}

// SeekTo positions the cursor at index i, clamping to the child count.
// Negative indices fail and leave the cursor unchanged.
func (d *Dir) SeekTo(i int) error {
	if i < 0 {
		return &fs.PathError{Op: "seekdir", Path: d.path, Err: fs.ErrInvalid}
	}
	if i > len(d.children) {
		i = len(d.children)
	}
	d.cursor = i
	return nil
}

// Len returns the number of synthesized children.
func (d *Dir) Len() int {
	return len(d.children)
}

// ReadDir implements fs.ReadDirFile over the same cursor used by OpenNext.
// If n <= 0 it returns all remaining children; otherwise up to n, with
// io.EOF once the list is exhausted.
func (d *Dir) ReadDir(n int) ([]fs.DirEntry, error) {
	remaining := len(d.children) - d.cursor
	if n <= 0 || n > remaining {
		if n > 0 && remaining == 0 {
			return nil, io.EOF
		}
		n = remaining
	}

	entries := make([]fs.DirEntry, 0, n)
	for range n {
		child := d.children[d.cursor]
		d.cursor++
		entries = append(entries, childDirEntry(child))
	}
	return entries, nil
}

func childDirEntry(child index.Child) fs.DirEntry {
	if child.IsDir {
		return &dirEntry{info: &DirInfo{name: child.Name}}
	}
	return &dirEntry{info: &Info{name: child.Name, size: child.Entry.Size}}
}

// Read is invalid on a directory.
func (d *Dir) Read(_ []byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.path, Err: fs.ErrInvalid}
}

// Path returns the client-facing path, "/" for the root.
func (d *Dir) Path() string {
	return pathutil.Display(d.path)
}

// Name returns the last path segment, "." for the root.
func (d *Dir) Name() string {
	return d.name
}

// IsDir reports true.
func (d *Dir) IsDir() bool {
	return true
}

// Stat returns synthetic directory info.
func (d *Dir) Stat() (fs.FileInfo, error) {
	return &DirInfo{name: d.name}, nil
}

// Close is a no-op; directory handles hold no resources beyond the
// child list snapshot.
func (d *Dir) Close() error {
	return nil
}
