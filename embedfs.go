package embedfs

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"sort"

	"github.com/embedkit/embedfs/internal/index"
	"github.com/embedkit/embedfs/internal/pathutil"
)

// Interface compliance.
var (
	_ fs.FS         = (*FS)(nil)
	_ fs.StatFS     = (*FS)(nil)
	_ fs.ReadFileFS = (*FS)(nil)
	_ fs.ReadDirFS  = (*FS)(nil)
)

// Entry describes one blob in the table handed to MountEntries.
//
// Path may carry a leading slash or not; it is normalized at mount time.
// Size is the logical byte length and must not exceed Data.Size(). Data
// may be nil only when Size is zero.
type Entry struct {
	Path string
	Data ByteSource
	Size int64
}

// FS presents an immutable entry table as a read-only filesystem.
//
// FS has two states: unmounted (the zero value) and mounted. While
// unmounted every resolver operation degrades to "empty filesystem":
// not-exist results rather than a distinct error. The entry table is
// read-only after Mount returns, so concurrent readers need no
// synchronization; callers must serialize Mount/Unmount against in-flight
// handle use.
//
// FS implements fs.FS, fs.StatFS, fs.ReadFileFS, and fs.ReadDirFS.
type FS struct {
	idx    *index.Index // nil while unmounted
	logger *slog.Logger
}

// New creates an unmounted FS.
func New(opts ...Option) *FS {
	fsys := &FS{}
	for _, opt := range opts {
		opt(fsys)
	}
	return fsys
}

// log returns the logger, falling back to a discard logger if nil.
func (fsys *FS) log() *slog.Logger {
	if fsys.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return fsys.logger
}

// Mount installs an entry table from the three parallel arrays produced
// by the asset generator. It fails, leaving the FS unmounted, when the
// arrays disagree in length, the table is empty, or an entry's size
// exceeds its backing slice. Mounting over a mounted FS replaces the view.
func (fsys *FS) Mount(names []string, data [][]byte, sizes []int64) error {
	if len(names) == 0 {
		return fmt.Errorf("%w: empty table", ErrMismatchedTable)
	}
	if len(data) != len(names) || len(sizes) != len(names) {
		return fmt.Errorf("%w: %d names, %d blobs, %d sizes",
			ErrMismatchedTable, len(names), len(data), len(sizes))
	}

	entries := make([]Entry, len(names))
	for i, name := range names {
		if sizes[i] < 0 || sizes[i] > int64(len(data[i])) {
			return fmt.Errorf("%w: entry %q: size %d exceeds %d data bytes",
				ErrMismatchedTable, name, sizes[i], len(data[i]))
		}
		entries[i] = Entry{Path: name, Data: Bytes(data[i]), Size: sizes[i]}
	}
	return fsys.MountEntries(entries)
}

// MountEntries installs an entry table directly. It is the general form
// of Mount, for callers whose blobs live behind custom byte sources
// (bundle archives, section readers, memory-mapped stores).
func (fsys *FS) MountEntries(entries []Entry) error {
	if len(entries) == 0 {
		return fmt.Errorf("%w: empty table", ErrMismatchedTable)
	}
	idxEntries := make([]index.Entry, len(entries))
	for i, e := range entries {
		if e.Size < 0 || (e.Data == nil && e.Size != 0) || (e.Data != nil && e.Size > e.Data.Size()) {
			return fmt.Errorf("%w: entry %q: size %d has no backing data",
				ErrMismatchedTable, e.Path, e.Size)
		}
		idxEntries[i] = index.Entry{Path: e.Path, Data: e.Data, Size: e.Size}
	}
	fsys.idx = index.New(idxEntries)
	fsys.log().Debug("mounted entry table",
		"entries", fsys.idx.Len(), "total_bytes", fsys.idx.TotalSize())
	return nil
}

// Unmount discards the FS's view of the entry table and returns to the
// unmounted state. The backing arrays are not owned and are left
// untouched. Unmount is idempotent. Handles obtained before Unmount must
// not be used afterwards.
func (fsys *FS) Unmount() {
	fsys.idx = nil
}

// Mounted reports whether an entry table is installed.
func (fsys *FS) Mounted() bool {
	return fsys.idx != nil
}

// Open implements fs.FS.
//
// Open accepts both fs.FS-style names ("static/app.js", "." for the root)
// and display paths ("/static/app.js", "/"). It returns a *File when the
// path names an entry, a *Dir when it is a prefix of at least one entry
// (or the root), and fs.ErrNotExist otherwise. When normalized paths
// collide, the first entry in table order wins, and an exact entry match
// always beats a directory interpretation.
func (fsys *FS) Open(name string) (fs.File, error) {
	norm, err := fsys.resolveName("open", name)
	if err != nil {
		return nil, err
	}

	if e, ok := fsys.idx.Lookup(norm); ok {
		return newFile(norm, e.Data, e.Size), nil
	}
	if children, ok := fsys.idx.Children(norm); ok {
		return newDir(fsys, norm, children), nil
	}
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// Stat implements fs.StatFS. Synthesized directories report synthetic info.
func (fsys *FS) Stat(name string) (fs.FileInfo, error) {
	norm, err := fsys.resolveName("stat", name)
	if err != nil {
		return nil, err
	}

	if e, ok := fsys.idx.Lookup(norm); ok {
		return &Info{name: pathutil.Base(norm), size: e.Size}, nil
	}
	if _, ok := fsys.idx.Children(norm); ok {
		return &DirInfo{name: pathutil.Base(norm)}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
}

// ReadFile implements fs.ReadFileFS. It reads the entire entry through its
// byte source; directory paths report fs.ErrInvalid like os.ReadFile does
// for directories that cannot be read.
func (fsys *FS) ReadFile(name string) ([]byte, error) {
	norm, err := fsys.resolveName("readfile", name)
	if err != nil {
		return nil, err
	}

	e, ok := fsys.idx.Lookup(norm)
	if !ok {
		if _, isDir := fsys.idx.Children(norm); isDir {
			return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrInvalid}
		}
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: fs.ErrNotExist}
	}

	buf := make([]byte, e.Size)
	if e.Size == 0 {
		return buf, nil
	}
	n, err := e.Data.ReadAt(buf, 0)
	if err == io.EOF && int64(n) == e.Size {
		err = nil
	}
	if err != nil {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: err}
	}
	return buf, nil
}

// ReadDir implements fs.ReadDirFS. Entries are sorted by name, per the
// io/fs contract; handle-level enumeration (Dir.OpenNext, Dir.NextName)
// keeps table order instead.
func (fsys *FS) ReadDir(name string) ([]fs.DirEntry, error) {
	norm, err := fsys.resolveName("readdir", name)
	if err != nil {
		return nil, err
	}

	children, ok := fsys.idx.Children(norm)
	if !ok {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrNotExist}
	}
	entries := make([]fs.DirEntry, len(children))
	for i, child := range children {
		entries[i] = childDirEntry(child)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

// Exists reports whether path resolves to an entry or a synthesized
// directory. It is false for every path while unmounted.
func (fsys *FS) Exists(path string) bool {
	norm, err := fsys.resolveName("exists", path)
	if err != nil {
		return false
	}
	if _, ok := fsys.idx.Lookup(norm); ok {
		return true
	}
	_, ok := fsys.idx.Children(norm)
	return ok
}

// TotalBytes returns the sum of all entry sizes, 0 while unmounted.
func (fsys *FS) TotalBytes() int64 {
	if fsys.idx == nil {
		return 0
	}
	return fsys.idx.TotalSize()
}

// UsedBytes equals TotalBytes by definition: a compiled-in medium has no
// notion of free space.
func (fsys *FS) UsedBytes() int64 {
	return fsys.TotalBytes()
}

// Len returns the number of entries in the table, 0 while unmounted.
func (fsys *FS) Len() int {
	if fsys.idx == nil {
		return 0
	}
	return fsys.idx.Len()
}

// Rename reports ErrReadOnly; the table is immutable.
func (fsys *FS) Rename(_, _ string) error { return ErrReadOnly }

// Remove reports ErrReadOnly; the table is immutable.
func (fsys *FS) Remove(_ string) error { return ErrReadOnly }

// Mkdir reports ErrReadOnly; directories are synthesized, never stored.
func (fsys *FS) Mkdir(_ string) error { return ErrReadOnly }

// Rmdir reports ErrReadOnly; directories are synthesized, never stored.
func (fsys *FS) Rmdir(_ string) error { return ErrReadOnly }

// resolveName normalizes a query and applies the unmounted and validity
// gates shared by every resolver operation.
func (fsys *FS) resolveName(op, name string) (string, error) {
	if fsys.idx == nil {
		return "", &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
	}
	norm := NormalizePath(name)
	if !fs.ValidPath(norm) {
		return "", &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}
	return norm, nil
}
