// Package index holds the flat entry table and the path resolver over it.
//
// Directories are never stored: they are inferred from the set of entry
// paths by a prefix-grouping pass, so the directory view is consistent
// with the flat table by construction.
package index

import (
	"io"
	"iter"
	"strings"

	"github.com/embedkit/embedfs/internal/pathutil"
)

// Source provides random access to one entry's backing bytes.
//
// It abstracts over directly addressable memory and backing stores that
// need a dedicated read primitive (memory-mapped flash, section readers).
type Source interface {
	io.ReaderAt
	Size() int64
}

// Entry is one (path, data, size) record in the flat table.
//
// Path is stored normalized. Data may be nil for zero-size entries.
// Size is the logical byte length and may be smaller than Data.Size().
type Entry struct {
	Path string
	Data Source
	Size int64
}

// Child is one synthesized directory entry: the immediate next path
// segment under a directory prefix. For file children, Entry carries the
// backing record so callers can surface sizes without a second scan.
type Child struct {
	Name  string
	IsDir bool
	Entry Entry
}

// Index is the immutable, ordered entry table installed at mount time.
//
// Insertion order is preserved and significant: lookups return the first
// match when normalized paths collide, and synthesized children are
// reported in first-seen order.
type Index struct {
	entries []Entry
	total   int64
}

// New builds an index from entries, normalizing each path once.
// Normalization is idempotent, so normalizing at construction is
// equivalent to normalizing during every scan.
func New(entries []Entry) *Index {
	idx := &Index{entries: make([]Entry, len(entries))}
	for i, e := range entries {
		e.Path = pathutil.Normalize(e.Path)
		idx.entries[i] = e
		idx.total += e.Size
	}
	return idx
}

// Len returns the number of entries.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// TotalSize returns the sum of all entry sizes.
func (idx *Index) TotalSize() int64 {
	return idx.total
}

// Entries returns an iterator over all entries in table order.
func (idx *Index) Entries() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		for _, e := range idx.entries {
			if !yield(e) {
				return
			}
		}
	}
}

// Lookup returns the first entry whose normalized path equals name.
//
// The root name never matches an entry: the root is always a directory,
// even when an entry's raw path normalized to it.
func (idx *Index) Lookup(name string) (Entry, bool) {
	if name == "." {
		return Entry{}, false
	}
	for _, e := range idx.entries {
		if e.Path == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Children synthesizes the immediate children of the directory name in a
// single pass over the table.
//
// Children are deduplicated by name in first-seen order; a name seen both
// as a leaf and as a deeper prefix is reported once with IsDir widened to
// true. An entry whose path equals the prefix itself contributes nothing.
// ok reports whether name denotes a directory: it is true when at least
// one child was found, and always true for the root.
func (idx *Index) Children(name string) (children []Child, ok bool) {
	prefix := pathutil.DirPrefix(name)

	var seen map[string]int
	for _, e := range idx.entries {
		if e.Path == "." {
			continue
		}
		if len(e.Path) <= len(prefix) || !strings.HasPrefix(e.Path, prefix) {
			continue
		}
		childName, isSub := pathutil.Child(e.Path, prefix)
		if childName == "" {
			continue
		}
		if i, dup := seen[childName]; dup {
			if isSub {
				children[i].IsDir = true
			}
			continue
		}
		if seen == nil {
			seen = make(map[string]int)
		}
		seen[childName] = len(children)
		c := Child{Name: childName, IsDir: isSub}
		if !isSub {
			c.Entry = e
		}
		children = append(children, c)
	}

	return children, len(children) > 0 || name == "."
}
