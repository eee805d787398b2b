// Package pathutil provides path manipulation for slash-separated entry paths.
package pathutil

import "strings"

// Normalize converts a raw entry or query path to the canonical form used
// for index comparisons.
//
// Leading and trailing slashes are stripped; the empty result (root) is
// represented as ".". No other rewriting is performed: "." and ".."
// segments are kept as literal segment names, never resolved, and internal
// slash runs are preserved. Normalize is idempotent.
func Normalize(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return "."
	}
	return p
}

// Display renders a normalized path in client-facing form:
// root becomes "/", everything else gains a leading slash.
func Display(p string) string {
	if p == "" || p == "." {
		return "/"
	}
	return "/" + p
}

// Base returns the last element of a slash-separated path.
// If path is empty or ".", it returns ".".
func Base(path string) string {
	if path == "" || path == "." {
		return "."
	}
	path = strings.TrimSuffix(path, "/")
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// DirPrefix converts a normalized path to its directory prefix form.
// For the root, returns "" (empty prefix matches all).
// For other paths, appends "/" to match children.
func DirPrefix(name string) string {
	if name == "." {
		return ""
	}
	return name + "/"
}

// Child extracts the immediate child name from a full path given a prefix.
// Returns the child name and whether it's a subdirectory (has more path
// components). If path doesn't have the prefix, behavior is undefined.
func Child(path, prefix string) (name string, isSubDir bool) {
	relPath := strings.TrimPrefix(path, prefix)
	if idx := strings.Index(relPath, "/"); idx >= 0 {
		return relPath[:idx], true
	}
	return relPath, false
}

// Join appends a child name to a normalized parent path.
func Join(parent, child string) string {
	if parent == "." {
		return child
	}
	return parent + "/" + child
}
