package embedfs

import "github.com/embedkit/embedfs/internal/pathutil"

// NormalizePath converts a user-provided path to the canonical form used
// for entry comparisons.
//
// It performs the following transformations:
//   - Strips leading slashes: "/etc/nginx" → "etc/nginx"
//   - Strips trailing slashes: "etc/nginx/" → "etc/nginx"
//   - Converts the root to its internal form: "", "/" → "."
//
// NormalizePath is idempotent. It does not resolve path elements: "." and
// ".." segments are treated as literal, opaque segment names and will be
// rejected by FS methods via fs.ValidPath rather than resolved.
func NormalizePath(p string) string {
	return pathutil.Normalize(p)
}

// DisplayPath renders a normalized path in client-facing form: the root
// becomes "/" and every other path gains a leading slash.
func DisplayPath(p string) string {
	return pathutil.Display(p)
}
