// Package embedfs presents a flat table of named, immutable byte blobs,
// typically compiled into a program image by an asset generator, as a
// hierarchical, read-only filesystem.
//
// The filesystem implements fs.FS and related interfaces for stdlib
// compatibility. Directories are never stored: they are synthesized on
// the fly from common path prefixes among the entries, so the directory
// view can never drift out of sync with the flat table.
//
// # Quick Start
//
// Mount the generated parallel arrays and read a file:
//
//	var vfs embedfs.FS
//	if err := vfs.Mount(assets.AssetNames, assets.AssetData, assets.AssetSizes); err != nil {
//	    return err
//	}
//	content, err := vfs.ReadFile("static/index.html")
//
// Enumerate a synthesized directory with a handle cursor:
//
//	f, err := vfs.Open("static")
//	if err != nil {
//	    return err
//	}
//	dir := f.(*embedfs.Dir)
//	for {
//	    child, err := dir.OpenNext()
//	    if err == io.EOF {
//	        break
//	    }
//	    // ...
//	}
//
// # Mutation
//
// The backing store is immutable by construction. Write, Rename, Remove,
// Mkdir, and Rmdir are permanent no-ops that report ErrReadOnly; this is
// the contract of a read-only medium, not a silent failure.
//
// # Related packages
//
// The gen package emits the parallel-array Go source from an asset
// directory; the bundle package reads and writes a single-file container
// for loading entry tables at runtime; the fusefs package serves a
// mounted filesystem over FUSE for inspection on development machines.
package embedfs
