package fusefs

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"syscall"

	"bazil.org/fuse"
	fusefs "bazil.org/fuse/fs"

	"github.com/embedkit/embedfs"
	"github.com/embedkit/embedfs/internal/pathutil"
)

// dirNode is a directory in the mounted tree.
type dirNode struct {
	srv  *Server
	path string
}

// Attr implements fusefs.Node.
func (d *dirNode) Attr(_ context.Context, a *fuse.Attr) error {
	a.Mode = os.ModeDir | 0o555
	return nil
}

// Lookup implements fusefs.NodeStringLookuper.
func (d *dirNode) Lookup(_ context.Context, name string) (fusefs.Node, error) {
	childPath := pathutil.Join(d.path, name)
	info, err := d.srv.fsys.Stat(childPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, syscall.ENOENT
		}
		d.srv.log().Error("lookup failed", "path", childPath, "error", err)
		return nil, err
	}
	if info.IsDir() {
		return &dirNode{srv: d.srv, path: childPath}, nil
	}
	return &fileNode{srv: d.srv, path: childPath, size: info.Size()}, nil
}

// ReadDirAll implements fusefs.HandleReadDirAller.
func (d *dirNode) ReadDirAll(_ context.Context) ([]fuse.Dirent, error) {
	children, err := d.srv.fsys.ReadDir(d.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, syscall.ENOENT
		}
		return nil, err
	}

	dirents := make([]fuse.Dirent, 0, len(children))
	for _, child := range children {
		typ := fuse.DT_File
		if child.IsDir() {
			typ = fuse.DT_Dir
		}
		dirents = append(dirents, fuse.Dirent{Name: child.Name(), Type: typ})
	}
	return dirents, nil
}

// fileNode is a file in the mounted tree.
type fileNode struct {
	srv  *Server
	path string
	size int64
}

// Attr implements fusefs.Node.
func (f *fileNode) Attr(_ context.Context, a *fuse.Attr) error {
	a.Mode = 0o444
	a.Size = uint64(f.size)
	return nil
}

// Open implements fusefs.NodeOpener. Write access is refused.
func (f *fileNode) Open(_ context.Context, req *fuse.OpenRequest, resp *fuse.OpenResponse) (fusefs.Handle, error) {
	if req.Flags&(fuse.OpenWriteOnly|fuse.OpenReadWrite) != 0 {
		f.srv.log().Warn("refusing write access", "path", f.path)
		return nil, syscall.EPERM
	}

	file, err := f.srv.fsys.Open(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, syscall.ENOENT
		}
		return nil, err
	}
	ef, ok := file.(*embedfs.File)
	if !ok {
		_ = file.Close()
		return nil, syscall.EISDIR
	}

	resp.Flags |= fuse.OpenKeepCache
	return &fileHandle{file: ef}, nil
}

// fileHandle is an open handle backed by an embedfs file.
type fileHandle struct {
	file *embedfs.File
}

// Read implements fusefs.HandleReader.
func (h *fileHandle) Read(_ context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	buf := make([]byte, req.Size)
	n, err := h.file.ReadAt(buf, req.Offset)
	if err != nil && err != io.EOF {
		return err
	}
	resp.Data = buf[:n]
	return nil
}

// Release implements fusefs.HandleReleaser.
func (h *fileHandle) Release(_ context.Context, _ *fuse.ReleaseRequest) error {
	return h.file.Close()
}

var (
	_ fusefs.Node               = (*dirNode)(nil)
	_ fusefs.NodeStringLookuper = (*dirNode)(nil)
	_ fusefs.HandleReadDirAller = (*dirNode)(nil)
	_ fusefs.Node               = (*fileNode)(nil)
	_ fusefs.NodeOpener         = (*fileNode)(nil)
	_ fusefs.HandleReader       = (*fileHandle)(nil)
	_ fusefs.HandleReleaser     = (*fileHandle)(nil)
)
