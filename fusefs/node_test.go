package fusefs

import (
	"context"
	"os"
	"syscall"
	"testing"

	"bazil.org/fuse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embedkit/embedfs"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	fsys := embedfs.New()
	names := []string{"index.html", "static/app.js", "static/css/style.css"}
	data := [][]byte{[]byte("<html></html>"), []byte("console.log(1)"), []byte("body {}")}
	sizes := []int64{13, 14, 7}
	require.NoError(t, fsys.Mount(names, data, sizes))
	return New(fsys)
}

func TestRootLookup(t *testing.T) {
	t.Parallel()

	srv := testServer(t)
	root, err := srv.Root()
	require.NoError(t, err)
	dir, ok := root.(*dirNode)
	require.True(t, ok)

	node, err := dir.Lookup(context.Background(), "index.html")
	require.NoError(t, err)
	file, ok := node.(*fileNode)
	require.True(t, ok)
	assert.Equal(t, int64(13), file.size)

	node, err = dir.Lookup(context.Background(), "static")
	require.NoError(t, err)
	sub, ok := node.(*dirNode)
	require.True(t, ok)
	assert.Equal(t, "static", sub.path)

	_, err = dir.Lookup(context.Background(), "missing")
	assert.Equal(t, syscall.ENOENT, err)
}

func TestNestedLookup(t *testing.T) {
	t.Parallel()

	srv := testServer(t)
	static := &dirNode{srv: srv, path: "static"}

	node, err := static.Lookup(context.Background(), "css")
	require.NoError(t, err)
	css, ok := node.(*dirNode)
	require.True(t, ok)

	node, err = css.Lookup(context.Background(), "style.css")
	require.NoError(t, err)
	file, ok := node.(*fileNode)
	require.True(t, ok)
	assert.Equal(t, "static/css/style.css", file.path)
}

func TestReadDirAll(t *testing.T) {
	t.Parallel()

	srv := testServer(t)
	root := &dirNode{srv: srv, path: "."}

	dirents, err := root.ReadDirAll(context.Background())
	require.NoError(t, err)
	require.Len(t, dirents, 2)
	assert.Equal(t, "index.html", dirents[0].Name)
	assert.Equal(t, fuse.DT_File, dirents[0].Type)
	assert.Equal(t, "static", dirents[1].Name)
	assert.Equal(t, fuse.DT_Dir, dirents[1].Type)
}

func TestDirAttr(t *testing.T) {
	t.Parallel()

	srv := testServer(t)
	root := &dirNode{srv: srv, path: "."}

	var attr fuse.Attr
	require.NoError(t, root.Attr(context.Background(), &attr))
	assert.True(t, attr.Mode.IsDir())
	assert.Equal(t, os.FileMode(0o555), attr.Mode.Perm())
}

func TestOpenRejectsWriteFlags(t *testing.T) {
	t.Parallel()

	srv := testServer(t)
	file := &fileNode{srv: srv, path: "index.html", size: 13}

	var resp fuse.OpenResponse
	_, err := file.Open(context.Background(), &fuse.OpenRequest{Flags: fuse.OpenWriteOnly}, &resp)
	assert.Equal(t, syscall.EPERM, err)

	_, err = file.Open(context.Background(), &fuse.OpenRequest{Flags: fuse.OpenReadWrite}, &resp)
	assert.Equal(t, syscall.EPERM, err)
}

func TestHandleRead(t *testing.T) {
	t.Parallel()

	srv := testServer(t)
	file := &fileNode{srv: srv, path: "static/app.js", size: 14}

	var openResp fuse.OpenResponse
	handle, err := file.Open(context.Background(), &fuse.OpenRequest{Flags: fuse.OpenReadOnly}, &openResp)
	require.NoError(t, err)
	h, ok := handle.(*fileHandle)
	require.True(t, ok)

	var resp fuse.ReadResponse
	require.NoError(t, h.Read(context.Background(), &fuse.ReadRequest{Offset: 0, Size: 7}, &resp))
	assert.Equal(t, "console", string(resp.Data))

	resp = fuse.ReadResponse{}
	require.NoError(t, h.Read(context.Background(), &fuse.ReadRequest{Offset: 8, Size: 100}, &resp))
	assert.Equal(t, "log(1)", string(resp.Data))

	require.NoError(t, h.Release(context.Background(), nil))
}
