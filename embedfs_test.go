package embedfs

import (
	"io"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mountTable mounts the given path → content table in insertion order.
func mountTable(t *testing.T, files [][2]string) *FS {
	t.Helper()

	names := make([]string, len(files))
	data := make([][]byte, len(files))
	sizes := make([]int64, len(files))
	for i, f := range files {
		names[i] = f[0]
		data[i] = []byte(f[1])
		sizes[i] = int64(len(f[1]))
	}

	fsys := New()
	require.NoError(t, fsys.Mount(names, data, sizes))
	return fsys
}

func TestMountValidation(t *testing.T) {
	t.Parallel()

	fsys := New()

	err := fsys.Mount(nil, nil, nil)
	require.ErrorIs(t, err, ErrMismatchedTable)
	assert.False(t, fsys.Mounted())

	err = fsys.Mount([]string{"a", "b"}, [][]byte{[]byte("x")}, []int64{1})
	require.ErrorIs(t, err, ErrMismatchedTable)

	// Size exceeding the backing slice is a configuration error.
	err = fsys.Mount([]string{"a"}, [][]byte{[]byte("x")}, []int64{2})
	require.ErrorIs(t, err, ErrMismatchedTable)
	assert.False(t, fsys.Mounted())

	// Failed mounts leave the FS degraded to an empty filesystem.
	assert.False(t, fsys.Exists("/"))
	_, err = fsys.Open("a")
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestMountSizeMayTrailBackingData(t *testing.T) {
	t.Parallel()

	fsys := New()
	require.NoError(t, fsys.Mount(
		[]string{"clip.txt"}, [][]byte{[]byte("full content")}, []int64{4}))

	content, err := fsys.ReadFile("clip.txt")
	require.NoError(t, err)
	assert.Equal(t, "full", string(content))
}

func TestOpenConcreteScenario(t *testing.T) {
	t.Parallel()

	fsys := mountTable(t, [][2]string{
		{"/hello.txt", "hi"},
		{"/dir/inner.txt", "yo"},
	})

	assert.True(t, fsys.Exists("/hello.txt"))

	f, err := fsys.Open("/hello.txt")
	require.NoError(t, err)
	buf := make([]byte, 10)
	n, err := f.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "hi", string(buf[:2]))

	_, err = fsys.Open("/missing")
	require.ErrorIs(t, err, fs.ErrNotExist)

	d, err := fsys.Open("/dir")
	require.NoError(t, err)
	dir, isDir := d.(*Dir)
	require.True(t, isDir)
	child, err := dir.OpenNext()
	require.NoError(t, err)
	assert.Equal(t, "/dir/inner.txt", child.(*File).Path())
	_, err = dir.OpenNext()
	assert.ErrorIs(t, err, io.EOF)

	inner, err := fsys.Open("dir/inner.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(2), inner.(*File).Size())
}

func TestExactMatchBeatsDirectoryInterpretation(t *testing.T) {
	t.Parallel()

	fsys := mountTable(t, [][2]string{
		{"a", "leaf"},
		{"a/b.txt", "nested"},
	})

	f, err := fsys.Open("a")
	require.NoError(t, err)
	file, isFile := f.(*File)
	require.True(t, isFile, "exact entry match must yield a file handle")
	assert.Equal(t, int64(4), file.Size())
}

func TestRootAlwaysExists(t *testing.T) {
	t.Parallel()

	fsys := mountTable(t, [][2]string{{"top.txt", "x"}})

	for _, root := range []string{"/", "", "."} {
		assert.True(t, fsys.Exists(root), "root spelling %q", root)

		f, err := fsys.Open(root)
		require.NoError(t, err)
		dir, isDir := f.(*Dir)
		require.True(t, isDir)
		assert.Equal(t, "/", dir.Path())
		assert.Equal(t, 1, dir.Len())
	}
}

func TestDirectoryInference(t *testing.T) {
	t.Parallel()

	fsys := mountTable(t, [][2]string{{"/a/b/c.txt", "deep"}})

	f, err := fsys.Open("/a")
	require.NoError(t, err)
	dir := f.(*Dir)
	require.Equal(t, 1, dir.Len())
	name, ok := dir.NextName()
	require.True(t, ok)
	assert.Equal(t, "/a/b", name)

	info, err := fsys.Stat("a/b")
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	info, err = fsys.Stat("a/b/c.txt")
	require.NoError(t, err)
	assert.False(t, info.IsDir())
	assert.Equal(t, int64(4), info.Size())
}

func TestReadDirSortsByName(t *testing.T) {
	t.Parallel()

	fsys := mountTable(t, [][2]string{
		{"dir/zeta.txt", "z"},
		{"dir/alpha.txt", "a"},
		{"dir/sub/x.txt", "x"},
	})

	entries, err := fsys.ReadDir("dir")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "alpha.txt", entries[0].Name())
	assert.Equal(t, "sub", entries[1].Name())
	assert.Equal(t, "zeta.txt", entries[2].Name())
	assert.True(t, entries[1].IsDir())

	_, err = fsys.ReadDir("nope")
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	fsys := mountTable(t, [][2]string{
		{"etc/hosts", "hosts"},
		{"etc/nginx/nginx.conf", "config"},
	})

	content, err := fsys.ReadFile("/etc/hosts")
	require.NoError(t, err)
	assert.Equal(t, "hosts", string(content))

	_, err = fsys.ReadFile("etc")
	require.ErrorIs(t, err, fs.ErrInvalid)

	_, err = fsys.ReadFile("etc/shadow")
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestInvalidPathsRejected(t *testing.T) {
	t.Parallel()

	fsys := mountTable(t, [][2]string{{"a.txt", "a"}})

	for _, p := range []string{"../a.txt", "a/../a.txt", "a//b"} {
		_, err := fsys.Open(p)
		assert.ErrorIs(t, err, fs.ErrInvalid, "path %q", p)
		assert.False(t, fsys.Exists(p))
	}
}

func TestLifecycle(t *testing.T) {
	t.Parallel()

	fsys := mountTable(t, [][2]string{{"/hello.txt", "hi"}})
	require.True(t, fsys.Mounted())
	assert.Equal(t, int64(2), fsys.TotalBytes())
	assert.Equal(t, fsys.TotalBytes(), fsys.UsedBytes())
	assert.Equal(t, 1, fsys.Len())

	fsys.Unmount()
	assert.False(t, fsys.Mounted())
	assert.False(t, fsys.Exists("/hello.txt"))
	assert.False(t, fsys.Exists("/"))
	assert.Zero(t, fsys.TotalBytes())
	assert.Zero(t, fsys.Len())

	_, err := fsys.Open("/")
	require.ErrorIs(t, err, fs.ErrNotExist)

	// Idempotent.
	fsys.Unmount()
	assert.False(t, fsys.Mounted())
}

func TestMutationIsANoOp(t *testing.T) {
	t.Parallel()

	fsys := mountTable(t, [][2]string{{"a.txt", "a"}})

	assert.ErrorIs(t, fsys.Rename("a.txt", "b.txt"), ErrReadOnly)
	assert.ErrorIs(t, fsys.Remove("a.txt"), ErrReadOnly)
	assert.ErrorIs(t, fsys.Mkdir("newdir"), ErrReadOnly)
	assert.ErrorIs(t, fsys.Rmdir("a"), ErrReadOnly)

	// The table is untouched.
	assert.True(t, fsys.Exists("a.txt"))
	assert.False(t, fsys.Exists("b.txt"))
}

func TestMountEntriesWithCustomSource(t *testing.T) {
	t.Parallel()

	fsys := New()
	err := fsys.MountEntries([]Entry{
		{Path: "blob.bin", Data: Bytes([]byte("abcdef")), Size: 6},
		{Path: "empty.bin", Data: nil, Size: 0},
	})
	require.NoError(t, err)

	content, err := fsys.ReadFile("blob.bin")
	require.NoError(t, err)
	assert.Equal(t, "abcdef", string(content))

	content, err = fsys.ReadFile("empty.bin")
	require.NoError(t, err)
	assert.Empty(t, content)

	err = fsys.MountEntries([]Entry{{Path: "bad", Data: nil, Size: 3}})
	require.ErrorIs(t, err, ErrMismatchedTable)
}
