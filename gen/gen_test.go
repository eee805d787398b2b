package gen

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAssetTree(t *testing.T, files map[string][]byte) string {
	t.Helper()

	dir := t.TempDir()
	for path, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
		require.NoError(t, os.WriteFile(full, content, 0o600))
	}
	return dir
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	dir := writeAssetTree(t, map[string][]byte{
		"index.html":       []byte("<html></html>"),
		"static/app.js":    []byte("console.log(1)"),
		"static/logo.bin":  {0x00, 0xff, 0x10},
		"static/sub/x.txt": []byte("x"),
	})

	var buf bytes.Buffer
	require.NoError(t, Generate(context.Background(), dir, &buf))
	out := buf.String()

	assert.Contains(t, out, "// Code generated by embedfs gen. DO NOT EDIT.")
	assert.Contains(t, out, "package assets")
	assert.Contains(t, out, "var AssetNames = []string{")
	assert.Contains(t, out, `"index.html",`)
	assert.Contains(t, out, `"static/app.js",`)
	assert.Contains(t, out, "const AssetCount = 4")

	// Binary content survives as an escaped string literal.
	assert.Contains(t, out, `[]byte("\x00\xff\x10")`)

	// Lexical order: index.html sorts before static/.
	assert.Less(t, strings.Index(out, `"index.html"`), strings.Index(out, `"static/app.js"`))
	assert.Less(t, strings.Index(out, `"static/app.js"`), strings.Index(out, `"static/logo.bin"`))
}

func TestGenerateOptions(t *testing.T) {
	t.Parallel()

	dir := writeAssetTree(t, map[string][]byte{"a.txt": []byte("a")})

	var buf bytes.Buffer
	err := Generate(context.Background(), dir, &buf,
		WithPackage("web"),
		WithPrefix("Static"),
		WithBuildTag("embed_assets"),
	)
	require.NoError(t, err)
	out := buf.String()

	assert.Contains(t, out, "//go:build embed_assets")
	assert.Contains(t, out, "package web")
	assert.Contains(t, out, "var StaticNames")
	assert.Contains(t, out, "var StaticData")
	assert.Contains(t, out, "var StaticSizes")
	assert.Contains(t, out, "const StaticCount = 1")
}

func TestGenerateEmptyTreeFails(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var buf bytes.Buffer
	err := Generate(context.Background(), dir, &buf)
	require.Error(t, err)
}

func TestGenerateHonorsMaxFiles(t *testing.T) {
	t.Parallel()

	dir := writeAssetTree(t, map[string][]byte{
		"a.txt": []byte("a"),
		"b.txt": []byte("b"),
	})

	var buf bytes.Buffer
	err := Generate(context.Background(), dir, &buf, WithMaxFiles(1))
	require.Error(t, err)
}

func TestGenerateCancellation(t *testing.T) {
	t.Parallel()

	dir := writeAssetTree(t, map[string][]byte{"a.txt": []byte("a")})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := Generate(ctx, dir, &buf)
	require.ErrorIs(t, err, context.Canceled)
}
