package platform

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")

	data := bytes.Repeat([]byte("reclaim"), 100_000)
	require.NoError(t, os.WriteFile(src, data, 0644))

	n, err := CopyFile(src, dst)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), n)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, got))
}

func TestCopyFileEmpty(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "empty")
	dst := filepath.Join(dir, "out")

	require.NoError(t, os.WriteFile(src, nil, 0644))

	n, err := CopyFile(src, dst)
	require.NoError(t, err)
	assert.Zero(t, n)

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestCopyFileMissingSource(t *testing.T) {
	dir := t.TempDir()
	_, err := CopyFile(filepath.Join(dir, "nope"), filepath.Join(dir, "out"))
	require.Error(t, err)
}

func TestCopyFileOverwrites(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")

	require.NoError(t, os.WriteFile(src, []byte("short"), 0644))
	require.NoError(t, os.WriteFile(dst, bytes.Repeat([]byte("x"), 4096), 0644))

	n, err := CopyFile(src, dst)
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "short", string(got))
}
