package engine

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigestFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o644))

	digest, err := DigestFile(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Len(t, digest, 64) // 256-bit digest, hex-encoded

	again, err := DigestFile(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, digest, again)
}

func TestDigestFileIdenticalContent(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.bin")
	b := filepath.Join(dir, "b.bin")
	data := bytes.Repeat([]byte("x"), 3*HashChunkSize+17) // spans chunk boundaries
	require.NoError(t, os.WriteFile(a, data, 0o644))
	require.NoError(t, os.WriteFile(b, data, 0o644))

	da, err := DigestFile(context.Background(), a, nil)
	require.NoError(t, err)
	db, err := DigestFile(context.Background(), b, nil)
	require.NoError(t, err)
	assert.Equal(t, da, db)
}

func TestDigestFileEmptyFilesShareDigest(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "empty1")
	b := filepath.Join(dir, "empty2")
	require.NoError(t, os.WriteFile(a, nil, 0o644))
	require.NoError(t, os.WriteFile(b, nil, 0o644))

	da, err := DigestFile(context.Background(), a, nil)
	require.NoError(t, err)
	db, err := DigestFile(context.Background(), b, nil)
	require.NoError(t, err)

	// Empty files all hash to the digest of the empty input. This is
	// accepted behavior: they are reported as mutual duplicates.
	assert.Equal(t, da, db)
	assert.NotEmpty(t, da)
}

func TestDigestFileMissing(t *testing.T) {
	_, err := DigestFile(context.Background(), filepath.Join(t.TempDir(), "nope"), nil)
	require.Error(t, err)

	var readErr *FileReadError
	assert.ErrorAs(t, err, &readErr)
}

func TestDigestFileWithLimiter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.bin")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("y"), 64*1024), 0o644))

	lim, err := NewBWLimiter(1 << 30) // high enough not to stall the test
	require.NoError(t, err)

	withLimit, err := DigestFile(context.Background(), path, lim)
	require.NoError(t, err)
	without, err := DigestFile(context.Background(), path, nil)
	require.NoError(t, err)
	assert.Equal(t, without, withLimit)
}

func TestNewBWLimiterInvalid(t *testing.T) {
	_, err := NewBWLimiter(0)
	assert.Error(t, err)
	_, err = NewBWLimiter(-1)
	assert.Error(t, err)
}
