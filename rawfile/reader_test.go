package rawfile

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(payload []byte) []byte {
	out := make([]byte, 8+len(payload))
	binary.LittleEndian.PutUint32(out[0:4], Magic)
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(payload)))
	copy(out[8:], payload)
	return out
}

func writeFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func TestReader_YieldsFramesAcrossFiles(t *testing.T) {
	dir := t.TempDir()

	var f0 []byte
	f0 = append(f0, frame([]byte("block-a"))...)
	f0 = append(f0, frame([]byte("block-b"))...)
	writeFile(t, dir, "blk00000.dat", f0)

	var f1 []byte
	f1 = append(f1, frame([]byte("block-c"))...)
	writeFile(t, dir, "blk00001.dat", f1)

	r := New(dir, "blk*.dat")

	var got []string
	for {
		payload, ok, err := r.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, string(payload))
	}

	assert.Equal(t, []string{"block-a", "block-b", "block-c"}, got)
}

func TestReader_ZeroMagicIsEndOfData(t *testing.T) {
	dir := t.TempDir()

	data := frame([]byte("only-block"))
	data = append(data, make([]byte, 16)...) // zeroed pre-allocated tail

	writeFile(t, dir, "blk00000.dat", data)

	r := New(dir, "blk*.dat")

	payload, ok, err := r.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "only-block", string(payload))

	_, ok, err = r.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReader_UnexpectedMagicIsCorruption(t *testing.T) {
	dir := t.TempDir()

	bad := make([]byte, 8)
	binary.LittleEndian.PutUint32(bad[0:4], 0xDEADBEEF)
	writeFile(t, dir, "blk00000.dat", bad)

	r := New(dir, "blk*.dat")

	_, _, err := r.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CORRUPTION")
}

func TestReader_NoFilesYieldsNoBlocksImmediately(t *testing.T) {
	dir := t.TempDir()

	r := New(dir, "blk*.dat")

	_, ok, err := r.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReader_UnreadableFilePropagatesIOError(t *testing.T) {
	dir := t.TempDir()

	// A directory matching the glob makes os.ReadFile fail; this must
	// surface as an error, not be mistaken for a clean end-of-stream.
	require.NoError(t, os.Mkdir(filepath.Join(dir, "blk00000.dat"), 0o755))

	r := New(dir, "blk*.dat")

	_, ok, err := r.Next()
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "IO")
}
