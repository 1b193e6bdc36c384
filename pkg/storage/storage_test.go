package storage

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemRoundTrip(t *testing.T) {
	m := NewMem()
	m.Put("b.mid", []byte{4, 5})
	m.Put("a.mid", []byte{1, 2, 3})

	assert.Equal(t, []string{"a.mid", "b.mid"}, m.Names())

	f, err := m.Open("a.mid")
	require.NoError(t, err)
	defer f.Close()

	size, err := f.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(3), size)

	got, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)
}

func TestMemPutCopiesData(t *testing.T) {
	src := []byte{1, 2, 3}
	m := NewMem()
	m.Put("x", src)
	src[0] = 9

	f, err := m.Open("x")
	require.NoError(t, err)
	defer f.Close()

	got, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)
}

func TestMemOpenMissing(t *testing.T) {
	_, err := NewMem().Open("nope")
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestMemFileClosed(t *testing.T) {
	m := NewMem()
	m.Put("x", []byte{1})
	f, err := m.Open("x")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = f.Read(make([]byte, 1))
	assert.ErrorIs(t, err, os.ErrClosed)
	_, err = f.Seek(0, io.SeekStart)
	assert.ErrorIs(t, err, os.ErrClosed)
	_, err = f.Size()
	assert.ErrorIs(t, err, os.ErrClosed)
}

func TestMemFileSeek(t *testing.T) {
	m := NewMem()
	m.Put("x", []byte{10, 20, 30, 40})
	f, err := m.Open("x")
	require.NoError(t, err)
	defer f.Close()

	pos, err := f.Seek(2, io.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pos)

	got, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, []byte{30, 40}, got)
}

func TestDirOpen(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "song.mid"), []byte{0xAB, 0xCD}, 0o644))

	d := NewDir(root)
	f, err := d.Open("song.mid")
	require.NoError(t, err)
	defer f.Close()

	size, err := f.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(2), size)

	got, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAB, 0xCD}, got)
}

func TestDirOpenMissing(t *testing.T) {
	_, err := NewDir(t.TempDir()).Open("nope.mid")
	require.ErrorIs(t, err, os.ErrNotExist)
}
