package smf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorFixedWidthReads(t *testing.T) {
	data := []byte{0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC, 0xDE}
	cur := NewCursor(openBytes(data), 0, int64(len(data)))

	b, err := cur.ReadU8()
	require.NoError(t, err)
	assert.Equal(t, byte(0x12), b)

	v16, err := cur.ReadU16BE()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x3456), v16)

	v32, err := cur.ReadU32BE()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x789ABCDE), v32)

	assert.Equal(t, int64(7), cur.Offset())
	assert.Equal(t, int64(0), cur.Remaining())
}

func TestCursorReadsAcrossRefillBoundary(t *testing.T) {
	// Three buffer fills worth of data, verified byte by byte.
	data := make([]byte, cursorBufSize*2+17)
	for i := range data {
		data[i] = byte(i)
	}
	cur := NewCursor(openBytes(data), 0, int64(len(data)))
	for i := range data {
		b, err := cur.ReadU8()
		require.NoError(t, err, "byte %d", i)
		require.Equal(t, byte(i), b, "byte %d", i)
	}
	_, err := cur.ReadU8()
	require.ErrorIs(t, err, ErrTruncatedRead)
}

func TestCursorHonorsRangeBounds(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4, 5, 6, 7}
	cur := NewCursor(openBytes(data), 2, 5)

	b, err := cur.ReadU8()
	require.NoError(t, err)
	assert.Equal(t, byte(2), b)
	assert.Equal(t, int64(2), cur.Remaining())

	_, err = cur.ReadU16BE()
	require.NoError(t, err)

	// Range exhausted even though the file has more bytes.
	_, err = cur.ReadU8()
	require.ErrorIs(t, err, ErrTruncatedRead)
}

func TestCursorSeekPastEnd(t *testing.T) {
	data := []byte{0, 1, 2, 3}
	cur := NewCursor(openBytes(data), 0, int64(len(data)))
	err := cur.SeekTo(10)
	require.ErrorIs(t, err, ErrTruncatedRead)
	assert.Equal(t, int64(4), cur.Offset())
}

func TestCursorRangeBeyondFileIsTruncated(t *testing.T) {
	// Declared range runs past the actual file: EOF inside the range is a
	// truncation, not a device failure.
	data := []byte{0xAA, 0xBB}
	cur := NewCursor(openBytes(data), 0, 10)

	b, err := cur.ReadU8()
	require.NoError(t, err)
	assert.Equal(t, byte(0xAA), b)
	_, err = cur.ReadU8()
	require.NoError(t, err)

	_, err = cur.ReadU8()
	require.ErrorIs(t, err, ErrTruncatedRead)
	assert.NotErrorIs(t, err, ErrStorage)
}

func TestCursorStorageFailure(t *testing.T) {
	f := &failFile{data: make([]byte, 200), failAfter: 1}
	cur := NewCursor(f, 0, 200)

	// First fill succeeds, second read call hits the device error.
	for i := 0; i < cursorBufSize; i++ {
		_, err := cur.ReadU8()
		require.NoError(t, err)
	}
	_, err := cur.ReadU8()
	require.ErrorIs(t, err, ErrStorage)
}
