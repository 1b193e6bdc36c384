package smf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestScanChunksTwoTracks(t *testing.T) {
	t0 := (&trackBuilder{}).delta(0).raw(0x90, 60, 100).delta(0).eot().b
	t1 := (&trackBuilder{}).delta(5).raw(0x90, 62, 100).delta(0).eot().b
	data := buildFile(480, t0, t1)

	hdr, ranges, err := ScanChunks(openBytes(data), zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, uint16(1), hdr.Format)
	assert.Equal(t, uint16(2), hdr.TrackCount)
	assert.Equal(t, uint16(480), hdr.TicksPerQuarter)
	assert.False(t, hdr.SMPTE)

	require.Len(t, ranges, 2)
	assert.Equal(t, int64(14+8), ranges[0].Start)
	assert.Equal(t, ranges[0].Start+int64(len(t0)), ranges[0].End)
	assert.Equal(t, ranges[0].End+8, ranges[1].Start)
	assert.Equal(t, ranges[1].Start+int64(len(t1)), ranges[1].End)
}

func TestScanChunksBadMagic(t *testing.T) {
	data := buildFile(480, (&trackBuilder{}).delta(0).eot().b)
	copy(data, "RIFF")
	_, _, err := ScanChunks(openBytes(data), zap.NewNop())
	require.ErrorIs(t, err, ErrInvalidHeader)
}

func TestScanChunksShortHeader(t *testing.T) {
	data := buildFile(480, (&trackBuilder{}).delta(0).eot().b)
	data[7] = 5 // header length below the six mandatory bytes
	_, _, err := ScanChunks(openBytes(data), zap.NewNop())
	require.ErrorIs(t, err, ErrInvalidHeader)
}

func TestScanChunksTinyFile(t *testing.T) {
	_, _, err := ScanChunks(openBytes([]byte("MThd")), zap.NewNop())
	require.ErrorIs(t, err, ErrInvalidHeader)
}

func TestScanChunksExtraHeaderBytes(t *testing.T) {
	track := (&trackBuilder{}).delta(0).eot().b
	b := []byte{'M', 'T', 'h', 'd', 0, 0, 0, 8}
	b = appendU16BE(b, 0)
	b = appendU16BE(b, 1)
	b = appendU16BE(b, 96)
	b = append(b, 0xDE, 0xAD) // two extra header bytes to skip
	b = append(b, 'M', 'T', 'r', 'k')
	b = appendU32BE(b, uint32(len(track)))
	b = append(b, track...)

	hdr, ranges, err := ScanChunks(openBytes(b), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, uint16(96), hdr.TicksPerQuarter)
	require.Len(t, ranges, 1)
	assert.Equal(t, int64(16+8), ranges[0].Start)
}

func TestScanChunksSMPTEDegrades(t *testing.T) {
	// High bit set: SMPTE frame division, degraded to the default
	// resolution instead of computed exactly.
	data := buildFile(0xE728, (&trackBuilder{}).delta(0).eot().b)
	hdr, _, err := ScanChunks(openBytes(data), zap.NewNop())
	require.NoError(t, err)
	assert.True(t, hdr.SMPTE)
	assert.Equal(t, uint16(96), hdr.TicksPerQuarter)
}

func TestScanChunksZeroDivisionDegrades(t *testing.T) {
	data := buildFile(0, (&trackBuilder{}).delta(0).eot().b)
	hdr, _, err := ScanChunks(openBytes(data), zap.NewNop())
	require.NoError(t, err)
	assert.False(t, hdr.SMPTE)
	assert.Equal(t, uint16(96), hdr.TicksPerQuarter)
}

func TestScanChunksSkipsUnknownChunks(t *testing.T) {
	track := (&trackBuilder{}).delta(0).eot().b
	b := []byte{'M', 'T', 'h', 'd', 0, 0, 0, 6}
	b = appendU16BE(b, 0)
	b = appendU16BE(b, 1)
	b = appendU16BE(b, 96)
	// A foreign chunk between header and track.
	b = append(b, 'X', 'F', 'I', 'H')
	b = appendU32BE(b, 3)
	b = append(b, 1, 2, 3)
	b = append(b, 'M', 'T', 'r', 'k')
	b = appendU32BE(b, uint32(len(track)))
	b = append(b, track...)

	_, ranges, err := ScanChunks(openBytes(b), zap.NewNop())
	require.NoError(t, err)
	require.Len(t, ranges, 1)
	assert.Equal(t, int64(14+8+3+8), ranges[0].Start)
}

func TestScanChunksMissingTrack(t *testing.T) {
	// Header declares two tracks, file contains one.
	data := buildFile(96, (&trackBuilder{}).delta(0).eot().b)
	data[11] = 2
	_, _, err := ScanChunks(openBytes(data), zap.NewNop())
	require.ErrorIs(t, err, ErrMissingTrack)
}

func TestScanChunksClampsOverlongTrack(t *testing.T) {
	track := (&trackBuilder{}).delta(0).eot().b
	data := buildFile(96, track)
	// Inflate the declared track length past the end of the file.
	data[14+4+3] = byte(len(track) + 50)

	_, ranges, err := ScanChunks(openBytes(data), zap.NewNop())
	require.NoError(t, err)
	require.Len(t, ranges, 1)
	assert.Equal(t, int64(len(data)), ranges[0].End)
}
