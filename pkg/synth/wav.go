package synth

import (
	"encoding/binary"
	"fmt"
	"io"
)

// WriteWAV writes left/right float32 frames as a 16-bit stereo PCM WAV
// stream. Samples are clamped to [-1, 1] before conversion.
func WriteWAV(w io.Writer, left, right []float32, sampleRate int32) error {
	if len(left) != len(right) {
		return fmt.Errorf("synth: channel length mismatch: %d vs %d", len(left), len(right))
	}

	const (
		channels      = 2
		bitsPerSample = 16
	)
	blockAlign := channels * bitsPerSample / 8
	dataSize := uint32(len(left) * blockAlign)

	var header struct {
		RIFF      [4]byte
		FileSize  uint32
		WAVE      [4]byte
		Fmt       [4]byte
		FmtSize   uint32
		Format    uint16
		Channels  uint16
		Rate      uint32
		ByteRate  uint32
		Align     uint16
		Bits      uint16
		Data      [4]byte
		DataSize  uint32
	}
	header.RIFF = [4]byte{'R', 'I', 'F', 'F'}
	header.FileSize = 36 + dataSize
	header.WAVE = [4]byte{'W', 'A', 'V', 'E'}
	header.Fmt = [4]byte{'f', 'm', 't', ' '}
	header.FmtSize = 16
	header.Format = 1 // PCM
	header.Channels = channels
	header.Rate = uint32(sampleRate)
	header.ByteRate = uint32(sampleRate) * uint32(blockAlign)
	header.Align = uint16(blockAlign)
	header.Bits = bitsPerSample
	header.Data = [4]byte{'d', 'a', 't', 'a'}
	header.DataSize = dataSize

	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("synth: write wav header: %w", err)
	}

	pcm := make([]int16, 0, len(left)*channels)
	for i := range left {
		pcm = append(pcm, int16(clamp(left[i])*32767), int16(clamp(right[i])*32767))
	}
	if err := binary.Write(w, binary.LittleEndian, pcm); err != nil {
		return fmt.Errorf("synth: write wav samples: %w", err)
	}
	return nil
}

func clamp(v float32) float32 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
