package smf

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/serifpersia/midistream/pkg/storage"
)

var (
	headerChunkID = [4]byte{'M', 'T', 'h', 'd'}
	trackChunkID  = [4]byte{'M', 'T', 'r', 'k'}
)

// defaultTicksPerQuarter substitutes for SMPTE divisions and for a zero
// division field. SMPTE frame timing is detected but not computed exactly;
// playback degrades to this resolution with a warning.
const defaultTicksPerQuarter = 96

// Header holds the fields of the MThd chunk.
type Header struct {
	Format     uint16
	TrackCount uint16
	Division   uint16 // raw division field

	// TicksPerQuarter is the resolution used for all timing. It equals
	// Division for metrical files and defaultTicksPerQuarter when the
	// division is SMPTE-coded or zero.
	TicksPerQuarter uint16
	SMPTE           bool
}

// TrackRange is the byte range [Start, End) of one MTrk chunk body.
type TrackRange struct {
	Start int64
	End   int64
}

// ScanChunks walks the top-level chunks of f: it parses the header and
// records the byte range of each declared track without loading track
// bodies. Unknown chunk types are skipped by their declared length.
func ScanChunks(f storage.File, log *zap.Logger) (Header, []TrackRange, error) {
	var hdr Header

	size, err := f.Size()
	if err != nil {
		return hdr, nil, fmt.Errorf("%w: size: %v", ErrStorage, err)
	}
	if size < 14 {
		return hdr, nil, fmt.Errorf("%w: file too small (%d bytes)", ErrInvalidHeader, size)
	}

	cur := NewCursor(f, 0, size)

	id, err := readChunkID(cur)
	if err != nil {
		return hdr, nil, err
	}
	if id != headerChunkID {
		return hdr, nil, fmt.Errorf("%w: bad magic %q", ErrInvalidHeader, id[:])
	}
	headerLen, err := cur.ReadU32BE()
	if err != nil {
		return hdr, nil, err
	}
	if headerLen < 6 {
		return hdr, nil, fmt.Errorf("%w: header length %d", ErrInvalidHeader, headerLen)
	}
	if hdr.Format, err = cur.ReadU16BE(); err != nil {
		return hdr, nil, err
	}
	if hdr.TrackCount, err = cur.ReadU16BE(); err != nil {
		return hdr, nil, err
	}
	if hdr.Division, err = cur.ReadU16BE(); err != nil {
		return hdr, nil, err
	}
	if headerLen > 6 {
		log.Debug("skipping extra header bytes", zap.Uint32("count", headerLen-6))
		if err := cur.SeekTo(cur.Offset() + int64(headerLen-6)); err != nil {
			return hdr, nil, fmt.Errorf("%w: header overruns file", ErrInvalidHeader)
		}
	}

	switch {
	case hdr.Division&0x8000 != 0:
		hdr.SMPTE = true
		hdr.TicksPerQuarter = defaultTicksPerQuarter
		log.Warn("SMPTE division not computed exactly, using default resolution",
			zap.Uint16("division", hdr.Division),
			zap.Uint16("ticksPerQuarter", hdr.TicksPerQuarter))
	case hdr.Division == 0:
		hdr.TicksPerQuarter = defaultTicksPerQuarter
		log.Warn("zero division, using default resolution",
			zap.Uint16("ticksPerQuarter", hdr.TicksPerQuarter))
	default:
		hdr.TicksPerQuarter = hdr.Division
	}

	tracks := make([]TrackRange, 0, hdr.TrackCount)
	for i := uint16(0); i < hdr.TrackCount; i++ {
		r, err := scanForTrack(cur, size, log)
		if err != nil {
			return hdr, nil, fmt.Errorf("%w: found %d of %d declared tracks: %v",
				ErrMissingTrack, len(tracks), hdr.TrackCount, err)
		}
		tracks = append(tracks, r)
	}

	log.Info("scanned file",
		zap.Uint16("format", hdr.Format),
		zap.Int("tracks", len(tracks)),
		zap.Uint16("ticksPerQuarter", hdr.TicksPerQuarter))
	return hdr, tracks, nil
}

// scanForTrack advances the cursor to the next MTrk chunk, skipping other
// chunk types by their declared length, and returns the track body range.
func scanForTrack(cur *Cursor, size int64, log *zap.Logger) (TrackRange, error) {
	for {
		if cur.Remaining() < 8 {
			return TrackRange{}, fmt.Errorf("EOF at offset %d", cur.Offset())
		}
		id, err := readChunkID(cur)
		if err != nil {
			return TrackRange{}, err
		}
		length, err := cur.ReadU32BE()
		if err != nil {
			return TrackRange{}, err
		}
		start := cur.Offset()
		end := start + int64(length)
		if id == trackChunkID {
			if end > size {
				log.Warn("track chunk overruns file, clamping",
					zap.Int64("declaredEnd", end), zap.Int64("fileSize", size))
				end = size
			}
			if err := cur.SeekTo(end); err != nil {
				return TrackRange{}, err
			}
			return TrackRange{Start: start, End: end}, nil
		}
		log.Debug("skipping chunk",
			zap.ByteString("id", id[:]),
			zap.Int64("offset", start-8),
			zap.Uint32("length", length))
		if err := cur.SeekTo(end); err != nil {
			return TrackRange{}, err
		}
	}
}

func readChunkID(cur *Cursor) ([4]byte, error) {
	var id [4]byte
	for i := range id {
		b, err := cur.ReadU8()
		if err != nil {
			return id, err
		}
		id[i] = b
	}
	return id, nil
}
