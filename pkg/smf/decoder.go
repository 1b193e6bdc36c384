package smf

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/serifpersia/midistream/pkg/storage"
)

// Meta event types interpreted by the decoder.
const (
	metaTrackName     = 0x03
	metaEndOfTrack    = 0x2F
	metaTempo         = 0x51
	metaTimeSignature = 0x58
)

// maxMetaCapture bounds how many payload bytes of an uninterpreted meta
// event are surfaced to the caller. Longer payloads are skipped outright.
const maxMetaCapture = 128

// errTrackFinished guards against decoding past an end-of-track marker.
var errTrackFinished = errors.New("smf: track finished")

// TrackReader decodes the events of one MTrk chunk body incrementally. It
// owns the per-track parsing state: byte position, running status and the
// finished flag. Any decode failure marks the reader finished; the caller
// decides whether the failure is fatal to the whole session (ErrStorage) or
// only to this track.
type TrackReader struct {
	cur           *Cursor
	index         int
	runningStatus byte
	finished      bool
	log           *zap.Logger
}

// NewTrackReader returns a reader over the track body r of f. index is the
// zero-based track number, used for error reporting and scheduling.
func NewTrackReader(f storage.File, r TrackRange, index int, log *zap.Logger) *TrackReader {
	return &TrackReader{
		cur:   NewCursor(f, r.Start, r.End),
		index: index,
		log:   log,
	}
}

func (t *TrackReader) Index() int     { return t.index }
func (t *TrackReader) Finished() bool { return t.finished }
func (t *TrackReader) Offset() int64  { return t.cur.Offset() }

// fail marks the track finished and wraps err with its location. The
// wrapped chain is preserved so callers can match ErrStorage and the other
// sentinels with errors.Is.
func (t *TrackReader) fail(err error) error {
	t.finished = true
	return &DecodeError{Track: t.index, Offset: t.cur.Offset(), Err: err}
}

// ReadDelta consumes the delta-time VLQ preceding the next event.
func (t *TrackReader) ReadDelta() (uint32, error) {
	if t.finished {
		return 0, t.fail(errTrackFinished)
	}
	delta, err := t.cur.ReadVLQ()
	if err != nil {
		return 0, t.fail(err)
	}
	return delta, nil
}

// ReadEvent decodes exactly one event at the current position. The
// delta-time to the following event is read separately with ReadDelta,
// which must not be called once the reader is finished.
func (t *TrackReader) ReadEvent() (Event, error) {
	if t.finished {
		return Event{}, t.fail(errTrackFinished)
	}

	first, err := t.cur.PeekU8()
	if err != nil {
		return Event{}, t.fail(err)
	}

	var status byte
	if first < 0x80 {
		// Data byte at event start: running status. The byte stays
		// unconsumed and is read below as the first data byte.
		if t.runningStatus == 0 {
			return Event{}, t.fail(fmt.Errorf("%w: data byte 0x%02X", ErrMissingRunningStatus, first))
		}
		status = t.runningStatus
	} else {
		if _, err := t.cur.ReadU8(); err != nil {
			return Event{}, t.fail(err)
		}
		status = first
		switch {
		case status <= 0xEF:
			t.runningStatus = status
		case status == 0xFF:
			// Meta events leave running status untouched.
		default:
			// System messages cancel running status.
			t.runningStatus = 0
		}
	}

	if status < 0xF0 {
		return t.readChannelEvent(status)
	}

	switch status {
	case 0xF0, 0xF7:
		return t.readSysExEvent(status)
	case 0xFF:
		return t.readMetaEvent()
	default:
		// System common/realtime (0xF1-0xFE): no defined data bytes in
		// an SMF track; skip the status byte alone.
		t.log.Warn("skipping unhandled system status",
			zap.Int("track", t.index),
			zap.Uint8("status", status),
			zap.Int64("offset", t.cur.Offset()))
		return Event{Kind: KindSystem, Data1: status}, nil
	}
}

func (t *TrackReader) readChannelEvent(status byte) (Event, error) {
	ev := Event{Channel: status & 0x0F}

	d1, err := t.cur.ReadU8()
	if err != nil {
		return Event{}, t.fail(err)
	}
	ev.Data1 = d1

	switch status & 0xF0 {
	case 0xC0, 0xD0:
		if status&0xF0 == 0xC0 {
			ev.Kind = KindProgramChange
		} else {
			ev.Kind = KindChannelPressure
		}
		return ev, nil
	}

	d2, err := t.cur.ReadU8()
	if err != nil {
		return Event{}, t.fail(err)
	}
	ev.Data2 = d2

	switch status & 0xF0 {
	case 0x80:
		ev.Kind = KindNoteOff
	case 0x90:
		// Note-On with velocity zero is semantically a Note-Off.
		if d2 == 0 {
			ev.Kind = KindNoteOff
		} else {
			ev.Kind = KindNoteOn
		}
	case 0xA0:
		ev.Kind = KindKeyPressure
	case 0xB0:
		ev.Kind = KindControlChange
	case 0xE0:
		ev.Kind = KindPitchBend
		ev.Bend = int16(uint16(d2)<<7|uint16(d1)) - 8192
	}
	return ev, nil
}

func (t *TrackReader) readSysExEvent(status byte) (Event, error) {
	length, err := t.cur.ReadVLQ()
	if err != nil {
		return Event{}, t.fail(err)
	}
	// Payload never interpreted, only skipped.
	if err := t.cur.SeekTo(t.cur.Offset() + int64(length)); err != nil {
		return Event{}, t.fail(err)
	}
	t.log.Debug("skipped sysex block",
		zap.Int("track", t.index),
		zap.Uint8("status", status),
		zap.Uint32("length", length))
	return Event{Kind: KindSysEx, Data1: status}, nil
}

func (t *TrackReader) readMetaEvent() (Event, error) {
	metaType, err := t.cur.ReadU8()
	if err != nil {
		return Event{}, t.fail(err)
	}
	length, err := t.cur.ReadVLQ()
	if err != nil {
		return Event{}, t.fail(err)
	}
	dataStart := t.cur.Offset()

	ev, err := t.decodeMetaPayload(metaType, length)
	if err != nil {
		return Event{}, err
	}

	// Never trust the sub-handler to have consumed exactly length bytes:
	// force the cursor to the declared payload boundary. After an
	// end-of-track marker a failing skip is irrelevant, the track is done.
	if err := t.cur.SeekTo(dataStart + int64(length)); err != nil && ev.Kind != KindEndOfTrack {
		return Event{}, t.fail(err)
	}
	return ev, nil
}

func (t *TrackReader) decodeMetaPayload(metaType byte, length uint32) (Event, error) {
	switch metaType {
	case metaTempo:
		if length != 3 {
			t.log.Warn("tempo meta with unexpected length, skipping",
				zap.Int("track", t.index), zap.Uint32("length", length))
			break
		}
		var tempo uint32
		for i := 0; i < 3; i++ {
			b, err := t.cur.ReadU8()
			if err != nil {
				return Event{}, t.fail(err)
			}
			tempo = tempo<<8 | uint32(b)
		}
		if tempo == 0 {
			// Invalid tempo: report as opaque meta so the prior
			// tempo stays in effect.
			t.log.Warn("ignoring zero tempo meta event", zap.Int("track", t.index))
			return Event{Kind: KindMeta, MetaType: metaType}, nil
		}
		return Event{Kind: KindTempo, Tempo: tempo, MetaType: metaType}, nil

	case metaEndOfTrack:
		// Finished regardless of the declared length; payload bytes are
		// still skipped by the caller for offset correctness.
		t.finished = true
		return Event{Kind: KindEndOfTrack, MetaType: metaType}, nil

	case metaTimeSignature:
		if length != 4 {
			t.log.Warn("time signature meta with unexpected length, skipping",
				zap.Int("track", t.index), zap.Uint32("length", length))
			break
		}
		var raw [4]byte
		for i := range raw {
			b, err := t.cur.ReadU8()
			if err != nil {
				return Event{}, t.fail(err)
			}
			raw[i] = b
		}
		ts := TimeSignature{
			Numerator:               raw[0],
			DenominatorPow2:         raw[1],
			ClocksPerMetronome:      raw[2],
			ThirtySecondsPerQuarter: raw[3],
		}
		if ts.Numerator == 0 {
			t.log.Warn("zero time signature numerator, substituting 4/4",
				zap.Int("track", t.index))
			ts.Numerator, ts.DenominatorPow2 = 4, 2
		}
		return Event{Kind: KindTimeSignature, TimeSig: ts, MetaType: metaType}, nil
	}

	ev := Event{Kind: KindMeta, MetaType: metaType}
	if length > 0 && length <= maxMetaCapture {
		payload := make([]byte, length)
		for i := range payload {
			b, err := t.cur.ReadU8()
			if err != nil {
				return Event{}, t.fail(err)
			}
			payload[i] = b
		}
		ev.Meta = payload
	}
	return ev, nil
}
