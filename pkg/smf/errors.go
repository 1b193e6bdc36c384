package smf

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidHeader reports a missing MThd magic or a header chunk
	// shorter than the six mandatory bytes.
	ErrInvalidHeader = errors.New("smf: invalid header")
	// ErrMissingTrack reports fewer MTrk chunks than the header declares.
	ErrMissingTrack = errors.New("smf: missing track chunk")
	// ErrTruncatedRead reports a read that ran past the end of the
	// enclosing chunk, or past the end of the file inside one.
	ErrTruncatedRead = errors.New("smf: truncated read")
	// ErrMalformedVLQ reports a variable-length quantity longer than the
	// four-byte SMF ceiling (0x0FFFFFFF).
	ErrMalformedVLQ = errors.New("smf: malformed variable-length quantity")
	// ErrMissingRunningStatus reports a data byte at event start with no
	// prior channel-voice status to repeat.
	ErrMissingRunningStatus = errors.New("smf: data byte without running status")
	// ErrStorage wraps a failure of the storage collaborator itself.
	// Unlike the parse errors above it is fatal to the whole session, not
	// just to the track being decoded.
	ErrStorage = errors.New("smf: storage failure")
)

// DecodeError carries the location of a track-level decode failure.
type DecodeError struct {
	Track  int
	Offset int64
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("smf: track %d at offset %d: %v", e.Track, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
