package smf

// Kind tags the semantic payload of a decoded event.
type Kind uint8

const (
	KindNone Kind = iota
	KindNoteOff
	KindNoteOn
	KindKeyPressure
	KindControlChange
	KindProgramChange
	KindChannelPressure
	KindPitchBend
	KindTempo
	KindTimeSignature
	KindEndOfTrack
	KindMeta   // any other meta event, payload opaque
	KindSysEx  // system-exclusive block, payload skipped
	KindSystem // unhandled system common/realtime status
)

var kindNames = [...]string{
	KindNone:            "None",
	KindNoteOff:         "NoteOff",
	KindNoteOn:          "NoteOn",
	KindKeyPressure:     "KeyPressure",
	KindControlChange:   "ControlChange",
	KindProgramChange:   "ProgramChange",
	KindChannelPressure: "ChannelPressure",
	KindPitchBend:       "PitchBend",
	KindTempo:           "Tempo",
	KindTimeSignature:   "TimeSignature",
	KindEndOfTrack:      "EndOfTrack",
	KindMeta:            "Meta",
	KindSysEx:           "SysEx",
	KindSystem:          "System",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// TimeSignature carries the four raw bytes of a 0x58 meta event. The
// denominator is stored as a power-of-two exponent, as in the file.
type TimeSignature struct {
	Numerator               uint8
	DenominatorPow2         uint8
	ClocksPerMetronome      uint8
	ThirtySecondsPerQuarter uint8
}

// Event is one decoded track event. Which fields are meaningful depends on
// Kind: channel-voice kinds use Channel/Data1/Data2 (and Bend for
// KindPitchBend), KindTempo uses Tempo, KindTimeSignature uses TimeSig,
// KindMeta uses MetaType and, for short payloads, Meta.
type Event struct {
	Kind     Kind
	Channel  uint8
	Data1    uint8
	Data2    uint8
	Bend     int16  // pitch bend, -8192..+8191
	Tempo    uint32 // microseconds per quarter note
	TimeSig  TimeSignature
	MetaType byte
	Meta     []byte
}
