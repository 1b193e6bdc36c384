package player

import "github.com/serifpersia/midistream/pkg/smf"

// EventSink receives decoded events at their simulated time. Delivery order
// matches scheduler order: non-decreasing tick, ties broken by ascending
// track index. Implementations must return promptly; the player delivers
// synchronously from its Advance loop.
type EventSink interface {
	NoteOn(channel, note, velocity uint8)
	NoteOff(channel, note, velocity uint8)
	ControlChange(channel, controller, value uint8)
	ProgramChange(channel, program uint8)
	PitchBend(channel uint8, bend int16)
	TempoChange(microsPerQuarter uint32)
	TimeSignature(sig smf.TimeSignature)
	EndOfTrack(track int)
	PlaybackComplete()
}

// MetaSink is an optional capability: sinks that also implement it receive
// the opaque payload of uninterpreted meta events (track names, markers,
// lyrics). The payload is never parsed by the player.
type MetaSink interface {
	MetaEvent(track int, metaType byte, payload []byte)
}

// NopSink discards every event. Embed it to implement only the callbacks a
// host cares about.
type NopSink struct{}

func (NopSink) NoteOn(channel, note, velocity uint8)           {}
func (NopSink) NoteOff(channel, note, velocity uint8)          {}
func (NopSink) ControlChange(channel, controller, value uint8) {}
func (NopSink) ProgramChange(channel, program uint8)           {}
func (NopSink) PitchBend(channel uint8, bend int16)            {}
func (NopSink) TempoChange(microsPerQuarter uint32)            {}
func (NopSink) TimeSignature(sig smf.TimeSignature)            {}
func (NopSink) EndOfTrack(track int)                           {}
func (NopSink) PlaybackComplete()                              {}
