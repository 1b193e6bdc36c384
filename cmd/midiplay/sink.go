package main

import (
	"go.uber.org/zap"

	"github.com/serifpersia/midistream/pkg/smf"
)

// logSink logs every delivered event. It stands in for MIDI hardware in
// real-time mode.
type logSink struct {
	log *zap.Logger
}

func (s *logSink) NoteOn(channel, note, velocity uint8) {
	s.log.Info("note on",
		zap.Uint8("channel", channel), zap.Uint8("note", note), zap.Uint8("velocity", velocity))
}

func (s *logSink) NoteOff(channel, note, velocity uint8) {
	s.log.Info("note off",
		zap.Uint8("channel", channel), zap.Uint8("note", note), zap.Uint8("velocity", velocity))
}

func (s *logSink) ControlChange(channel, controller, value uint8) {
	s.log.Info("control change",
		zap.Uint8("channel", channel), zap.Uint8("controller", controller), zap.Uint8("value", value))
}

func (s *logSink) ProgramChange(channel, program uint8) {
	s.log.Info("program change",
		zap.Uint8("channel", channel), zap.Uint8("program", program))
}

func (s *logSink) PitchBend(channel uint8, bend int16) {
	s.log.Info("pitch bend",
		zap.Uint8("channel", channel), zap.Int16("bend", bend))
}

func (s *logSink) TempoChange(microsPerQuarter uint32) {
	s.log.Info("tempo change", zap.Uint32("microsPerQuarter", microsPerQuarter))
}

func (s *logSink) TimeSignature(sig smf.TimeSignature) {
	s.log.Info("time signature",
		zap.Uint8("numerator", sig.Numerator),
		zap.Uint8("denominatorPow2", sig.DenominatorPow2))
}

func (s *logSink) EndOfTrack(track int) {
	s.log.Info("end of track", zap.Int("track", track))
}

func (s *logSink) PlaybackComplete() {
	s.log.Info("playback complete")
}

// MetaEvent surfaces track names and other opaque metas.
func (s *logSink) MetaEvent(track int, metaType byte, payload []byte) {
	s.log.Info("meta event",
		zap.Int("track", track),
		zap.Uint8("metaType", metaType),
		zap.ByteString("payload", payload))
}
