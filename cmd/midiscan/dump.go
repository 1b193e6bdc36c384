package main

import (
	"go.uber.org/zap"

	"github.com/serifpersia/midistream/pkg/smf"
	"github.com/serifpersia/midistream/pkg/storage"
)

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	return cfg.Build()
}

// dumpTrack decodes one track from start to finish, logging each event with
// its absolute tick. Decode failures stop the dump of that track only.
func dumpTrack(f storage.File, r smf.TrackRange, index int, log *zap.Logger) {
	tr := smf.NewTrackReader(f, r, index, log)

	delta, err := tr.ReadDelta()
	if err != nil {
		log.Warn("track unreadable", zap.Int("track", index), zap.Error(err))
		return
	}
	tick := uint64(delta)

	for !tr.Finished() {
		ev, err := tr.ReadEvent()
		if err != nil {
			log.Warn("decode stopped", zap.Int("track", index), zap.Error(err))
			return
		}
		logEvent(log, index, tick, ev)
		if tr.Finished() {
			return
		}
		delta, err := tr.ReadDelta()
		if err != nil {
			log.Warn("decode stopped", zap.Int("track", index), zap.Error(err))
			return
		}
		tick += uint64(delta)
	}
}

func logEvent(log *zap.Logger, track int, tick uint64, ev smf.Event) {
	fields := []zap.Field{
		zap.Int("track", track),
		zap.Uint64("tick", tick),
		zap.Stringer("kind", ev.Kind),
	}
	switch ev.Kind {
	case smf.KindNoteOn, smf.KindNoteOff, smf.KindKeyPressure:
		fields = append(fields,
			zap.Uint8("channel", ev.Channel),
			zap.Uint8("note", ev.Data1),
			zap.Uint8("velocity", ev.Data2))
	case smf.KindControlChange:
		fields = append(fields,
			zap.Uint8("channel", ev.Channel),
			zap.Uint8("controller", ev.Data1),
			zap.Uint8("value", ev.Data2))
	case smf.KindProgramChange, smf.KindChannelPressure:
		fields = append(fields,
			zap.Uint8("channel", ev.Channel),
			zap.Uint8("value", ev.Data1))
	case smf.KindPitchBend:
		fields = append(fields,
			zap.Uint8("channel", ev.Channel),
			zap.Int16("bend", ev.Bend))
	case smf.KindTempo:
		fields = append(fields, zap.Uint32("microsPerQuarter", ev.Tempo))
	case smf.KindTimeSignature:
		fields = append(fields,
			zap.Uint8("numerator", ev.TimeSig.Numerator),
			zap.Uint8("denominatorPow2", ev.TimeSig.DenominatorPow2))
	case smf.KindMeta:
		fields = append(fields, zap.Uint8("metaType", ev.MetaType))
		if ev.Meta != nil {
			fields = append(fields, zap.ByteString("payload", ev.Meta))
		}
	}
	log.Info("event", fields...)
}
