// Package synth renders decoded MIDI events through a go-meltysynth
// software synthesizer. It adapts the player's event sink to the
// synthesizer's channel API, so the same replay core drives both real MIDI
// hardware callbacks and offline audio rendering.
package synth

import (
	"fmt"
	"io"

	"github.com/sinshu/go-meltysynth/meltysynth"
	"go.uber.org/zap"

	"github.com/serifpersia/midistream/pkg/player"
)

// Sink feeds player events into a meltysynth synthesizer. It implements
// player.EventSink; timing is owned by the player, the sink only reacts.
type Sink struct {
	player.NopSink

	synth *meltysynth.Synthesizer
	log   *zap.Logger
}

// NewSink builds a synthesizer for the given SoundFont and sample rate and
// wraps it as an event sink.
func NewSink(sf *meltysynth.SoundFont, sampleRate int32, log *zap.Logger) (*Sink, error) {
	if log == nil {
		log = zap.NewNop()
	}
	settings := meltysynth.NewSynthesizerSettings(sampleRate)
	synth, err := meltysynth.NewSynthesizer(sf, settings)
	if err != nil {
		return nil, fmt.Errorf("synth: create synthesizer: %w", err)
	}
	return &Sink{synth: synth, log: log}, nil
}

// LoadSoundFont parses a SoundFont from r.
func LoadSoundFont(r io.Reader) (*meltysynth.SoundFont, error) {
	sf, err := meltysynth.NewSoundFont(r)
	if err != nil {
		return nil, fmt.Errorf("synth: parse soundfont: %w", err)
	}
	return sf, nil
}

func (s *Sink) NoteOn(channel, note, velocity uint8) {
	s.synth.NoteOn(int32(channel), int32(note), int32(velocity))
}

func (s *Sink) NoteOff(channel, note, velocity uint8) {
	s.synth.NoteOff(int32(channel), int32(note))
}

func (s *Sink) ControlChange(channel, controller, value uint8) {
	s.synth.ProcessMidiMessage(int32(channel), 0xB0, int32(controller), int32(value))
}

func (s *Sink) ProgramChange(channel, program uint8) {
	s.synth.ProcessMidiMessage(int32(channel), 0xC0, int32(program), 0)
}

func (s *Sink) PitchBend(channel uint8, bend int16) {
	v := int32(bend) + 8192 // 14-bit wire value
	s.synth.ProcessMidiMessage(int32(channel), 0xE0, v&0x7F, v>>7)
}

func (s *Sink) PlaybackComplete() {
	// Let held notes decay instead of cutting them.
	s.synth.NoteOffAll(false)
}

// Render synthesizes len(left) stereo frames into left and right.
func (s *Sink) Render(left, right []float32) {
	s.synth.Render(left, right)
}
