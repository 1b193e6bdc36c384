package main

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/serifpersia/midistream/pkg/player"
	"github.com/serifpersia/midistream/pkg/storage"
	"github.com/serifpersia/midistream/pkg/synth"
)

// renderBlock is the number of stereo frames synthesized per player step.
const renderBlock = 256

// renderClock is a simulated clock stepped by the render loop, so the file
// renders as fast as the synthesizer allows instead of in real time.
type renderClock struct {
	now uint64
}

func (c *renderClock) Micros() uint64 { return c.now }

// render replays the file through a meltysynth sink and writes the result
// as a 16-bit stereo WAV.
func render(name, sf2, out string, sampleRate int32, log *zap.Logger) error {
	sf2File, err := os.Open(sf2)
	if err != nil {
		return err
	}
	font, err := synth.LoadSoundFont(sf2File)
	sf2File.Close()
	if err != nil {
		return err
	}

	sink, err := synth.NewSink(font, sampleRate, log)
	if err != nil {
		return err
	}

	clk := &renderClock{}
	store := storage.NewDir(filepath.Dir(name))
	p := player.New(store, clk, sink, log)

	if err := p.Load(filepath.Base(name)); err != nil {
		return err
	}
	defer p.Stop()

	if err := p.Play(); err != nil {
		return err
	}

	blockMicros := uint64(renderBlock) * 1_000_000 / uint64(sampleRate)
	var left, right []float32
	l := make([]float32, renderBlock)
	r := make([]float32, renderBlock)

	for p.State() == player.StatePlaying {
		if err := p.Advance(); err != nil {
			return err
		}
		sink.Render(l, r)
		left = append(left, l...)
		right = append(right, r...)
		clk.now += blockMicros
	}

	// One second of tail so releases decay.
	tailBlocks := int(sampleRate) / renderBlock
	for i := 0; i < tailBlocks; i++ {
		sink.Render(l, r)
		left = append(left, l...)
		right = append(right, r...)
	}

	outFile, err := os.Create(out)
	if err != nil {
		return err
	}
	defer outFile.Close()

	if err := synth.WriteWAV(outFile, left, right, sampleRate); err != nil {
		return err
	}
	log.Info("rendered file",
		zap.String("in", name),
		zap.String("out", out),
		zap.Int("frames", len(left)))
	return nil
}
