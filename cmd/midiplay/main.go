// Command midiplay replays a Standard MIDI File. Without a SoundFont it
// plays in real time against the system clock, logging every event as it
// fires. With -sf2 it renders the whole file offline through a software
// synthesizer into a WAV file, driving the player with a simulated clock.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/serifpersia/midistream/pkg/player"
	"github.com/serifpersia/midistream/pkg/storage"
)

var (
	inFlag      = flag.String("i", "", "Input midi file")
	sf2Flag     = flag.String("sf2", "", "SoundFont file; renders to WAV instead of real-time playback")
	outFlag     = flag.String("o", "out.wav", "Output WAV file (with -sf2)")
	rateFlag    = flag.Int("rate", 44100, "Sample rate for rendering (with -sf2)")
	verboseFlag = flag.Bool("v", false, "Enable debug logging")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -i file.mid [-sf2 font.sf2 -o out.wav]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *inFlag == "" {
		flag.Usage()
		os.Exit(2)
	}

	var log *zap.Logger
	var err error
	if *verboseFlag {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if *sf2Flag != "" {
		err = render(*inFlag, *sf2Flag, *outFlag, int32(*rateFlag), log)
	} else {
		err = playRealtime(*inFlag, log)
	}
	if err != nil {
		log.Fatal("playback failed", zap.Error(err))
	}
}

// playRealtime drives the player against the system monotonic clock at a
// one-millisecond cadence until the file finishes.
func playRealtime(name string, log *zap.Logger) error {
	store := storage.NewDir(filepath.Dir(name))
	p := player.New(store, storage.NewSystemClock(), &logSink{log: log}, log)

	if err := p.Load(filepath.Base(name)); err != nil {
		return err
	}
	defer p.Stop()

	if err := p.Play(); err != nil {
		return err
	}
	for p.State() == player.StatePlaying {
		if err := p.Advance(); err != nil {
			return err
		}
		time.Sleep(time.Millisecond)
	}
	return nil
}
