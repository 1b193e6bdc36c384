// Command midiscan walks a Standard MIDI File without playing it: it logs
// the header, the track chunk layout and every decoded event with its
// absolute tick. Useful for checking what the player will see.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/serifpersia/midistream/pkg/smf"
	"github.com/serifpersia/midistream/pkg/storage"
)

var (
	inFlag      = flag.String("i", "", "Input midi file")
	verboseFlag = flag.Bool("v", false, "Enable debug logging")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -i file.mid\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *inFlag == "" {
		flag.Usage()
		os.Exit(2)
	}

	log, err := newLogger(*verboseFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := scan(*inFlag, log); err != nil {
		log.Fatal("scan failed", zap.Error(err))
	}
}

func scan(name string, log *zap.Logger) error {
	store := storage.NewDir(filepath.Dir(name))
	f, err := store.Open(filepath.Base(name))
	if err != nil {
		return err
	}
	defer f.Close()

	hdr, ranges, err := smf.ScanChunks(f, log)
	if err != nil {
		return err
	}
	log.Info("header",
		zap.Uint16("format", hdr.Format),
		zap.Uint16("declaredTracks", hdr.TrackCount),
		zap.Uint16("division", hdr.Division),
		zap.Uint16("ticksPerQuarter", hdr.TicksPerQuarter),
		zap.Bool("smpte", hdr.SMPTE))

	for i, r := range ranges {
		log.Info("track chunk",
			zap.Int("track", i),
			zap.Int64("start", r.Start),
			zap.Int64("end", r.End))
		dumpTrack(f, r, i, log)
	}
	return nil
}
