// Package player replays a Standard MIDI File from block storage in real
// time, emitting per-event callbacks at the correct simulated time. It reads
// only small bounded buffers and never blocks on real time itself: the host
// drives playback by calling Advance frequently.
package player

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/serifpersia/midistream/pkg/smf"
	"github.com/serifpersia/midistream/pkg/storage"
)

// State is the playback controller state.
type State int

const (
	StateStopped State = iota
	StatePlaying
	StatePaused
	StateFinished
	StateError
)

var stateNames = [...]string{
	StateStopped:  "STOPPED",
	StatePlaying:  "PLAYING",
	StatePaused:   "PAUSED",
	StateFinished: "FINISHED",
	StateError:    "ERROR",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "UNKNOWN"
}

var (
	// ErrNoFile is returned by Play when nothing is loaded.
	ErrNoFile = errors.New("player: no file loaded")
	// ErrErrorState is returned when playback is refused until the next
	// Load or Stop clears a session-fatal error.
	ErrErrorState = errors.New("player: in error state")
)

// trackState pairs a track's incremental decoder with the absolute tick at
// which its next undecoded event fires.
type trackState struct {
	reader  *smf.TrackReader
	dueTick uint64
}

// session is everything owned by one loaded file: the storage handle, the
// scanned chunk layout, the per-track cursors, the scheduler and the
// timebase. It is created by Load and destroyed by Stop.
type session struct {
	name   string
	file   storage.File
	header smf.Header
	ranges []smf.TrackRange

	tracks      []*trackState
	sched       *scheduler
	timebase    *Timebase
	currentTick uint64
}

// Player is the playback controller. It is not safe for concurrent use:
// exactly one goroutine drives Load/Play/Pause/Stop/Advance.
type Player struct {
	store storage.Storage
	clock storage.Clock
	sink  EventSink
	log   *zap.Logger

	state State
	sess  *session
}

// New returns a stopped player. A nil sink discards events, a nil clock
// selects the system monotonic clock and a nil logger disables logging.
func New(store storage.Storage, clock storage.Clock, sink EventSink, log *zap.Logger) *Player {
	if sink == nil {
		sink = NopSink{}
	}
	if clock == nil {
		clock = storage.NewSystemClock()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Player{store: store, clock: clock, sink: sink, log: log}
}

// Load opens and scans the named file: header fields and track byte ranges
// only, plus each track's first delta time. No event bodies are decoded. A
// previously loaded session is stopped first. Scan failures leave the
// player STOPPED with no file; they do not enter the ERROR state.
func (p *Player) Load(name string) error {
	p.Stop()

	f, err := p.store.Open(name)
	if err != nil {
		p.log.Error("open failed", zap.String("file", name), zap.Error(err))
		return fmt.Errorf("player: open %s: %w", name, err)
	}

	hdr, ranges, err := smf.ScanChunks(f, p.log)
	if err != nil {
		f.Close()
		p.log.Error("scan failed", zap.String("file", name), zap.Error(err))
		return err
	}

	sess := &session{
		name:     name,
		file:     f,
		header:   hdr,
		ranges:   ranges,
		timebase: NewTimebase(hdr.TicksPerQuarter, p.log),
	}
	if err := p.prepareTracks(sess); err != nil {
		f.Close()
		p.log.Error("prepare failed", zap.String("file", name), zap.Error(err))
		return err
	}

	p.sess = sess
	p.state = StateStopped
	p.log.Info("file loaded",
		zap.String("file", name),
		zap.Int("tracks", len(ranges)),
		zap.Uint16("ticksPerQuarter", hdr.TicksPerQuarter))
	return nil
}

// prepareTracks (re)creates every track cursor at its range start and reads
// the first delta time. A track that cannot produce even a delta is dropped
// with a warning; a storage failure aborts the whole preparation.
func (p *Player) prepareTracks(sess *session) error {
	sess.tracks = make([]*trackState, len(sess.ranges))
	sess.sched = newScheduler(len(sess.ranges))
	for i, r := range sess.ranges {
		st := &trackState{reader: smf.NewTrackReader(sess.file, r, i, p.log)}
		sess.tracks[i] = st
		delta, err := st.reader.ReadDelta()
		if err != nil {
			if errors.Is(err, smf.ErrStorage) {
				return err
			}
			p.log.Warn("dropping unreadable track", zap.Int("track", i), zap.Error(err))
			continue
		}
		st.dueTick = uint64(delta)
		sess.sched.Push(i, st.dueTick)
	}
	return nil
}

// Play starts playback from the beginning, or resumes when paused.
// From STOPPED or FINISHED every track cursor is reset to its range start,
// first deltas are re-read and the tick counter returns to zero. From
// PAUSED only the time references shift; no reparse happens. Calling Play
// while already PLAYING is a warned no-op.
func (p *Player) Play() error {
	switch p.state {
	case StatePlaying:
		p.log.Warn("already playing, ignoring play")
		return nil

	case StatePaused:
		now := p.clock.Micros()
		p.sess.timebase.Resume(now)
		p.state = StatePlaying
		p.log.Info("playback resumed", zap.Uint64("tick", p.sess.currentTick))
		return nil

	case StateError:
		p.log.Error("play refused in error state")
		return ErrErrorState

	default: // StateStopped, StateFinished
		if p.sess == nil {
			p.log.Error("play with no file loaded")
			return ErrNoFile
		}
		if err := p.prepareTracks(p.sess); err != nil {
			p.enterError(err)
			return err
		}
		now := p.clock.Micros()
		p.sess.timebase.Reset(now)
		p.sess.currentTick = 0
		if p.sess.sched.Len() == 0 {
			p.log.Info("no events in any track, finishing immediately")
			p.state = StatePlaying
			p.finish()
			return nil
		}
		p.state = StatePlaying
		p.log.Info("playback started",
			zap.String("file", p.sess.name),
			zap.Uint32("tempo", p.sess.timebase.Tempo()))
		return nil
	}
}

// Pause suspends tick advancement. Only valid while PLAYING.
func (p *Player) Pause() {
	if p.state != StatePlaying {
		p.log.Warn("pause ignored", zap.Stringer("state", p.state))
		return
	}
	p.sess.timebase.Pause(p.clock.Micros())
	p.state = StatePaused
	p.log.Info("playback paused", zap.Uint64("tick", p.sess.currentTick))
}

// Resume is an alias for Play from the paused state.
func (p *Player) Resume() {
	if p.state == StatePaused {
		p.Play()
	}
}

// Stop halts playback from any state, releases the storage handle and
// drops all parser state. It always succeeds.
func (p *Player) Stop() {
	if p.sess != nil {
		p.log.Info("stopping playback", zap.String("file", p.sess.name))
		p.sess.file.Close()
		p.sess = nil
	}
	p.state = StateStopped
}

// Advance performs one step of the driving loop. It must be called
// frequently while playing. It converts elapsed wall-clock time into ticks
// and delivers, in scheduler order, every event due at or before the
// current simulated tick, then returns. It never blocks on real time.
// Only session-fatal storage failures return an error; they move the
// player to the ERROR state.
func (p *Player) Advance() error {
	if p.state != StatePlaying {
		return nil
	}
	now := p.clock.Micros()
	sess := p.sess

	for {
		track, due, ok := sess.sched.Peek()
		if !ok {
			p.finish()
			return nil
		}
		if due > sess.currentTick {
			// Never advance the tick counter past an undelivered
			// event: tempo changes at that event must not apply to
			// ticks before it.
			sess.currentTick += sess.timebase.AdvanceTicks(now, due-sess.currentTick)
			if sess.currentTick < due {
				return nil
			}
		}
		sess.sched.Pop()
		if err := p.deliver(track); err != nil {
			p.enterError(err)
			return err
		}
	}
}

// deliver decodes one event from the given track, emits it to the sink,
// and re-schedules the track at its next due tick unless it finished.
func (p *Player) deliver(track int) error {
	sess := p.sess
	st := sess.tracks[track]
	if st.reader.Finished() {
		p.log.Debug("skipping finished track", zap.Int("track", track))
		return nil
	}

	ev, err := st.reader.ReadEvent()
	if err != nil {
		if errors.Is(err, smf.ErrStorage) {
			return err
		}
		p.log.Warn("decode failed, dropping track", zap.Int("track", track), zap.Error(err))
		return nil
	}

	switch ev.Kind {
	case smf.KindNoteOn:
		p.sink.NoteOn(ev.Channel, ev.Data1, ev.Data2)
	case smf.KindNoteOff:
		p.sink.NoteOff(ev.Channel, ev.Data1, ev.Data2)
	case smf.KindControlChange:
		p.sink.ControlChange(ev.Channel, ev.Data1, ev.Data2)
	case smf.KindProgramChange:
		p.sink.ProgramChange(ev.Channel, ev.Data1)
	case smf.KindPitchBend:
		p.sink.PitchBend(ev.Channel, ev.Bend)
	case smf.KindTempo:
		sess.timebase.SetTempo(ev.Tempo)
		p.sink.TempoChange(ev.Tempo)
		p.log.Debug("tempo change",
			zap.Uint32("microsPerQuarter", ev.Tempo),
			zap.Uint64("tick", sess.currentTick))
	case smf.KindTimeSignature:
		p.sink.TimeSignature(ev.TimeSig)
	case smf.KindEndOfTrack:
		p.sink.EndOfTrack(track)
		p.log.Debug("end of track", zap.Int("track", track), zap.Uint64("tick", sess.currentTick))
	case smf.KindMeta:
		if ms, ok := p.sink.(MetaSink); ok && ev.Meta != nil {
			ms.MetaEvent(track, ev.MetaType, ev.Meta)
		}
	}

	if st.reader.Finished() {
		return nil
	}
	delta, err := st.reader.ReadDelta()
	if err != nil {
		if errors.Is(err, smf.ErrStorage) {
			return err
		}
		p.log.Warn("track ended reading delta", zap.Int("track", track), zap.Error(err))
		return nil
	}
	st.dueTick += uint64(delta)
	sess.sched.Push(track, st.dueTick)
	return nil
}

// finish fires the completion notification exactly once.
func (p *Player) finish() {
	if p.state != StatePlaying {
		return
	}
	p.state = StateFinished
	p.log.Info("playback complete", zap.Uint64("tick", p.sess.currentTick))
	p.sink.PlaybackComplete()
}

func (p *Player) enterError(err error) {
	p.state = StateError
	p.log.Error("session-fatal error, playback halted", zap.Error(err))
}

// State reports the controller state.
func (p *Player) State() State { return p.state }

// IsPlaying reports whether the player is in the PLAYING state.
func (p *Player) IsPlaying() bool { return p.state == StatePlaying }

// IsPaused reports whether the player is in the PAUSED state.
func (p *Player) IsPaused() bool { return p.state == StatePaused }

// CurrentTick reports the current playback position in MIDI ticks.
func (p *Player) CurrentTick() uint64 {
	if p.sess == nil {
		return 0
	}
	return p.sess.currentTick
}

// Tempo reports the current tempo in microseconds per quarter note.
func (p *Player) Tempo() uint32 {
	if p.sess == nil {
		return DefaultTempo
	}
	return p.sess.timebase.Tempo()
}

// Header returns the scanned header of the loaded file.
func (p *Player) Header() (smf.Header, bool) {
	if p.sess == nil {
		return smf.Header{}, false
	}
	return p.sess.header, true
}
