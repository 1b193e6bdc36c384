package player

import "go.uber.org/zap"

// DefaultTempo is the tempo assumed until a tempo meta event is decoded:
// 500000 microseconds per quarter note, 120 BPM.
const DefaultTempo = 500000

// Timebase converts elapsed wall-clock time into elapsed MIDI ticks under
// the current tempo. All arithmetic is integer: the remainder of each
// conversion is carried in units of microseconds times ticksPerQuarter, so
// repeated conversions accumulate no rounding drift. Clock wraparound is
// absorbed by modular uint64 subtraction: a reading smaller than the last
// sync point still yields the correct interval.
type Timebase struct {
	ticksPerQuarter  uint32
	microsPerQuarter uint32

	syncMicros  uint64 // wall-clock reading at the last conversion
	frac        uint64 // unconverted remainder, micros * ticksPerQuarter
	startMicros uint64 // wall-clock reading at playback start
	pauseMicros uint64 // wall-clock reading when paused

	zeroTempoWarned bool
	log             *zap.Logger
}

// NewTimebase returns a timebase at the default tempo. ticksPerQuarter must
// be at least 1; the chunk scanner guarantees that.
func NewTimebase(ticksPerQuarter uint16, log *zap.Logger) *Timebase {
	return &Timebase{
		ticksPerQuarter:  uint32(ticksPerQuarter),
		microsPerQuarter: DefaultTempo,
		log:              log,
	}
}

// Reset rewinds the timebase to tick zero at the given clock reading and
// restores the default tempo.
func (t *Timebase) Reset(now uint64) {
	t.syncMicros = now
	t.startMicros = now
	t.frac = 0
	t.microsPerQuarter = DefaultTempo
	t.zeroTempoWarned = false
}

// Tempo reports the current tempo in microseconds per quarter note.
func (t *Timebase) Tempo() uint32 { return t.microsPerQuarter }

// SetTempo installs a new tempo. It applies to time elapsed after the call;
// time already converted keeps the old tempo.
func (t *Timebase) SetTempo(microsPerQuarter uint32) {
	if microsPerQuarter == 0 {
		t.warnZeroTempo()
		return
	}
	t.microsPerQuarter = microsPerQuarter
}

// Pause records the pause instant.
func (t *Timebase) Pause(now uint64) {
	t.pauseMicros = now
}

// Resume shifts the playback-start and last-sync references forward by the
// paused duration, so tick timing is unaffected by the pause length.
func (t *Timebase) Resume(now uint64) {
	paused := now - t.pauseMicros
	t.syncMicros += paused
	t.startMicros += paused
}

// AdvanceTicks converts the wall-clock time elapsed since the last sync
// point into whole ticks, capped at maxTicks, and moves the sync point
// forward by exactly the converted amount. Time beyond the cap stays in the
// remainder and is converted on a later call, under whatever tempo is in
// effect then; this is what lets the controller stop tick advancement at an
// undelivered tempo event and charge the rest at the new rate.
func (t *Timebase) AdvanceTicks(now uint64, maxTicks uint64) uint64 {
	if t.microsPerQuarter == 0 {
		// Frozen: consume no time, advance no ticks.
		t.warnZeroTempo()
		t.syncMicros = now
		return 0
	}
	elapsed := now - t.syncMicros
	num := elapsed*uint64(t.ticksPerQuarter) + t.frac
	ticks := num / uint64(t.microsPerQuarter)
	if ticks > maxTicks {
		ticks = maxTicks
	}
	t.frac = num - ticks*uint64(t.microsPerQuarter)
	t.syncMicros = now
	return ticks
}

func (t *Timebase) warnZeroTempo() {
	if !t.zeroTempoWarned {
		t.zeroTempoWarned = true
		t.log.Warn("zero tempo, tick advancement frozen")
	}
}
