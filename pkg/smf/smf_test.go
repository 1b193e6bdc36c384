package smf

import (
	"errors"
	"io"

	"github.com/serifpersia/midistream/pkg/storage"
)

// trackBuilder assembles MTrk chunk bodies for tests.
type trackBuilder struct {
	b []byte
}

func (t *trackBuilder) delta(v uint32) *trackBuilder {
	t.b = AppendVLQ(t.b, v)
	return t
}

func (t *trackBuilder) raw(bytes ...byte) *trackBuilder {
	t.b = append(t.b, bytes...)
	return t
}

func (t *trackBuilder) eot() *trackBuilder {
	return t.raw(0xFF, 0x2F, 0x00)
}

func appendU16BE(b []byte, v uint16) []byte {
	return append(b, byte(v>>8), byte(v))
}

func appendU32BE(b []byte, v uint32) []byte {
	return append(b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// buildFile assembles a complete SMF image from track bodies.
func buildFile(division uint16, tracks ...[]byte) []byte {
	b := []byte{'M', 'T', 'h', 'd', 0, 0, 0, 6}
	b = appendU16BE(b, 1)
	b = appendU16BE(b, uint16(len(tracks)))
	b = appendU16BE(b, division)
	for _, t := range tracks {
		b = append(b, 'M', 'T', 'r', 'k')
		b = appendU32BE(b, uint32(len(t)))
		b = append(b, t...)
	}
	return b
}

func openBytes(data []byte) storage.File {
	mem := storage.NewMem()
	mem.Put("test.mid", data)
	f, err := mem.Open("test.mid")
	if err != nil {
		panic(err)
	}
	return f
}

// failFile serves data until failAfter read calls have happened, then
// returns a device error. Used to provoke ErrStorage paths.
type failFile struct {
	data      []byte
	pos       int64
	reads     int
	failAfter int
}

var errDevice = errors.New("device gone")

func (f *failFile) Read(p []byte) (int, error) {
	f.reads++
	if f.reads > f.failAfter {
		return 0, errDevice
	}
	if f.pos >= int64(len(f.data)) {
		return 0, io.EOF
	}
	n := copy(p, f.data[f.pos:])
	f.pos += int64(n)
	return n, nil
}

func (f *failFile) Seek(off int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		f.pos = off
	case io.SeekCurrent:
		f.pos += off
	case io.SeekEnd:
		f.pos = int64(len(f.data)) + off
	}
	return f.pos, nil
}

func (f *failFile) Close() error { return nil }

func (f *failFile) Size() (int64, error) { return int64(len(f.data)), nil }
