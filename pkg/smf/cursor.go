package smf

import (
	"fmt"
	"io"

	"github.com/serifpersia/midistream/pkg/storage"
)

// cursorBufSize bounds how much of a chunk body is held in memory at once.
// Refills are clipped to the chunk's byte range, so a cursor never reads
// bytes that belong to a neighbouring chunk.
const cursorBufSize = 64

// Cursor provides bounded, buffered read access to one byte range of a
// stored file. It is the only type in the package that touches storage.
// All offsets are absolute file offsets.
type Cursor struct {
	f     storage.File
	start int64
	end   int64
	next  int64 // offset of the next unread byte
	buf   [cursorBufSize]byte
	fill  int
	pos   int
}

// NewCursor returns a cursor over the byte range [start, end) of f.
func NewCursor(f storage.File, start, end int64) *Cursor {
	return &Cursor{f: f, start: start, end: end, next: start}
}

// Offset reports the absolute offset of the next unread byte.
func (c *Cursor) Offset() int64 { return c.next }

// Remaining reports how many bytes are left before the range end.
func (c *Cursor) Remaining() int64 { return c.end - c.next }

// SeekTo repositions the cursor at the absolute offset off, dropping any
// buffered bytes. Seeking past the range end pins the cursor at the end and
// reports ErrTruncatedRead.
func (c *Cursor) SeekTo(off int64) error {
	c.fill, c.pos = 0, 0
	if off > c.end {
		c.next = c.end
		return fmt.Errorf("%w: seek to %d past chunk end %d", ErrTruncatedRead, off, c.end)
	}
	c.next = off
	return nil
}

// refill seeks the underlying file to the cursor position and reads up to
// cursorBufSize bytes, clipped to the range end. The file handle is shared
// between cursors, so every refill re-seeks explicitly.
func (c *Cursor) refill() error {
	c.fill, c.pos = 0, 0
	n := c.end - c.next
	if n <= 0 {
		return fmt.Errorf("%w: offset %d at chunk end %d", ErrTruncatedRead, c.next, c.end)
	}
	if n > cursorBufSize {
		n = cursorBufSize
	}
	if _, err := c.f.Seek(c.next, io.SeekStart); err != nil {
		return fmt.Errorf("%w: seek to %d: %v", ErrStorage, c.next, err)
	}
	read, err := io.ReadFull(c.f, c.buf[:n])
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			// The chunk declares more bytes than the file holds.
			if read == 0 {
				return fmt.Errorf("%w: unexpected EOF at offset %d", ErrTruncatedRead, c.next)
			}
		} else {
			return fmt.Errorf("%w: read at %d: %v", ErrStorage, c.next, err)
		}
	}
	c.fill = read
	return nil
}

// ReadU8 consumes one byte.
func (c *Cursor) ReadU8() (byte, error) {
	if c.pos >= c.fill {
		if err := c.refill(); err != nil {
			return 0, err
		}
	}
	b := c.buf[c.pos]
	c.pos++
	c.next++
	return b, nil
}

// PeekU8 returns the next byte without consuming it.
func (c *Cursor) PeekU8() (byte, error) {
	if c.pos >= c.fill {
		if err := c.refill(); err != nil {
			return 0, err
		}
	}
	return c.buf[c.pos], nil
}

// ReadU16BE consumes two bytes as a big-endian unsigned integer.
func (c *Cursor) ReadU16BE() (uint16, error) {
	hi, err := c.ReadU8()
	if err != nil {
		return 0, err
	}
	lo, err := c.ReadU8()
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

// ReadU32BE consumes four bytes as a big-endian unsigned integer.
func (c *Cursor) ReadU32BE() (uint32, error) {
	var v uint32
	for i := 0; i < 4; i++ {
		b, err := c.ReadU8()
		if err != nil {
			return 0, err
		}
		v = v<<8 | uint32(b)
	}
	return v, nil
}

// ReadVLQ consumes a variable-length quantity: seven payload bits per byte,
// big-endian, high bit as continuation flag. Quantities longer than four
// bytes are a hard parse error; an unbounded VLQ is an attacker-controlled
// growth vector on constrained memory.
func (c *Cursor) ReadVLQ() (uint32, error) {
	var v uint32
	for i := 0; ; i++ {
		if i >= 4 {
			return 0, fmt.Errorf("%w: continuation past byte 4 at offset %d", ErrMalformedVLQ, c.next)
		}
		b, err := c.ReadU8()
		if err != nil {
			return 0, err
		}
		v = v<<7 | uint32(b&0x7F)
		if b&0x80 == 0 {
			return v, nil
		}
	}
}
