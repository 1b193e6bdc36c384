package storage

import "time"

// Clock is a monotonic microsecond counter. Readings are fixed-width
// unsigned and wrap at the maximum value; consumers must compute elapsed
// time with modular subtraction so a wrapped (smaller) reading still yields
// the correct interval.
type Clock interface {
	Micros() uint64
}

// SystemClock reads the process monotonic clock.
type SystemClock struct {
	base time.Time
}

func NewSystemClock() *SystemClock {
	return &SystemClock{base: time.Now()}
}

func (c *SystemClock) Micros() uint64 {
	return uint64(time.Since(c.base).Microseconds())
}
