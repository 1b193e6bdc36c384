package player

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerOrdersByDueThenTrack(t *testing.T) {
	s := newScheduler(4)
	s.Push(2, 10)
	s.Push(0, 10)
	s.Push(1, 5)
	s.Push(3, 10)

	want := []schedEntry{
		{due: 5, track: 1},
		{due: 10, track: 0},
		{due: 10, track: 2},
		{due: 10, track: 3},
	}
	for _, w := range want {
		track, due, ok := s.Pop()
		require.True(t, ok)
		assert.Equal(t, w.track, track)
		assert.Equal(t, w.due, due)
	}
	_, _, ok := s.Pop()
	assert.False(t, ok)
}

func TestSchedulerPeekDoesNotRemove(t *testing.T) {
	s := newScheduler(2)
	s.Push(0, 7)

	track, due, ok := s.Peek()
	require.True(t, ok)
	assert.Equal(t, 0, track)
	assert.Equal(t, uint64(7), due)
	assert.Equal(t, 1, s.Len())
}

func TestSchedulerPopOrderProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300

	properties := gopter.NewProperties(parameters)

	properties.Property("pop sequence is sorted by due then track", prop.ForAll(
		func(dues []uint8) bool {
			s := newScheduler(len(dues))
			for track, due := range dues {
				s.Push(track, uint64(due))
			}
			var prev schedEntry
			for i := 0; i < len(dues); i++ {
				track, due, ok := s.Pop()
				if !ok {
					return false
				}
				cur := schedEntry{due: due, track: track}
				if i > 0 && (cur.due < prev.due ||
					(cur.due == prev.due && cur.track < prev.track)) {
					return false
				}
				prev = cur
			}
			_, _, ok := s.Pop()
			return !ok
		},
		gen.SliceOf(gen.UInt8()),
	))

	properties.TestingRun(t)
}
