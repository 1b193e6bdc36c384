package player

import "container/heap"

// scheduler orders the non-finished tracks by the tick of their next
// undecoded event. Ties resolve by ascending track index so simultaneous
// events across tracks interleave deterministically.
type scheduler struct {
	q entryHeap
}

type schedEntry struct {
	due   uint64
	track int
}

func newScheduler(capacity int) *scheduler {
	return &scheduler{q: make(entryHeap, 0, capacity)}
}

func (s *scheduler) Len() int { return len(s.q) }

func (s *scheduler) Push(track int, due uint64) {
	heap.Push(&s.q, schedEntry{due: due, track: track})
}

// Peek returns the earliest-due track without removing it.
func (s *scheduler) Peek() (track int, due uint64, ok bool) {
	if len(s.q) == 0 {
		return 0, 0, false
	}
	e := s.q[0]
	return e.track, e.due, true
}

// Pop removes and returns the earliest-due track.
func (s *scheduler) Pop() (track int, due uint64, ok bool) {
	if len(s.q) == 0 {
		return 0, 0, false
	}
	e := heap.Pop(&s.q).(schedEntry)
	return e.track, e.due, true
}

type entryHeap []schedEntry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].due != h[j].due {
		return h[i].due < h[j].due
	}
	return h[i].track < h[j].track
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) { *h = append(*h, x.(schedEntry)) }

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}
