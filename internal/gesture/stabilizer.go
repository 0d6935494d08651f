package gesture

// DefaultBufferSize is the number of recognized frames folded into one vote.
const DefaultBufferSize = 3

// Confirmed is a debounced gesture event.
type Confirmed struct {
	Gesture Kind   `json:"gesture"`
	Wrist   Point  `json:"wrist"` // wrist position in the frame that completed the vote
	Frame   uint64 `json:"frame"` // sequence number of that frame
}

// Stabilizer turns the per-frame classification stream of one tracking
// session into confirmed gesture events.
//
// Recognized frames are collected until the buffer holds size entries. The
// buffer's mode is then confirmed if it differs from the last confirmed
// gesture, and the buffer is emptied either way. A None frame empties the
// buffer and forgets the last confirmed gesture, so the same pose shown
// again after the hand drops out is reported again.
//
// Ties are broken by insertion order: the first value in the buffer to reach
// the highest count wins.
//
// A Stabilizer is owned by a single goroutine and is not safe for concurrent use.
type Stabilizer struct {
	size   int
	buffer []Kind
	last   Kind
}

// NewStabilizer returns a Stabilizer voting over size frames. A size of zero
// or less selects DefaultBufferSize.
func NewStabilizer(size int) *Stabilizer {
	if size <= 0 {
		size = DefaultBufferSize
	}
	return &Stabilizer{
		size:   size,
		buffer: make([]Kind, 0, size),
	}
}

// Size returns the vote window length.
func (s *Stabilizer) Size() int {
	return s.size
}

// Observe feeds one frame's classification. wrist is the hand's wrist
// position in that frame.
func (s *Stabilizer) Observe(g Kind, wrist Point) (Confirmed, bool) {
	return s.ObserveFrame(0, g, wrist)
}

// ObserveFrame is Observe with the frame's sequence number attached to any
// resulting event.
func (s *Stabilizer) ObserveFrame(frame uint64, g Kind, wrist Point) (Confirmed, bool) {
	if g == None {
		s.Reset()
		return Confirmed{}, false
	}

	s.buffer = append(s.buffer, g)
	if len(s.buffer) < s.size {
		return Confirmed{}, false
	}

	winner := mode(s.buffer)
	s.buffer = s.buffer[:0]

	if winner == s.last {
		return Confirmed{}, false
	}
	s.last = winner
	return Confirmed{Gesture: winner, Wrist: wrist, Frame: frame}, true
}

// Pending returns how many frames are buffered toward the next vote.
func (s *Stabilizer) Pending() int {
	return len(s.buffer)
}

// Last returns the last confirmed gesture, or None.
func (s *Stabilizer) Last() Kind {
	return s.last
}

// Reset clears the buffer and the last confirmed gesture.
func (s *Stabilizer) Reset() {
	s.buffer = s.buffer[:0]
	s.last = None
}

// mode returns the most frequent value in votes. On a tie the value whose
// first occurrence comes earliest wins. votes must not be empty.
func mode(votes []Kind) Kind {
	var (
		best      Kind
		bestCount int
	)
	for i, v := range votes {
		if seenBefore(votes[:i], v) {
			continue
		}
		n := 0
		for _, w := range votes[i:] {
			if w == v {
				n++
			}
		}
		if n > bestCount {
			best, bestCount = v, n
		}
	}
	return best
}

func seenBefore(votes []Kind, v Kind) bool {
	for _, w := range votes {
		if w == v {
			return true
		}
	}
	return false
}
