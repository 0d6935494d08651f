package gesture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// feed runs frames through s and returns the confirmed gestures in order.
func feed(s *Stabilizer, frames ...Kind) []Kind {
	var got []Kind
	for _, g := range frames {
		if c, ok := s.Observe(g, Point{}); ok {
			got = append(got, c.Gesture)
		}
	}
	return got
}

func repeat(g Kind, n int) []Kind {
	out := make([]Kind, n)
	for i := range out {
		out[i] = g
	}
	return out
}

func TestStabilizer_Sequences(t *testing.T) {
	tests := []struct {
		name   string
		frames []Kind
		want   []Kind
	}{
		{
			name:   "three in a row confirms once",
			frames: []Kind{Rock, Rock, Rock},
			want:   []Kind{Rock},
		},
		{
			name:   "held pose is not repeated",
			frames: repeat(Rock, 6),
			want:   []Kind{Rock},
		},
		{
			name:   "short run emits nothing",
			frames: []Kind{Rock, Rock},
			want:   nil,
		},
		{
			name:   "hand drop between poses",
			frames: []Kind{Rock, Rock, Rock, None, Paper, Paper, Paper},
			want:   []Kind{Rock, Paper},
		},
		{
			name:   "same pose after hand drop is reported again",
			frames: []Kind{Rock, Rock, Rock, None, Rock, Rock, Rock},
			want:   []Kind{Rock, Rock},
		},
		{
			name:   "majority wins",
			frames: []Kind{Rock, Paper, Rock},
			want:   []Kind{Rock},
		},
		{
			name:   "three-way tie goes to the first vote",
			frames: []Kind{Rock, Paper, Scissors},
			want:   []Kind{Rock},
		},
		{
			name:   "three-way tie in another order",
			frames: []Kind{Paper, Scissors, Rock},
			want:   []Kind{Paper},
		},
		{
			name:   "None mid-window discards the partial vote",
			frames: []Kind{Paper, Paper, None, Scissors, Scissors, Scissors},
			want:   []Kind{Scissors},
		},
		{
			name:   "direct switch without a hand drop",
			frames: []Kind{Rock, Rock, Rock, Paper, Paper, Paper},
			want:   []Kind{Rock, Paper},
		},
		{
			name:   "mixed windows",
			frames: []Kind{Rock, Rock, Paper, Paper, Paper, Rock},
			want:   []Kind{Rock, Paper},
		},
		{
			name:   "only None",
			frames: repeat(None, 5),
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStabilizer(3)
			assert.Equal(t, tt.want, feed(s, tt.frames...))
		})
	}
}

func TestStabilizer_ConstantStreamEmitsAtThirdFrame(t *testing.T) {
	for _, g := range Kinds {
		t.Run(g.String(), func(t *testing.T) {
			s := NewStabilizer(3)
			for i := 1; i <= 9; i++ {
				c, ok := s.Observe(g, Point{})
				if i == 3 {
					require.True(t, ok, "frame %d should confirm", i)
					assert.Equal(t, g, c.Gesture)
				} else {
					assert.False(t, ok, "frame %d should not confirm", i)
				}
			}
		})
	}
}

func TestStabilizer_BufferNeverFills(t *testing.T) {
	s := NewStabilizer(3)
	frames := []Kind{Rock, Paper, Paper, Scissors, None, Rock, Rock, Rock, Rock, Scissors}
	for _, g := range frames {
		s.Observe(g, Point{})
		assert.Less(t, s.Pending(), s.Size())
	}
}

func TestStabilizer_NoneResets(t *testing.T) {
	s := NewStabilizer(3)
	feed(s, Rock, Rock, Rock, Paper)
	require.Equal(t, Rock, s.Last())
	require.Equal(t, 1, s.Pending())

	_, ok := s.Observe(None, Point{})

	assert.False(t, ok)
	assert.Equal(t, None, s.Last())
	assert.Equal(t, 0, s.Pending())
}

func TestStabilizer_EventCarriesCompletingFrame(t *testing.T) {
	s := NewStabilizer(3)
	s.ObserveFrame(10, Scissors, Point{X: 0.1, Y: 0.1})
	s.ObserveFrame(11, Scissors, Point{X: 0.2, Y: 0.2})

	c, ok := s.ObserveFrame(12, Scissors, Point{X: 0.3, Y: 0.4})

	require.True(t, ok)
	assert.Equal(t, Confirmed{Gesture: Scissors, Wrist: Point{X: 0.3, Y: 0.4}, Frame: 12}, c)
}

func TestStabilizer_Size(t *testing.T) {
	assert.Equal(t, DefaultBufferSize, NewStabilizer(0).Size())
	assert.Equal(t, DefaultBufferSize, NewStabilizer(-4).Size())

	s := NewStabilizer(5)
	assert.Equal(t, 5, s.Size())
	assert.Empty(t, feed(s, repeat(Paper, 4)...))
	assert.Equal(t, []Kind{Paper}, feed(s, Paper))
}

func TestStabilizer_Reset(t *testing.T) {
	s := NewStabilizer(3)
	feed(s, Rock, Rock, Rock, Rock)

	s.Reset()

	assert.Equal(t, None, s.Last())
	assert.Equal(t, 0, s.Pending())
	assert.Equal(t, []Kind{Rock}, feed(s, Rock, Rock, Rock))
}

func TestMode(t *testing.T) {
	tests := []struct {
		votes []Kind
		want  Kind
	}{
		{votes: []Kind{Scissors}, want: Scissors},
		{votes: []Kind{Paper, Rock, Rock}, want: Rock},
		{votes: []Kind{Paper, Rock, Paper, Rock}, want: Paper},
		{votes: []Kind{Scissors, Rock, Paper, Rock, Scissors}, want: Scissors},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, mode(tt.votes), "mode(%v)", tt.votes)
	}
}
