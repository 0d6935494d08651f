// Package game plays best-of-N rock-paper-scissors against the computer,
// fed by confirmed gestures from the tracker.
package game

import (
	"encoding/json"
	"fmt"
	"math/rand"

	"github.com/ayusman/handrps/internal/gesture"
)

// Outcome is the result of one round from the player's point of view.
type Outcome int

const (
	Tie Outcome = iota
	PlayerWins
	ComputerWins
)

func (o Outcome) String() string {
	switch o {
	case Tie:
		return "tie"
	case PlayerWins:
		return "player"
	case ComputerWins:
		return "computer"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

func (o *Outcome) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "tie":
		*o = Tie
	case "player":
		*o = PlayerWins
	case "computer":
		*o = ComputerWins
	default:
		return fmt.Errorf("unknown outcome %q", s)
	}
	return nil
}

// beats maps each gesture to the one it defeats.
var beats = map[gesture.Kind]gesture.Kind{
	gesture.Rock:     gesture.Scissors,
	gesture.Scissors: gesture.Paper,
	gesture.Paper:    gesture.Rock,
}

// Beats reports whether a defeats b.
func Beats(a, b gesture.Kind) bool {
	loser, ok := beats[a]
	return ok && loser == b
}

// Decide scores one round.
func Decide(player, computer gesture.Kind) Outcome {
	switch {
	case player == computer:
		return Tie
	case Beats(player, computer):
		return PlayerWins
	default:
		return ComputerWins
	}
}

// Picker chooses the computer's gesture for a round.
type Picker interface {
	Pick() gesture.Kind
}

// PickerFunc adapts a function to Picker.
type PickerFunc func() gesture.Kind

func (f PickerFunc) Pick() gesture.Kind { return f() }

// RandomPicker picks uniformly among the playable gestures.
func RandomPicker() Picker {
	return PickerFunc(func() gesture.Kind {
		return gesture.Kinds[rand.Intn(len(gesture.Kinds))]
	})
}

// FixedPicker returns kinds in order, starting over after the last one.
func FixedPicker(kinds ...gesture.Kind) Picker {
	if len(kinds) == 0 {
		return RandomPicker()
	}
	i := 0
	return PickerFunc(func() gesture.Kind {
		k := kinds[i%len(kinds)]
		i++
		return k
	})
}
