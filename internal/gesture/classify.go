package gesture

import (
	"encoding/json"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Kind is the per-frame classification result. The zero value is None.
type Kind int

const (
	// None means no recognizable pose.
	None Kind = iota
	Rock
	Paper
	Scissors
)

// Kinds lists the playable gestures.
var Kinds = []Kind{Rock, Paper, Scissors}

func (k Kind) String() string {
	switch k {
	case None:
		return "None"
	case Rock:
		return "Rock"
	case Paper:
		return "Paper"
	case Scissors:
		return "Scissors"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "None", "":
		return None, nil
	case "Rock":
		return Rock, nil
	case "Paper":
		return Paper, nil
	case "Scissors":
		return Scissors, nil
	}
	return None, fmt.Errorf("unknown gesture %q", s)
}

// MarshalJSON encodes the kind by name.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a kind name.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ScissorsSpread is the minimum index-to-middle fingertip distance, in
// normalized coordinates, that separates an open V from two fingers held
// together. The comparison is strict.
const ScissorsSpread = 0.08

// fingers pairs each non-thumb fingertip with its base knuckle.
var fingers = [4][2]Landmark{
	{IndexTip, IndexBase},
	{MiddleTip, MiddleBase},
	{RingTip, RingBase},
	{PinkyTip, PinkyBase},
}

// Classify maps one hand's landmarks to a pose.
//
// The rules assume the mirrored, y-down frame the tracker produces:
//   - Rock: every fingertip, thumb included, is below its base knuckle.
//   - Paper: the four fingers are extended, the thumb is extended, and the
//     thumb tip is above the wrist.
//   - Scissors: index and middle extended, ring and pinky not, and the index
//     and middle tips more than ScissorsSpread apart.
//
// A finger is extended when its tip is above both its knuckle and the wrist.
// Rules are tried in that order. An incomplete set classifies as None.
func Classify(s LandmarkSet) Kind {
	if !s.Complete() {
		return None
	}

	wrist := s.points[Wrist]
	thumbTip := s.points[ThumbTip]
	thumbBase := s.points[ThumbBase]

	var extended, curled [4]bool
	for i, f := range fingers {
		tip, base := s.points[f[0]], s.points[f[1]]
		extended[i] = tip.Y < base.Y && tip.Y < wrist.Y
		curled[i] = tip.Y > base.Y
	}
	index, middle, ring, pinky := 0, 1, 2, 3

	thumbCurled := thumbTip.Y > thumbBase.Y
	if thumbCurled && curled[index] && curled[middle] && curled[ring] && curled[pinky] {
		return Rock
	}

	if extended[index] && extended[middle] && extended[ring] && extended[pinky] &&
		thumbExtended(thumbTip, thumbBase, wrist) && thumbTip.Y < wrist.Y {
		return Paper
	}

	if extended[index] && extended[middle] && !extended[ring] && !extended[pinky] &&
		distance(s.points[IndexTip], s.points[MiddleTip]) > ScissorsSpread {
		return Scissors
	}

	return None
}

// thumbExtended checks the thumb sideways, falling back to the wrist for the
// other hand's mirror image.
func thumbExtended(tip, base, wrist Point) bool {
	if tip.X > base.X {
		return true
	}
	return tip.X < wrist.X
}

func distance(a, b Point) float64 {
	return floats.Distance([]float64{a.X, a.Y}, []float64{b.X, b.Y}, 2)
}
