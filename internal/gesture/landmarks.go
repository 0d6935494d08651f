// Package gesture classifies rock-paper-scissors hand poses from landmarks
// and debounces the per-frame result into confirmed gesture events.
package gesture

import "github.com/ayusman/handrps/internal/detector"

// Landmark identifies one of the keypoints the classifier reads.
type Landmark int

// The keypoints the classifier reads. "Base" is the finger's knuckle (MCP).
const (
	Wrist Landmark = iota
	ThumbTip
	ThumbBase
	IndexTip
	IndexBase
	MiddleTip
	MiddleBase
	RingTip
	RingBase
	PinkyTip
	PinkyBase

	numLandmarks
)

var landmarkNames = [numLandmarks]string{
	"Wrist", "ThumbTip", "ThumbBase", "IndexTip", "IndexBase", "MiddleTip",
	"MiddleBase", "RingTip", "RingBase", "PinkyTip", "PinkyBase",
}

func (l Landmark) String() string {
	if l < 0 || l >= numLandmarks {
		return "Landmark(?)"
	}
	return landmarkNames[l]
}

// mediaPipeIndex maps each Landmark to its MediaPipe hand landmark index.
var mediaPipeIndex = [numLandmarks]int{
	Wrist:      detector.Wrist,
	ThumbTip:   detector.ThumbTip,
	ThumbBase:  detector.ThumbMCP,
	IndexTip:   detector.IndexTip,
	IndexBase:  detector.IndexMCP,
	MiddleTip:  detector.MiddleTip,
	MiddleBase: detector.MiddleMCP,
	RingTip:    detector.RingTip,
	RingBase:   detector.RingMCP,
	PinkyTip:   detector.PinkyTip,
	PinkyBase:  detector.PinkyMCP,
}

// Point is a position in normalized, mirrored image coordinates: both
// components in [0,1], origin top-left, y growing downward.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LandmarkSet is an immutable snapshot of one hand in one frame.
// The zero value holds no landmarks.
type LandmarkSet struct {
	points  [numLandmarks]Point
	present uint16
}

// NewLandmarkSet builds a set from the given points. Identities outside the
// known range are ignored.
func NewLandmarkSet(points map[Landmark]Point) LandmarkSet {
	var s LandmarkSet
	for l, p := range points {
		if l < 0 || l >= numLandmarks {
			continue
		}
		s.points[l] = p
		s.present |= 1 << l
	}
	return s
}

// FromHand extracts the classifier's keypoints from a detected hand. Points
// the detector did not report are left missing.
func FromHand(hand *detector.HandLandmarks) LandmarkSet {
	var s LandmarkSet
	if hand == nil {
		return s
	}
	for l := Landmark(0); l < numLandmarks; l++ {
		i := mediaPipeIndex[l]
		if !hand.Has(i) {
			continue
		}
		s.points[l] = Point{X: hand.Points[i].X, Y: hand.Points[i].Y}
		s.present |= 1 << l
	}
	return s
}

// Point returns the position of l and whether it is present.
func (s LandmarkSet) Point(l Landmark) (Point, bool) {
	if l < 0 || l >= numLandmarks || s.present&(1<<l) == 0 {
		return Point{}, false
	}
	return s.points[l], true
}

// Complete reports whether every landmark identity is present.
func (s LandmarkSet) Complete() bool {
	return s.present == 1<<numLandmarks-1
}

// With returns a copy of s with l moved to p.
func (s LandmarkSet) With(l Landmark, p Point) LandmarkSet {
	if l < 0 || l >= numLandmarks {
		return s
	}
	s.points[l] = p
	s.present |= 1 << l
	return s
}

// Without returns a copy of s with l removed.
func (s LandmarkSet) Without(l Landmark) LandmarkSet {
	if l < 0 || l >= numLandmarks {
		return s
	}
	s.points[l] = Point{}
	s.present &^= 1 << l
	return s
}
