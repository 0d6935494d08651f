// Package detector supplies per-frame hand landmarks to the gesture pipeline.
package detector

// Hand landmark indices in MediaPipe order.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Connections lists the landmark pairs joined when drawing a hand skeleton.
var Connections = [][2]int{
	{Wrist, ThumbCMC}, {ThumbCMC, ThumbMCP}, {ThumbMCP, ThumbIP}, {ThumbIP, ThumbTip},
	{Wrist, IndexMCP}, {IndexMCP, IndexPIP}, {IndexPIP, IndexDIP}, {IndexDIP, IndexTip},
	{IndexMCP, MiddleMCP}, {MiddleMCP, MiddlePIP}, {MiddlePIP, MiddleDIP}, {MiddleDIP, MiddleTip},
	{MiddleMCP, RingMCP}, {RingMCP, RingPIP}, {RingPIP, RingDIP}, {RingDIP, RingTip},
	{RingMCP, PinkyMCP}, {Wrist, PinkyMCP}, {PinkyMCP, PinkyPIP}, {PinkyPIP, PinkyDIP}, {PinkyDIP, PinkyTip},
}

// Point3D is a landmark position. X and Y are normalized to [0,1] image
// coordinates with the origin top-left; Z is MediaPipe's relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks is one detected hand.
//
// Count is the number of leading Points the detector actually reported.
// A well-formed hand has Count == NumLandmarks; anything less is a partial
// detection and the gesture classifier refuses it.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Count      int                   `json:"count"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Complete reports whether every landmark was reported.
func (h *HandLandmarks) Complete() bool {
	return h != nil && h.Count >= NumLandmarks
}

// Has reports whether landmark i was reported.
func (h *HandLandmarks) Has(i int) bool {
	return h != nil && i >= 0 && i < h.Count && i < NumLandmarks
}

// WristPoint returns the wrist position, the stable anchor used for HUD
// placement downstream.
func (h *HandLandmarks) WristPoint() Point3D {
	return h.Points[Wrist]
}
