package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a scripted Detector for tests and for running without the
// MediaPipe service.
//
// With a sequence set, each Detect call returns the next entry; once the
// sequence is exhausted it keeps returning the fixed hands from SetHands.
type MockDetector struct {
	mu       sync.Mutex
	hands    []HandLandmarks
	sequence [][]HandLandmarks
	err      error
	calls    int
	closed   bool
}

// NewMockDetector creates a MockDetector that reports no hands.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands returned once any sequence is used up.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetSequence scripts per-frame results. A nil entry is a frame with no hand.
func (m *MockDetector) SetSequence(frames [][]HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = frames
}

// SetError makes every Detect call fail with err.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the next scripted result.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.sequence) > 0 {
		next := m.sequence[0]
		m.sequence = m.sequence[1:]
		return next, nil
	}
	return m.hands, nil
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Remaining returns the number of scripted frames not yet consumed.
func (m *MockDetector) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sequence)
}

// Close marks the detector closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Repeat returns n frames each holding hand.
func Repeat(hand HandLandmarks, n int) [][]HandLandmarks {
	frames := make([][]HandLandmarks, n)
	for i := range frames {
		frames[i] = []HandLandmarks{hand}
	}
	return frames
}

// RockLandmarks returns a right hand in a closed fist as seen in the
// mirrored preview: every fingertip sits below its base knuckle.
func RockLandmarks() HandLandmarks {
	lm := HandLandmarks{Handedness: "Right", Score: 0.95, Count: NumLandmarks}

	lm.Points[Wrist] = Point3D{X: 0.50, Y: 0.80}

	lm.Points[ThumbCMC] = Point3D{X: 0.56, Y: 0.76, Z: -0.01}
	lm.Points[ThumbMCP] = Point3D{X: 0.59, Y: 0.70, Z: -0.02}
	lm.Points[ThumbIP] = Point3D{X: 0.58, Y: 0.72, Z: -0.03}
	lm.Points[ThumbTip] = Point3D{X: 0.55, Y: 0.74, Z: -0.03}

	lm.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.64}
	lm.Points[IndexPIP] = Point3D{X: 0.56, Y: 0.62, Z: -0.05}
	lm.Points[IndexDIP] = Point3D{X: 0.55, Y: 0.67, Z: -0.05}
	lm.Points[IndexTip] = Point3D{X: 0.54, Y: 0.69, Z: -0.03}

	lm.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.63}
	lm.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.61, Z: -0.05}
	lm.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.66, Z: -0.05}
	lm.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.68, Z: -0.03}

	lm.Points[RingMCP] = Point3D{X: 0.46, Y: 0.64}
	lm.Points[RingPIP] = Point3D{X: 0.46, Y: 0.62, Z: -0.05}
	lm.Points[RingDIP] = Point3D{X: 0.46, Y: 0.67, Z: -0.05}
	lm.Points[RingTip] = Point3D{X: 0.46, Y: 0.69, Z: -0.03}

	lm.Points[PinkyMCP] = Point3D{X: 0.42, Y: 0.66}
	lm.Points[PinkyPIP] = Point3D{X: 0.42, Y: 0.65, Z: -0.05}
	lm.Points[PinkyDIP] = Point3D{X: 0.42, Y: 0.69, Z: -0.05}
	lm.Points[PinkyTip] = Point3D{X: 0.42, Y: 0.71, Z: -0.03}

	return lm
}

// PaperLandmarks returns an open right hand: four fingers up, thumb out to
// the side and above the wrist.
func PaperLandmarks() HandLandmarks {
	lm := HandLandmarks{Handedness: "Right", Score: 0.95, Count: NumLandmarks}

	lm.Points[Wrist] = Point3D{X: 0.50, Y: 0.80}

	lm.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.75, Z: 0.02}
	lm.Points[ThumbMCP] = Point3D{X: 0.62, Y: 0.70, Z: 0.03}
	lm.Points[ThumbIP] = Point3D{X: 0.68, Y: 0.65, Z: 0.03}
	lm.Points[ThumbTip] = Point3D{X: 0.73, Y: 0.60, Z: 0.03}

	lm.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.68}
	lm.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.55}
	lm.Points[IndexDIP] = Point3D{X: 0.58, Y: 0.45}
	lm.Points[IndexTip] = Point3D{X: 0.58, Y: 0.35}

	lm.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.66}
	lm.Points[MiddlePIP] = Point3D{X: 0.50, Y: 0.52}
	lm.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.40}
	lm.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.28}

	lm.Points[RingMCP] = Point3D{X: 0.45, Y: 0.68}
	lm.Points[RingPIP] = Point3D{X: 0.43, Y: 0.55}
	lm.Points[RingDIP] = Point3D{X: 0.42, Y: 0.45}
	lm.Points[RingTip] = Point3D{X: 0.42, Y: 0.35}

	lm.Points[PinkyMCP] = Point3D{X: 0.40, Y: 0.70}
	lm.Points[PinkyPIP] = Point3D{X: 0.37, Y: 0.60}
	lm.Points[PinkyDIP] = Point3D{X: 0.35, Y: 0.50}
	lm.Points[PinkyTip] = Point3D{X: 0.34, Y: 0.42}

	return lm
}

// ScissorsLandmarks returns a right hand with index and middle fingers up in
// an open V and the ring and pinky folded.
func ScissorsLandmarks() HandLandmarks {
	lm := RockLandmarks()

	lm.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.64}
	lm.Points[IndexPIP] = Point3D{X: 0.57, Y: 0.52}
	lm.Points[IndexDIP] = Point3D{X: 0.60, Y: 0.43}
	lm.Points[IndexTip] = Point3D{X: 0.62, Y: 0.35}

	lm.Points[MiddleMCP] = Point3D{X: 0.50, Y: 0.63}
	lm.Points[MiddlePIP] = Point3D{X: 0.49, Y: 0.50}
	lm.Points[MiddleDIP] = Point3D{X: 0.48, Y: 0.39}
	lm.Points[MiddleTip] = Point3D{X: 0.48, Y: 0.30}

	return lm
}
