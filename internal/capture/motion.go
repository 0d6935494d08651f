package capture

import (
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

const (
	// BlurKernel is the Gaussian kernel applied before differencing.
	BlurKernel = 21
	// PixelDelta is the per-pixel gray level change that counts as motion.
	PixelDelta = 25
)

// MotionDetector compares each frame with the one before it and reports the
// share of pixels that changed.
type MotionDetector struct {
	mu        sync.Mutex
	threshold float64
	prev      gocv.Mat
	primed    bool
}

// NewMotionDetector returns a detector that fires when more than threshold
// percent of the pixels change between frames.
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{
		threshold: threshold,
		prev:      gocv.NewMat(),
	}
}

// Detect reports whether frame moved relative to the previous frame, and
// the percentage of changed pixels. The first frame only sets the baseline.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Pt(BlurKernel, BlurKernel), 0, 0, gocv.BorderDefault)

	if !m.primed {
		blurred.CopyTo(&m.prev)
		m.primed = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.prev, &diff)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(diff, &mask, PixelDelta, 255, gocv.ThresholdBinary)

	changed := float64(gocv.CountNonZero(mask)) / float64(mask.Rows()*mask.Cols()) * 100.0

	blurred.CopyTo(&m.prev)

	return changed > m.threshold, changed
}

// Reset drops the baseline so the next frame starts a fresh comparison.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release()
}

// Close releases the baseline Mat. The detector may be used again afterwards.
func (m *MotionDetector) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.release()
}

func (m *MotionDetector) release() {
	if !m.prev.Empty() {
		m.prev.Close()
		m.prev = gocv.NewMat()
	}
	m.primed = false
}

// SetThreshold changes the motion threshold. Values <= 0 are ignored.
func (m *MotionDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.threshold = threshold
}

// Throttle picks the capture rate from recent motion: ActiveFPS as soon as
// something moves, IdleFPS once nothing has moved for IdleTimeout. It starts
// idle. Not safe for concurrent use.
type Throttle struct {
	IdleFPS     int
	ActiveFPS   int
	IdleTimeout time.Duration

	active     bool
	lastMotion time.Time
}

// NewThrottle returns an idle Throttle.
func NewThrottle(idleFPS, activeFPS int, idleTimeout time.Duration) *Throttle {
	return &Throttle{
		IdleFPS:     idleFPS,
		ActiveFPS:   activeFPS,
		IdleTimeout: idleTimeout,
	}
}

// Observe records one frame's motion result at time now. It returns the rate
// to capture at and whether that rate just changed.
func (t *Throttle) Observe(motion bool, now time.Time) (int, bool) {
	switch {
	case motion:
		t.lastMotion = now
		if !t.active {
			t.active = true
			return t.ActiveFPS, true
		}
	case t.active && now.Sub(t.lastMotion) > t.IdleTimeout:
		t.active = false
		return t.IdleFPS, true
	}
	return t.FPS(), false
}

// Active reports whether the throttle is at the active rate.
func (t *Throttle) Active() bool {
	return t.active
}

// FPS returns the current rate.
func (t *Throttle) FPS() int {
	if t.active {
		return t.ActiveFPS
	}
	return t.IdleFPS
}

// Interval converts a frame rate into a ticker period. Rates <= 0 fall back
// to IdleFPS.
func Interval(fps int) time.Duration {
	if fps <= 0 {
		fps = IdleFPS
	}
	return time.Second / time.Duration(fps)
}
