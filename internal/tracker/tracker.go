// Package tracker runs the capture loop: it reads camera frames, mirrors
// them, detects the hand, classifies and stabilizes the pose, and publishes
// confirmed gestures and overlaid preview frames.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync/atomic"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/handrps/internal/capture"
	"github.com/ayusman/handrps/internal/detector"
	"github.com/ayusman/handrps/internal/gesture"
	"github.com/ayusman/handrps/internal/monitoring"
	"github.com/ayusman/handrps/internal/render"
)

// DefaultEventBuffer is the capacity of the confirmed-gesture channel.
const DefaultEventBuffer = 16

// ErrAlreadyStarted is returned by a second call to Run.
var ErrAlreadyStarted = errors.New("tracker already started")

// Config holds the loop settings.
type Config struct {
	BufferSize      int
	IdleFPS         int
	ActiveFPS       int
	IdleTimeout     time.Duration
	MotionThreshold float64
	EventBuffer     int
	// Mirror flips frames horizontally before detection. Classification
	// assumes a mirrored view, so only disable it for pre-flipped sources.
	Mirror bool
}

// DefaultConfig returns the tracker defaults.
func DefaultConfig() Config {
	return Config{
		BufferSize:      gesture.DefaultBufferSize,
		IdleFPS:         capture.IdleFPS,
		ActiveFPS:       capture.ActiveFPS,
		IdleTimeout:     2 * time.Second,
		MotionThreshold: 1.0,
		EventBuffer:     DefaultEventBuffer,
		Mirror:          true,
	}
}

// Frame is one rendered preview frame.
type Frame struct {
	Seq     uint64
	Time    time.Time
	JPEG    []byte
	Gesture gesture.Kind // classification of this frame alone
	Hand    bool         // a complete hand was found
}

// Stats is a point-in-time view of the loop counters.
type Stats struct {
	Frames  uint64 `json:"frames"`
	Events  uint64 `json:"events"`
	FPS     int    `json:"fps"`
	Active  bool   `json:"active"`
	Running bool   `json:"running"`
}

// Tracker owns the camera and detector for one session.
type Tracker struct {
	camera   capture.Camera
	detector detector.Detector
	cfg      Config

	// Status, if set before Run, returns extra HUD lines drawn on every frame.
	Status func() []string

	stab   *gesture.Stabilizer
	events chan gesture.Confirmed
	frames chan Frame

	started atomic.Bool
	running atomic.Bool
	nFrames atomic.Uint64
	nEvents atomic.Uint64
	fps     atomic.Int64
	active  atomic.Bool

	font  render.Font
	style render.Style
}

// New returns a Tracker reading from camera and detecting with det.
// Zero-valued Config fields take their defaults.
func New(camera capture.Camera, det detector.Detector, cfg Config) *Tracker {
	def := DefaultConfig()
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = def.BufferSize
	}
	if cfg.IdleFPS <= 0 {
		cfg.IdleFPS = def.IdleFPS
	}
	if cfg.ActiveFPS <= 0 {
		cfg.ActiveFPS = def.ActiveFPS
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = def.IdleTimeout
	}
	if cfg.MotionThreshold <= 0 {
		cfg.MotionThreshold = def.MotionThreshold
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = def.EventBuffer
	}

	return &Tracker{
		camera:   camera,
		detector: det,
		cfg:      cfg,
		stab:     gesture.NewStabilizer(cfg.BufferSize),
		events:   make(chan gesture.Confirmed, cfg.EventBuffer),
		frames:   make(chan Frame, 1),
		font:     render.DefaultFont(),
		style:    render.DefaultStyle(),
	}
}

// Events delivers confirmed gestures in order. It is closed when Run returns.
func (t *Tracker) Events() <-chan gesture.Confirmed {
	return t.events
}

// Frames delivers the latest rendered frame. Frames nobody reads in time are
// replaced by newer ones. It is closed when Run returns.
func (t *Tracker) Frames() <-chan Frame {
	return t.frames
}

// Stats returns the loop counters.
func (t *Tracker) Stats() Stats {
	return Stats{
		Frames:  t.nFrames.Load(),
		Events:  t.nEvents.Load(),
		FPS:     int(t.fps.Load()),
		Active:  t.active.Load(),
		Running: t.running.Load(),
	}
}

// Run opens the camera and processes frames until ctx is cancelled or the
// camera stops delivering. It returns nil on cancellation. A camera that
// cannot be opened is reported as capture.ErrCameraUnavailable before any
// event is sent. The camera is closed and both channels are closed on every
// return path. Run may be called only once.
func (t *Tracker) Run(ctx context.Context) (err error) {
	if !t.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	defer close(t.events)
	defer close(t.frames)

	if err := t.camera.Open(); err != nil {
		if !errors.Is(err, capture.ErrCameraUnavailable) {
			err = fmt.Errorf("%w: %v", capture.ErrCameraUnavailable, err)
		}
		monitoring.Logf("Could not open camera: %v", err)
		return err
	}
	defer t.camera.Close()

	t.running.Store(true)
	defer t.running.Store(false)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tracker: panic: %v", r)
			monitoring.Logf("Tracking stopped: %v", err)
		}
	}()

	motion := capture.NewMotionDetector(t.cfg.MotionThreshold)
	defer motion.Close()

	throttle := capture.NewThrottle(t.cfg.IdleFPS, t.cfg.ActiveFPS, t.cfg.IdleTimeout)
	t.camera.SetFPS(throttle.FPS())
	t.fps.Store(int64(throttle.FPS()))

	ticker := time.NewTicker(capture.Interval(throttle.FPS()))
	defer ticker.Stop()

	var seq uint64
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		frame, err := t.camera.ReadFrame()
		if err != nil {
			monitoring.Logf("Error reading frame: %v", err)
			return fmt.Errorf("read frame: %w", err)
		}
		seq++

		if t.cfg.Mirror {
			capture.Mirror(*frame, frame)
		}

		moved, _ := motion.Detect(frame)
		if fps, changed := throttle.Observe(moved, time.Now()); changed {
			t.camera.SetFPS(fps)
			ticker.Reset(capture.Interval(fps))
			t.fps.Store(int64(fps))
			t.active.Store(throttle.Active())
			if throttle.Active() {
				monitoring.Logf("Switched to active mode (%d fps)", fps)
			} else {
				monitoring.Logf("Switched to idle mode (%d fps)", fps)
			}
		}

		err = t.process(ctx, seq, frame)
		frame.Close()
		if err != nil {
			// Only cancellation while handing off an event gets here.
			return nil
		}
	}
}

// process classifies one mirrored frame, emits any confirmed gesture and
// publishes the rendered preview.
func (t *Tracker) process(ctx context.Context, seq uint64, frame *gocv.Mat) error {
	hands, err := t.detector.Detect(frame)
	if err != nil {
		monitoring.Logf("Error detecting hands: %v", err)
		hands = nil
	}

	var hand *detector.HandLandmarks
	if len(hands) > 0 {
		hand = &hands[0]
	}

	set := gesture.FromHand(hand)
	kind := gesture.Classify(set)
	wrist, _ := set.Point(gesture.Wrist)
	t.nFrames.Add(1)

	if c, ok := t.stab.ObserveFrame(seq, kind, wrist); ok {
		monitoring.Logf("Gesture confirmed: %s at (%.2f, %.2f)", c.Gesture, c.Wrist.X, c.Wrist.Y)
		select {
		case t.events <- c:
			t.nEvents.Add(1)
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	t.draw(frame, hand, set.Complete(), wrist)

	data, err := render.JPEG(*frame)
	if err != nil {
		monitoring.Logf("Error encoding frame: %v", err)
		return nil
	}
	t.publish(Frame{
		Seq:     seq,
		Time:    time.Now(),
		JPEG:    data,
		Gesture: kind,
		Hand:    set.Complete(),
	})
	return nil
}

func (t *Tracker) draw(frame *gocv.Mat, hand *detector.HandLandmarks, complete bool, wrist gesture.Point) {
	render.Hand(frame, hand, t.style)

	if last := t.stab.Last(); last != gesture.None && complete {
		org := image.Pt(int(wrist.X*float64(frame.Cols())), int(wrist.Y*float64(frame.Rows()))+30)
		render.Label(frame, last.String(), org, t.font)
	}

	if t.Status != nil {
		render.HUD(frame, t.Status(), t.font)
	}
}

// publish replaces any unread frame with f.
func (t *Tracker) publish(f Frame) {
	select {
	case t.frames <- f:
		return
	default:
	}
	select {
	case <-t.frames:
	default:
	}
	select {
	case t.frames <- f:
	default:
	}
}
