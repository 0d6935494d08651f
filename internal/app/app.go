// Package app wires the camera tracker, the game runner, the match store and
// the server feeds into one running game.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/ayusman/handrps/internal/capture"
	"github.com/ayusman/handrps/internal/config"
	"github.com/ayusman/handrps/internal/detector"
	"github.com/ayusman/handrps/internal/game"
	"github.com/ayusman/handrps/internal/gesture"
	"github.com/ayusman/handrps/internal/monitoring"
	"github.com/ayusman/handrps/internal/server"
	"github.com/ayusman/handrps/internal/store"
	"github.com/ayusman/handrps/internal/tracker"
)

// Config holds configuration options for the application.
type Config struct {
	Settings config.Config
	// Store persists matches when set.
	Store *store.Store
	// Camera and Detector override the devices built from Settings.
	Camera   capture.Camera
	Detector detector.Detector
	// Picker chooses the computer's gesture. Nil picks at random.
	Picker game.Picker
	// TickInterval is the countdown step. Zero means one second.
	TickInterval time.Duration
}

// Status is what the tray shows.
type Status struct {
	LastGesture gesture.Kind
	Game        game.Snapshot
}

// App is the running game.
type App struct {
	config   Config
	camera   capture.Camera
	detector detector.Detector
	tracker  *tracker.Tracker
	runner   *game.Runner
	preview  *server.Preview
	hub      *server.Hub

	mu          sync.RWMutex
	matchID     string
	lastFrame   []byte
	lastGesture gesture.Kind
	onStatus    func(Status)
}

// New creates a new App instance with the given configuration.
func New(cfg Config) *App {
	s := cfg.Settings
	a := &App{
		config:   cfg,
		camera:   cfg.Camera,
		detector: cfg.Detector,
		preview:  server.NewPreview(),
		hub:      server.NewHub(),
	}

	if a.camera == nil {
		a.camera = capture.NewCamera(s.CameraID)
	}

	// Try MediaPipe first, fall back to mock detector
	if a.detector == nil {
		mp, err := detector.NewMediaPipeDetector(detector.Config{
			MaxHands:        s.MaxHands,
			MinConfidence:   s.MinConfidence,
			MinTrackingConf: s.MinTrackingConfidence,
		})
		if err == nil {
			a.detector = mp
			monitoring.Logf("Using MediaPipe hand detection")
		} else {
			monitoring.Logf("MediaPipe not available (%v), using mock detector", err)
			a.detector = detector.NewMockDetector()
		}
	}

	a.tracker = tracker.New(a.camera, a.detector, tracker.Config{
		BufferSize:      s.BufferSize,
		IdleFPS:         s.IdleFPS,
		ActiveFPS:       s.ActiveFPS,
		IdleTimeout:     s.IdleTimeout,
		MotionThreshold: s.MotionThreshold,
		Mirror:          true,
	})

	match := game.NewMatch(game.Settings{Rounds: s.Rounds, Countdown: s.Countdown}, cfg.Picker)
	a.runner = game.NewRunner(match, game.RunnerConfig{
		TickInterval: cfg.TickInterval,
		ResultDelay:  s.ResultDelay,
	}, a.hooks())

	a.tracker.Status = func() []string {
		return a.runner.Snapshot().Lines()
	}

	return a
}

// OnStatus sets the callback called whenever the last gesture or the game
// changes.
func (a *App) OnStatus(fn func(Status)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onStatus = fn
}

// Status returns the last confirmed gesture and the current game.
func (a *App) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return Status{LastGesture: a.lastGesture, Game: a.runner.Snapshot()}
}

func (a *App) notify() {
	a.mu.RLock()
	fn := a.onStatus
	a.mu.RUnlock()
	if fn != nil {
		fn(a.Status())
	}
}

// Runner returns the game runner the API drives.
func (a *App) Runner() *game.Runner {
	return a.runner
}

// Preview returns the feed of rendered frames.
func (a *App) Preview() *server.Preview {
	return a.preview
}

// Hub returns the WebSocket event hub.
func (a *App) Hub() *server.Hub {
	return a.hub
}

// Stats returns the tracker counters.
func (a *App) Stats() tracker.Stats {
	return a.tracker.Stats()
}

// ServerConfig returns a server configuration serving this game.
func (a *App) ServerConfig() server.Config {
	return server.Config{
		StaticDir: a.config.Settings.WebDir,
		Store:     a.config.Store,
		Game:      a.runner,
		Preview:   a.preview,
		Hub:       a.hub,
		Stats:     a.Stats,
	}
}

// Run plays until ctx is cancelled or the camera fails. A camera failure is
// returned; cancellation returns nil. The detector is closed on return.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	defer func() {
		if err := a.detector.Close(); err != nil {
			monitoring.Logf("Error closing detector: %v", err)
		}
	}()

	return a.runPipeline(ctx, cancel)
}
