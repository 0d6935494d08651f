package app

import (
	"context"
	"sync"

	"github.com/ayusman/handrps/internal/gesture"
	"github.com/ayusman/handrps/internal/monitoring"
	"github.com/ayusman/handrps/internal/tracker"
)

// runPipeline runs the tracker and the game runner and fans the tracker's
// output out to its consumers.
//
// Pipeline layout:
//  1. The tracker owns the camera and sends confirmed gestures and rendered
//     frames.
//  2. Each confirmed gesture is remembered, broadcast to WebSocket clients,
//     and handed to the game runner in order.
//  3. Each frame is kept for round thumbnails and published to the preview
//     stream.
//  4. When the tracker stops, both fan-out loops drain and end, and the
//     runner is stopped.
func (a *App) runPipeline(ctx context.Context, cancel context.CancelFunc) error {
	gestures := make(chan gesture.Confirmed, cap(a.tracker.Events()))

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		if err := a.runner.Run(ctx, gestures); err != nil {
			monitoring.Logf("Game runner stopped: %v", err)
		}
	}()

	go func() {
		defer wg.Done()
		a.forwardEvents(ctx, a.tracker.Events(), gestures)
	}()

	go func() {
		defer wg.Done()
		a.forwardFrames(a.tracker.Frames())
	}()

	monitoring.Logf("Tracking started")
	err := a.tracker.Run(ctx)
	if err != nil {
		monitoring.Logf("Tracking stopped: %v", err)
	} else {
		monitoring.Logf("Tracking stopped")
	}

	cancel()
	wg.Wait()
	return err
}

// forwardEvents delivers confirmed gestures to the runner, keeping their
// order. out is closed when in is.
func (a *App) forwardEvents(ctx context.Context, in <-chan gesture.Confirmed, out chan<- gesture.Confirmed) {
	defer close(out)
	for c := range in {
		a.mu.Lock()
		a.lastGesture = c.Gesture
		a.mu.Unlock()

		a.hub.BroadcastGesture(c)
		a.notify()

		select {
		case out <- c:
		case <-ctx.Done():
			// Drain so the tracker is never left blocked.
			for range in {
			}
			return
		}
	}
}

// forwardFrames keeps the latest frame and publishes it to the preview.
func (a *App) forwardFrames(in <-chan tracker.Frame) {
	for f := range in {
		if len(f.JPEG) == 0 {
			continue
		}
		a.mu.Lock()
		a.lastFrame = f.JPEG
		a.mu.Unlock()
		a.preview.Publish(f.JPEG)
	}
}
