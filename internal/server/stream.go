package server

import (
	"fmt"
	"net/http"
	"sync"
)

// Preview holds the latest rendered frame and wakes stream clients when a
// new one is published.
type Preview struct {
	mu    sync.Mutex
	jpeg  []byte
	seq   uint64
	ready chan struct{}
}

// NewPreview creates an empty Preview.
func NewPreview() *Preview {
	return &Preview{ready: make(chan struct{})}
}

// Publish replaces the latest frame. data must not be modified afterwards.
func (p *Preview) Publish(data []byte) {
	p.mu.Lock()
	p.jpeg = data
	p.seq++
	close(p.ready)
	p.ready = make(chan struct{})
	p.mu.Unlock()
}

// Latest returns the current frame, how many frames were published so far,
// and a channel closed on the next Publish.
func (p *Preview) Latest() ([]byte, uint64, <-chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.jpeg, p.seq, p.ready
}

// StreamHandler serves the preview as MJPEG.
type StreamHandler struct {
	preview *Preview
}

// NewStreamHandler creates a new StreamHandler over p.
func NewStreamHandler(p *Preview) *StreamHandler {
	return &StreamHandler{preview: p}
}

// ServeHTTP streams MJPEG frames until the client goes away.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	var sent uint64
	for {
		data, seq, ready := h.preview.Latest()
		if data != nil && seq != sent {
			if err := writePart(w, data); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
			sent = seq
		}

		select {
		case <-r.Context().Done():
			return
		case <-ready:
		}
	}
}

func writePart(w http.ResponseWriter, data []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(data)); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err := fmt.Fprint(w, "\r\n")
	return err
}
