// Package config loads the handrps settings file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// maxFileSize caps the settings file at 1MB.
const maxFileSize = 1 * 1024 * 1024

// Config is the resolved application configuration.
type Config struct {
	// Capture
	CameraID        int
	IdleFPS         int
	ActiveFPS       int
	IdleTimeout     time.Duration
	MotionThreshold float64

	// Detection
	MaxHands              int
	MinConfidence         float64
	MinTrackingConfidence float64

	// Smoothing
	BufferSize int

	// Game
	Rounds      int
	Countdown   int
	ResultDelay time.Duration

	// Service
	Addr   string
	DBPath string
	WebDir string
}

// File mirrors Config as it appears on disk. Every field is optional;
// omitted fields keep their defaults. Durations are strings like "2200ms".
type File struct {
	CameraID        *int     `json:"camera_id,omitempty"`
	IdleFPS         *int     `json:"idle_fps,omitempty"`
	ActiveFPS       *int     `json:"active_fps,omitempty"`
	IdleTimeout     *string  `json:"idle_timeout,omitempty"`
	MotionThreshold *float64 `json:"motion_threshold,omitempty"`

	MaxHands              *int     `json:"max_hands,omitempty"`
	MinConfidence         *float64 `json:"min_confidence,omitempty"`
	MinTrackingConfidence *float64 `json:"min_tracking_confidence,omitempty"`

	BufferSize *int `json:"buffer_size,omitempty"`

	Rounds      *int    `json:"rounds,omitempty"`
	Countdown   *int    `json:"countdown,omitempty"`
	ResultDelay *string `json:"result_delay,omitempty"`

	Addr   *string `json:"addr,omitempty"`
	DBPath *string `json:"db_path,omitempty"`
	WebDir *string `json:"web_dir,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		CameraID:              0,
		IdleFPS:               5,
		ActiveFPS:             15,
		IdleTimeout:           2 * time.Second,
		MotionThreshold:       1.0,
		MaxHands:              1,
		MinConfidence:         0.7,
		MinTrackingConfidence: 0.7,
		BufferSize:            3,
		Rounds:                5,
		Countdown:             3,
		ResultDelay:           2200 * time.Millisecond,
		Addr:                  ":8080",
	}
}

// Load reads a JSON settings file and applies it on top of Default.
func Load(path string) (Config, error) {
	cfg := Default()

	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return cfg, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return cfg, fmt.Errorf("stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return cfg, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return cfg, fmt.Errorf("parse config file: %w", err)
	}

	if err := f.apply(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (f *File) apply(cfg *Config) error {
	if f.CameraID != nil {
		cfg.CameraID = *f.CameraID
	}
	if f.IdleFPS != nil {
		cfg.IdleFPS = *f.IdleFPS
	}
	if f.ActiveFPS != nil {
		cfg.ActiveFPS = *f.ActiveFPS
	}
	if f.IdleTimeout != nil {
		d, err := time.ParseDuration(*f.IdleTimeout)
		if err != nil {
			return fmt.Errorf("invalid idle_timeout %q: %w", *f.IdleTimeout, err)
		}
		cfg.IdleTimeout = d
	}
	if f.MotionThreshold != nil {
		cfg.MotionThreshold = *f.MotionThreshold
	}
	if f.MaxHands != nil {
		cfg.MaxHands = *f.MaxHands
	}
	if f.MinConfidence != nil {
		cfg.MinConfidence = *f.MinConfidence
	}
	if f.MinTrackingConfidence != nil {
		cfg.MinTrackingConfidence = *f.MinTrackingConfidence
	}
	if f.BufferSize != nil {
		cfg.BufferSize = *f.BufferSize
	}
	if f.Rounds != nil {
		cfg.Rounds = *f.Rounds
	}
	if f.Countdown != nil {
		cfg.Countdown = *f.Countdown
	}
	if f.ResultDelay != nil {
		d, err := time.ParseDuration(*f.ResultDelay)
		if err != nil {
			return fmt.Errorf("invalid result_delay %q: %w", *f.ResultDelay, err)
		}
		cfg.ResultDelay = d
	}
	if f.Addr != nil {
		cfg.Addr = *f.Addr
	}
	if f.DBPath != nil {
		cfg.DBPath = *f.DBPath
	}
	if f.WebDir != nil {
		cfg.WebDir = *f.WebDir
	}
	return nil
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	switch {
	case c.IdleFPS <= 0 || c.ActiveFPS <= 0:
		return fmt.Errorf("fps must be positive (idle %d, active %d)", c.IdleFPS, c.ActiveFPS)
	case c.BufferSize <= 0:
		return fmt.Errorf("buffer_size must be positive, got %d", c.BufferSize)
	case c.Rounds <= 0:
		return fmt.Errorf("rounds must be positive, got %d", c.Rounds)
	case c.Countdown < 0:
		return fmt.Errorf("countdown must not be negative, got %d", c.Countdown)
	case c.MaxHands < 1:
		return fmt.Errorf("max_hands must be at least 1, got %d", c.MaxHands)
	case c.MinConfidence < 0 || c.MinConfidence > 1:
		return fmt.Errorf("min_confidence must be within [0,1], got %f", c.MinConfidence)
	case c.MinTrackingConfidence < 0 || c.MinTrackingConfidence > 1:
		return fmt.Errorf("min_tracking_confidence must be within [0,1], got %f", c.MinTrackingConfidence)
	}
	return nil
}
