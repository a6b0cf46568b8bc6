package main

import (
	"errors"
	"math"
)

var (
	// ErrUnsupported is returned when the media primitive lacks a capability
	ErrUnsupported = errors.New("not supported by this media backend")
	// ErrNotLoaded is returned for commands that need a loaded source
	ErrNotLoaded = errors.New("no media loaded")
)

// MediaElement is the native playable-media primitive the controller drives.
// Reads return the last known value and never block.
type MediaElement interface {
	Load(src string) error
	Play() error
	Pause() error
	Paused() bool
	CurrentTime() float64
	Seek(seconds float64) error
	// Duration returns NaN while the duration is unknown
	Duration() float64
	Volume() float64
	SetVolume(v float64) error
	Muted() bool
	SetMuted(muted bool) error
	SetPlaybackRate(rate float64) error
	Events() <-chan MediaEvent
	Close() error
}

// Fullscreener is implemented by media elements that can take over the display
type Fullscreener interface {
	FullscreenEnabled() bool
	RequestFullscreen() error
	ExitFullscreen() error
}

// MediaEventKind identifies a media element notification
type MediaEventKind int

const (
	MediaTimeUpdate MediaEventKind = iota
	MediaDurationChange
	MediaPauseChange
	MediaVolumeChange
	MediaRateChange
	MediaFullscreenChange
	MediaEnded
	MediaError
)

func (k MediaEventKind) String() string {
	switch k {
	case MediaTimeUpdate:
		return "timeupdate"
	case MediaDurationChange:
		return "durationchange"
	case MediaPauseChange:
		return "pausechange"
	case MediaVolumeChange:
		return "volumechange"
	case MediaRateChange:
		return "ratechange"
	case MediaFullscreenChange:
		return "fullscreenchange"
	case MediaEnded:
		return "ended"
	case MediaError:
		return "error"
	}
	return "unknown"
}

// MediaEvent is a notification pushed by the media element
type MediaEvent struct {
	Kind  MediaEventKind
	Value float64 // time, duration, volume or rate depending on Kind
	Flag  bool    // paused, muted or fullscreen depending on Kind
	Err   error
}

// durationKnown reports whether d can be used as a seek/progress denominator
func durationKnown(d float64) bool {
	return !math.IsNaN(d) && !math.IsInf(d, 0) && d > 0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
