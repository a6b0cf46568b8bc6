package main

import (
	"math"
	"testing"

	"go.uber.org/zap"
)

// fakeMedia is a MediaElement that records commands instead of playing
type fakeMedia struct {
	src      string
	paused   bool
	time     float64
	duration float64
	volume   float64
	muted    bool
	rate     float64

	loads []string
	seeks []float64
	plays int

	loadErr error
	playErr error
	seekErr error

	events chan MediaEvent
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{
		paused:   true,
		duration: math.NaN(),
		volume:   1,
		rate:     1,
		events:   make(chan MediaEvent, 8),
	}
}

func (f *fakeMedia) Load(src string) error {
	if f.loadErr != nil {
		return f.loadErr
	}
	f.src = src
	f.time = 0
	f.paused = true
	f.loads = append(f.loads, src)
	return nil
}

func (f *fakeMedia) Play() error {
	if f.playErr != nil {
		return f.playErr
	}
	f.paused = false
	f.plays++
	return nil
}

func (f *fakeMedia) Pause() error {
	f.paused = true
	return nil
}

func (f *fakeMedia) Paused() bool         { return f.paused }
func (f *fakeMedia) CurrentTime() float64 { return f.time }
func (f *fakeMedia) Duration() float64    { return f.duration }
func (f *fakeMedia) Volume() float64      { return f.volume }
func (f *fakeMedia) Muted() bool          { return f.muted }

func (f *fakeMedia) Seek(seconds float64) error {
	if f.seekErr != nil {
		return f.seekErr
	}
	f.seeks = append(f.seeks, seconds)
	f.time = seconds
	return nil
}

func (f *fakeMedia) SetVolume(v float64) error {
	f.volume = v
	return nil
}

func (f *fakeMedia) SetMuted(muted bool) error {
	f.muted = muted
	return nil
}

func (f *fakeMedia) SetPlaybackRate(rate float64) error {
	f.rate = rate
	return nil
}

func (f *fakeMedia) Events() <-chan MediaEvent { return f.events }
func (f *fakeMedia) Close() error              { return nil }

// fakeScreenMedia adds a fullscreen capability to fakeMedia
type fakeScreenMedia struct {
	*fakeMedia
	enabled    bool
	requestErr error
	exitErr    error
	requests   int
	exits      int
}

func (f *fakeScreenMedia) FullscreenEnabled() bool { return f.enabled }

func (f *fakeScreenMedia) RequestFullscreen() error {
	f.requests++
	return f.requestErr
}

func (f *fakeScreenMedia) ExitFullscreen() error {
	f.exits++
	return f.exitErr
}

func testOptions() ControlOptions {
	return ControlOptions{
		SeekStep:         10,
		VolumeStep:       0.1,
		PlaybackRates:    []float64{0.5, 1, 1.5, 2},
		Qualities:        []string{"auto", "1080p", "720p"},
		PlaceholderTitle: "No video selected",
	}
}

// newTestController returns a controller over a fresh fakeMedia
func newTestController(t *testing.T) (*PlayerController, *fakeMedia) {
	t.Helper()
	media := newFakeMedia()
	return NewPlayerController(media, testOptions(), zap.NewNop()), media
}

// assertError is a test helper that checks if an error occurred and fails the test if not
func assertError(t *testing.T, err error, msg string) {
	t.Helper()
	if err == nil {
		t.Errorf("Expected error: %s, got nil", msg)
	}
}

// assertNoError is a test helper that fails the test if an error occurred
func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

// assertEqual is a generic test helper for comparing values
func assertEqual(t *testing.T, got, want interface{}, msg string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %v, want %v", msg, got, want)
	}
}
