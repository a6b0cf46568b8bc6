package main

import (
	"errors"
	"math"
	"testing"
	"time"
)

// fakeClock is a manually advanced time source
type fakeClock struct {
	t time.Time
}

func (f *fakeClock) now() time.Time { return f.t }

func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestClockElement(t *testing.T, duration time.Duration) (*clockElement, *fakeClock) {
	t.Helper()
	clk := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	el := newClockElement(duration, 0)
	el.now = clk.now
	t.Cleanup(func() { el.Close() })
	return el, clk
}

// drain collects every event currently buffered
func drain(el *clockElement) []MediaEvent {
	var out []MediaEvent
	for {
		select {
		case ev := <-el.Events():
			out = append(out, ev)
		default:
			return out
		}
	}
}

func hasEvent(events []MediaEvent, kind MediaEventKind) bool {
	for _, ev := range events {
		if ev.Kind == kind {
			return true
		}
	}
	return false
}

func TestClockElementRequiresSource(t *testing.T) {
	el, _ := newTestClockElement(t, time.Minute)

	if !math.IsNaN(el.Duration()) {
		t.Errorf("Duration before load = %v; want NaN", el.Duration())
	}
	if err := el.Play(); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Play before load: got %v, want ErrNotLoaded", err)
	}
	if err := el.Seek(5); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Seek before load: got %v, want ErrNotLoaded", err)
	}
	assertError(t, el.Load(""), "empty source")
}

func TestClockElementPlayback(t *testing.T) {
	el, clk := newTestClockElement(t, time.Minute)

	assertNoError(t, el.Load("clip.mp4"))
	assertEqual(t, el.Duration(), 60.0, "duration")
	assertEqual(t, el.Paused(), true, "paused after load")

	assertNoError(t, el.Play())
	clk.advance(10 * time.Second)
	assertEqual(t, el.CurrentTime(), 10.0, "position after 10s")

	assertNoError(t, el.Pause())
	clk.advance(10 * time.Second)
	assertEqual(t, el.CurrentTime(), 10.0, "position frozen while paused")

	assertNoError(t, el.Seek(30))
	assertEqual(t, el.CurrentTime(), 30.0, "position after seek")

	assertNoError(t, el.Seek(500))
	assertEqual(t, el.CurrentTime(), 60.0, "seek clamps to duration")
}

func TestClockElementPlaybackRate(t *testing.T) {
	el, clk := newTestClockElement(t, time.Minute)
	assertNoError(t, el.Load("clip.mp4"))
	assertNoError(t, el.Play())

	clk.advance(4 * time.Second)
	assertNoError(t, el.SetPlaybackRate(2))
	clk.advance(4 * time.Second)
	assertEqual(t, el.CurrentTime(), 12.0, "4s at 1x then 4s at 2x")

	assertError(t, el.SetPlaybackRate(0), "zero rate")
}

func TestClockElementEnds(t *testing.T) {
	el, clk := newTestClockElement(t, 10*time.Second)
	assertNoError(t, el.Load("clip.mp4"))
	assertNoError(t, el.Play())
	drain(el)

	clk.advance(15 * time.Second)
	assertEqual(t, el.CurrentTime(), 10.0, "position stops at duration")
	assertEqual(t, el.Paused(), true, "paused at end")

	events := drain(el)
	if !hasEvent(events, MediaEnded) {
		t.Errorf("expected an ended event, got %v", events)
	}

	el.CurrentTime()
	if hasEvent(drain(el), MediaEnded) {
		t.Error("ended reported twice")
	}

	assertNoError(t, el.Play())
	assertEqual(t, el.CurrentTime(), 0.0, "play after end restarts")
}

func TestClockElementVolume(t *testing.T) {
	el, _ := newTestClockElement(t, time.Minute)

	assertNoError(t, el.SetVolume(0.4))
	assertEqual(t, el.Volume(), 0.4, "volume")
	assertError(t, el.SetVolume(1.5), "volume above 1")
	assertError(t, el.SetVolume(-0.1), "volume below 0")

	assertNoError(t, el.SetMuted(true))
	assertEqual(t, el.Muted(), true, "muted")

	events := drain(el)
	last := events[len(events)-1]
	assertEqual(t, last.Kind, MediaVolumeChange, "event kind")
	assertEqual(t, last.Value, 0.4, "event volume")
	assertEqual(t, last.Flag, true, "event muted")
}

func TestClockElementDrivesController(t *testing.T) {
	el, clk := newTestClockElement(t, 2*time.Minute+5*time.Second)
	c := NewPlayerController(el, testOptions(), nil)

	c.AppendMedia("clip.mp4", "clip.mp4")
	clk.advance(65 * time.Second)
	c.UpdateProgressProjection()
	assertEqual(t, c.Projection().TimeText, "1:05 / 2:05", "time text")

	c.DispatchKeyCommand(KeyArrowRight)
	assertEqual(t, el.CurrentTime(), 75.0, "arrow seek")

	c.SeekTo(0)
	assertEqual(t, c.Projection().ProgressPercent, 0.0, "percent after seek to start")
}
