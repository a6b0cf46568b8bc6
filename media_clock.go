package main

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// clockElement is an in-process media element. It has no decoder: position
// advances with the wall clock against a fixed duration.
type clockElement struct {
	mu       sync.Mutex
	now      func() time.Time
	src      string
	duration float64
	base     float64   // position at anchor
	anchor   time.Time // when base was taken
	paused   bool
	ended    bool
	volume   float64
	muted    bool
	rate     float64

	events chan MediaEvent
	done   chan struct{}
	once   sync.Once
}

// newClockElement creates a clock element. A positive interval starts a
// goroutine emitting time updates while playing.
func newClockElement(duration time.Duration, interval time.Duration) *clockElement {
	c := &clockElement{
		now:      time.Now,
		duration: duration.Seconds(),
		paused:   true,
		volume:   1,
		rate:     1,
		events:   make(chan MediaEvent, 64),
		done:     make(chan struct{}),
	}
	if interval > 0 {
		go c.run(interval)
	}
	return c
}

func (c *clockElement) run(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.Lock()
			playing := c.src != "" && !c.paused
			var t float64
			if playing {
				t = c.positionLocked()
			}
			c.mu.Unlock()
			if playing {
				c.emit(MediaEvent{Kind: MediaTimeUpdate, Value: t})
			}
		}
	}
}

func (c *clockElement) emit(ev MediaEvent) {
	select {
	case c.events <- ev:
	default:
		// Slow consumer, drop; projection is re-derived from live reads anyway
	}
}

// positionLocked folds elapsed wall time into the position. Caller holds mu.
func (c *clockElement) positionLocked() float64 {
	if c.paused || c.src == "" {
		return c.base
	}
	pos := c.base + c.now().Sub(c.anchor).Seconds()*c.rate
	if c.duration > 0 && pos >= c.duration {
		c.base = c.duration
		c.anchor = c.now()
		c.paused = true
		if !c.ended {
			c.ended = true
			c.emit(MediaEvent{Kind: MediaPauseChange, Flag: true})
			c.emit(MediaEvent{Kind: MediaEnded})
		}
		return c.duration
	}
	return pos
}

func (c *clockElement) Load(src string) error {
	if src == "" {
		return fmt.Errorf("load: %w", ErrNotLoaded)
	}
	c.mu.Lock()
	c.src = src
	c.base = 0
	c.anchor = c.now()
	c.paused = true
	c.ended = false
	d := c.duration
	c.mu.Unlock()

	c.emit(MediaEvent{Kind: MediaDurationChange, Value: d})
	c.emit(MediaEvent{Kind: MediaTimeUpdate, Value: 0})
	return nil
}

func (c *clockElement) Play() error {
	c.mu.Lock()
	if c.src == "" {
		c.mu.Unlock()
		return fmt.Errorf("play: %w", ErrNotLoaded)
	}
	if c.ended {
		c.base = 0
		c.ended = false
	}
	wasPaused := c.paused
	c.paused = false
	c.anchor = c.now()
	c.mu.Unlock()

	if wasPaused {
		c.emit(MediaEvent{Kind: MediaPauseChange, Flag: false})
	}
	return nil
}

func (c *clockElement) Pause() error {
	c.mu.Lock()
	c.base = c.positionLocked()
	wasPaused := c.paused
	c.paused = true
	c.mu.Unlock()

	if !wasPaused {
		c.emit(MediaEvent{Kind: MediaPauseChange, Flag: true})
	}
	return nil
}

func (c *clockElement) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.positionLocked()
	return c.paused
}

func (c *clockElement) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.positionLocked()
}

func (c *clockElement) Seek(seconds float64) error {
	c.mu.Lock()
	if c.src == "" {
		c.mu.Unlock()
		return fmt.Errorf("seek: %w", ErrNotLoaded)
	}
	c.base = clamp(seconds, 0, c.duration)
	c.anchor = c.now()
	c.ended = false
	t := c.base
	c.mu.Unlock()

	c.emit(MediaEvent{Kind: MediaTimeUpdate, Value: t})
	return nil
}

func (c *clockElement) Duration() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.src == "" || c.duration <= 0 {
		return math.NaN()
	}
	return c.duration
}

func (c *clockElement) Volume() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volume
}

func (c *clockElement) SetVolume(v float64) error {
	if v < 0 || v > 1 || math.IsNaN(v) {
		return fmt.Errorf("volume %v outside [0,1]", v)
	}
	c.mu.Lock()
	c.volume = v
	muted := c.muted
	c.mu.Unlock()

	c.emit(MediaEvent{Kind: MediaVolumeChange, Value: v, Flag: muted})
	return nil
}

func (c *clockElement) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

func (c *clockElement) SetMuted(muted bool) error {
	c.mu.Lock()
	c.muted = muted
	v := c.volume
	c.mu.Unlock()

	c.emit(MediaEvent{Kind: MediaVolumeChange, Value: v, Flag: muted})
	return nil
}

func (c *clockElement) SetPlaybackRate(rate float64) error {
	if !(rate > 0) {
		return fmt.Errorf("playback rate %v must be positive", rate)
	}
	c.mu.Lock()
	c.base = c.positionLocked()
	c.anchor = c.now()
	c.rate = rate
	c.mu.Unlock()

	c.emit(MediaEvent{Kind: MediaRateChange, Value: rate})
	return nil
}

func (c *clockElement) Events() <-chan MediaEvent {
	return c.events
}

func (c *clockElement) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}
