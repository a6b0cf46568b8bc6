package main

import (
	"errors"
	"math"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Direction is a playlist navigation step
type Direction int

const (
	Prev Direction = -1
	Next Direction = 1
)

// ControlOptions are the tunables that differ between player variants
type ControlOptions struct {
	SeekStep         float64
	VolumeStep       float64
	PlaybackRates    []float64
	Qualities        []string
	PlaceholderTitle string
	AutoplayNext     bool
}

// PlaybackState is the source of truth the projection is derived from
type PlaybackState struct {
	Playlist     Playlist
	CurrentIndex int // -1 when nothing is selected
	PlaybackRate float64
	Volume       float64
	Muted        bool
	Quality      string
	Fullscreen   bool
}

// PlayerController translates stimuli into PlaybackState changes and keeps
// the UIProjection in lockstep. It is not safe for concurrent use; all calls
// come from the host event loop.
type PlayerController struct {
	media  MediaElement
	opts   ControlOptions
	logger *zap.Logger
	state  PlaybackState
	view   UIProjection
}

// NewPlayerController creates a controller with an empty playlist
func NewPlayerController(media MediaElement, opts ControlOptions, logger *zap.Logger) *PlayerController {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &PlayerController{
		media:  media,
		opts:   opts,
		logger: logger.With(zap.String("session", uuid.NewString())),
		state: PlaybackState{
			CurrentIndex: -1,
			PlaybackRate: 1,
			Volume:       clamp(media.Volume(), 0, 1),
			Muted:        media.Muted(),
			Quality:      "auto",
		},
	}
	c.view.PlayGlyph = glyphPlay
	c.view.TimeText = zeroTimeText
	c.rebuildMenus()
	c.refreshTitle()
	c.refreshNav()
	c.refreshVolume()
	return c
}

// State returns a snapshot of the playback state
func (c *PlayerController) State() PlaybackState {
	s := c.state
	s.Playlist = Playlist{entries: c.state.Playlist.Entries()}
	return s
}

// Projection returns a copy of the current UI projection
func (c *PlayerController) Projection() UIProjection {
	return c.view.copy()
}

// Options returns the active control options
func (c *PlayerController) Options() ControlOptions {
	return c.opts
}

// ApplyOptions swaps the tunables, e.g. after a config reload
func (c *PlayerController) ApplyOptions(opts ControlOptions) {
	c.opts = opts
	c.rebuildMenus()
	c.refreshTitle()
}

// TogglePlayPause starts playback when paused and pauses it otherwise
func (c *PlayerController) TogglePlayPause() {
	if c.media.Paused() {
		if err := c.media.Play(); err != nil {
			c.notice("play failed", err)
			return
		}
		c.view.PlayGlyph = glyphPause
		return
	}
	if err := c.media.Pause(); err != nil {
		c.notice("pause failed", err)
		return
	}
	c.view.PlayGlyph = glyphPlay
}

// SeekTo moves playback to fraction of the duration. It is a no-op while
// the duration is unknown.
func (c *PlayerController) SeekTo(fraction float64) {
	d := c.media.Duration()
	if !durationKnown(d) || math.IsNaN(fraction) {
		return
	}
	c.seek(clamp(fraction, 0, 1) * d)
}

// SeekToPointer maps a click at pointerX on a track starting at trackLeft
// with trackWidth cells (or pixels) to a seek
func (c *PlayerController) SeekToPointer(pointerX, trackLeft, trackWidth float64) {
	if !(trackWidth > 0) {
		return
	}
	c.SeekTo(clamp((pointerX-trackLeft)/trackWidth, 0, 1))
}

func (c *PlayerController) seekBy(delta float64) {
	d := c.media.Duration()
	if !durationKnown(d) {
		return
	}
	c.seek(clamp(c.media.CurrentTime()+delta, 0, d))
}

func (c *PlayerController) seek(t float64) {
	if err := c.media.Seek(t); err != nil {
		c.notice("seek failed", err)
		return
	}
	c.UpdateProgressProjection()
}

// Advance moves one entry back or forward. Requests past either end of the
// playlist are ignored.
func (c *PlayerController) Advance(dir Direction) {
	next := c.state.CurrentIndex + int(dir)
	if next < 0 || next >= c.state.Playlist.Len() {
		return
	}
	c.LoadPlaylistItem(next)
}

// LoadPlaylistItem selects entry index, loads its source from the start and
// begins playback
func (c *PlayerController) LoadPlaylistItem(index int) {
	entry, ok := c.state.Playlist.At(index)
	if !ok {
		c.logger.Debug("ignoring load of missing playlist entry", zap.Int("index", index))
		return
	}
	c.state.CurrentIndex = index
	c.logger.Info("loading media", zap.Int("index", index), zap.String("name", entry.Name))

	if err := c.media.Load(entry.URL); err != nil {
		c.notice("could not load "+entry.Name, err)
		c.view.PlayGlyph = glyphPlay
	} else {
		if c.state.PlaybackRate != 1 {
			if err := c.media.SetPlaybackRate(c.state.PlaybackRate); err != nil {
				c.logger.Warn("could not restore playback rate", zap.Error(err))
			}
		}
		if err := c.media.Play(); err != nil {
			c.notice("play failed", err)
			c.view.PlayGlyph = glyphPlay
		} else {
			c.view.PlayGlyph = glyphPause
			c.view.Notice = ""
		}
	}

	c.refreshTitle()
	c.refreshItems()
	c.refreshNav()
	c.UpdateProgressProjection()
}

// AppendMedia adds an entry and binds its playlist row to LoadPlaylistItem.
// When nothing is loaded yet the new entry is loaded immediately.
func (c *PlayerController) AppendMedia(name, sourceURL string) int {
	index := c.state.Playlist.Append(name, sourceURL)
	c.view.Items = append(c.view.Items, PlaylistItemView{Name: name, Index: index})
	c.logger.Debug("appended media", zap.Int("index", index), zap.String("name", name))

	if c.state.CurrentIndex == -1 {
		c.LoadPlaylistItem(index)
		return index
	}
	c.refreshNav()
	return index
}

// UpdateProgressProjection re-derives progress fill and time text from the
// media element
func (c *PlayerController) UpdateProgressProjection() {
	c.view.ProgressPercent, c.view.TimeText = progressProjection(c.media.CurrentTime(), c.media.Duration())
}

// SetPlaybackRate applies one of the configured rates
func (c *PlayerController) SetPlaybackRate(rate float64) {
	i := indexOfRate(c.opts.PlaybackRates, rate)
	if i < 0 {
		c.logger.Debug("ignoring unknown playback rate", zap.Float64("rate", rate))
		return
	}
	if err := c.media.SetPlaybackRate(rate); err != nil {
		c.notice("could not change speed", err)
		return
	}
	c.state.PlaybackRate = rate
	c.view.RateLabel = formatRate(rate)
	selectOnly(c.view.RateOptions, i)
}

// SetQualityLabel records the selected quality. No stream switching happens.
func (c *PlayerController) SetQualityLabel(label string) {
	i := indexOfString(c.opts.Qualities, label)
	if i < 0 {
		c.logger.Debug("ignoring unknown quality", zap.String("quality", label))
		return
	}
	c.state.Quality = label
	c.view.QualityLabel = qualityLabel(label)
	selectOnly(c.view.QualityOptions, i)
	c.logger.Info("quality selected", zap.String("quality", label))
}

// ToggleSettings opens or closes the settings menu
func (c *PlayerController) ToggleSettings() {
	c.view.SettingsOpen = !c.view.SettingsOpen
}

// CloseSettings closes the settings menu
func (c *PlayerController) CloseSettings() {
	c.view.SettingsOpen = false
}

// ToggleFullscreen switches between normal and fullscreen display. Rejected
// or unsupported requests leave the state unchanged.
func (c *PlayerController) ToggleFullscreen() {
	fs, ok := c.media.(Fullscreener)
	if !ok || !fs.FullscreenEnabled() {
		c.notice("fullscreen unavailable", ErrUnsupported)
		return
	}

	if !c.state.Fullscreen {
		if err := fs.RequestFullscreen(); err != nil {
			c.notice("could not enter fullscreen", err)
			return
		}
	} else {
		if err := fs.ExitFullscreen(); err != nil {
			c.notice("could not exit fullscreen", err)
			return
		}
	}
	c.state.Fullscreen = !c.state.Fullscreen
	c.view.Fullscreen = c.state.Fullscreen
}

// adjustVolume moves the volume by delta, clamped to [0,1]. An actual
// increase unmutes; an actual decrease to zero mutes. Steps that hit a bound
// change nothing.
func (c *PlayerController) adjustVolume(delta float64) {
	old := c.state.Volume
	v := math.Round(clamp(old+delta, 0, 1)*100) / 100
	if v == old {
		return
	}
	if err := c.media.SetVolume(v); err != nil {
		c.notice("could not change volume", err)
		return
	}
	c.state.Volume = v

	switch {
	case v > old:
		c.setMuted(false)
	case v == 0:
		c.setMuted(true)
	}
	c.refreshVolume()
}

func (c *PlayerController) toggleMute() {
	c.setMuted(!c.state.Muted)
	c.refreshVolume()
}

func (c *PlayerController) setMuted(muted bool) {
	if c.state.Muted == muted {
		return
	}
	if err := c.media.SetMuted(muted); err != nil {
		c.notice("could not change mute", err)
		return
	}
	c.state.Muted = muted
}

// handleMediaEvent mirrors a media notification into state and projection
func (c *PlayerController) handleMediaEvent(ev MediaEvent) {
	switch ev.Kind {
	case MediaTimeUpdate, MediaDurationChange:
		c.UpdateProgressProjection()
	case MediaPauseChange:
		if ev.Flag {
			c.view.PlayGlyph = glyphPlay
		} else {
			c.view.PlayGlyph = glyphPause
		}
	case MediaVolumeChange:
		c.state.Volume = clamp(ev.Value, 0, 1)
		c.state.Muted = ev.Flag
		c.refreshVolume()
	case MediaRateChange:
		if ev.Value > 0 {
			c.state.PlaybackRate = ev.Value
			c.view.RateLabel = formatRate(ev.Value)
			selectOnly(c.view.RateOptions, indexOfRate(c.opts.PlaybackRates, ev.Value))
		}
	case MediaFullscreenChange:
		c.state.Fullscreen = ev.Flag
		c.view.Fullscreen = ev.Flag
	case MediaEnded:
		c.view.PlayGlyph = glyphPlay
		c.UpdateProgressProjection()
		if c.opts.AutoplayNext {
			c.Advance(Next)
		}
	case MediaError:
		c.notice("playback error", ev.Err)
	}
}

func (c *PlayerController) notice(msg string, err error) {
	c.view.Notice = msg
	if err != nil {
		c.view.Notice += ": " + err.Error()
	}
	if errors.Is(err, ErrUnsupported) {
		c.logger.Debug(msg, zap.Error(err))
		return
	}
	c.logger.Warn(msg, zap.Error(err))
}

func (c *PlayerController) refreshTitle() {
	if entry, ok := c.state.Playlist.At(c.state.CurrentIndex); ok {
		c.view.Title = entry.Name
		return
	}
	c.view.Title = c.opts.PlaceholderTitle
}

func (c *PlayerController) refreshNav() {
	n := c.state.Playlist.Len()
	c.view.PrevDisabled = c.state.CurrentIndex <= 0
	c.view.NextDisabled = c.state.CurrentIndex >= n-1 || c.state.CurrentIndex == -1
}

func (c *PlayerController) refreshItems() {
	for i := range c.view.Items {
		c.view.Items[i].Active = c.view.Items[i].Index == c.state.CurrentIndex
	}
}

func (c *PlayerController) refreshVolume() {
	c.view.VolumePercent = int(math.Round(c.state.Volume * 100))
	c.view.Muted = c.state.Muted
}

func (c *PlayerController) rebuildMenus() {
	c.view.RateOptions = make([]MenuOption, len(c.opts.PlaybackRates))
	for i, r := range c.opts.PlaybackRates {
		c.view.RateOptions[i] = MenuOption{Label: formatRate(r)}
	}
	selectOnly(c.view.RateOptions, indexOfRate(c.opts.PlaybackRates, c.state.PlaybackRate))
	c.view.RateLabel = formatRate(c.state.PlaybackRate)

	c.view.QualityOptions = make([]MenuOption, len(c.opts.Qualities))
	for i, q := range c.opts.Qualities {
		c.view.QualityOptions[i] = MenuOption{Label: qualityLabel(q)}
	}
	selectOnly(c.view.QualityOptions, indexOfString(c.opts.Qualities, c.state.Quality))
	c.view.QualityLabel = qualityLabel(c.state.Quality)
}

func qualityLabel(q string) string {
	if strings.EqualFold(q, "auto") {
		return "Auto"
	}
	return q
}

func indexOfRate(rates []float64, rate float64) int {
	for i, r := range rates {
		if math.Abs(r-rate) < 1e-9 {
			return i
		}
	}
	return -1
}

func indexOfString(values []string, v string) int {
	for i, s := range values {
		if s == v {
			return i
		}
	}
	return -1
}
