package main

// EventKind identifies an external stimulus
type EventKind int

const (
	EventPlayPauseClick EventKind = iota
	EventPrevClick
	EventNextClick
	EventProgressClick
	EventPlaylistClick
	EventFullscreenClick
	EventSettingsClick
	EventRateSelect
	EventQualitySelect
	EventOutsideClick
	EventKeyDown
	EventFilesSelected
	EventMedia
	EventNotice
)

// Event is one stimulus delivered by the host. Only the fields relevant to
// Kind are set.
type Event struct {
	Kind EventKind

	// EventProgressClick
	PointerX   float64
	TrackLeft  float64
	TrackWidth float64

	Index int         // EventPlaylistClick
	Rate  float64     // EventRateSelect
	Label string      // EventQualitySelect, EventNotice
	Code  KeyCode     // EventKeyDown
	Files []MediaFile // EventFilesSelected
	Media MediaEvent  // EventMedia
	Err   error       // EventNotice
}

// MediaFile is a selected file ready to be appended to the playlist
type MediaFile struct {
	Name string
	URL  string
}

var eventHandlers = map[EventKind]func(*PlayerController, Event){
	EventPlayPauseClick: func(c *PlayerController, _ Event) { c.TogglePlayPause() },
	EventPrevClick:      func(c *PlayerController, _ Event) { c.Advance(Prev) },
	EventNextClick:      func(c *PlayerController, _ Event) { c.Advance(Next) },
	EventProgressClick: func(c *PlayerController, e Event) {
		c.SeekToPointer(e.PointerX, e.TrackLeft, e.TrackWidth)
	},
	EventPlaylistClick:   func(c *PlayerController, e Event) { c.LoadPlaylistItem(e.Index) },
	EventFullscreenClick: func(c *PlayerController, _ Event) { c.ToggleFullscreen() },
	EventSettingsClick:   func(c *PlayerController, _ Event) { c.ToggleSettings() },
	EventRateSelect:      func(c *PlayerController, e Event) { c.SetPlaybackRate(e.Rate) },
	EventQualitySelect:   func(c *PlayerController, e Event) { c.SetQualityLabel(e.Label) },
	EventOutsideClick:    func(c *PlayerController, _ Event) { c.CloseSettings() },
	EventKeyDown:         func(c *PlayerController, e Event) { c.DispatchKeyCommand(e.Code) },
	EventFilesSelected: func(c *PlayerController, e Event) {
		for _, f := range e.Files {
			c.AppendMedia(f.Name, f.URL)
		}
	},
	EventMedia:  func(c *PlayerController, e Event) { c.handleMediaEvent(e.Media) },
	EventNotice: func(c *PlayerController, e Event) { c.notice(e.Label, e.Err) },
}

// Handle runs the handler registered for ev.Kind. Unknown kinds are ignored.
func (c *PlayerController) Handle(ev Event) {
	if h, ok := eventHandlers[ev.Kind]; ok {
		h(c, ev)
	}
}
