package main

const (
	glyphPlay  = "▶"
	glyphPause = "⏸"

	zeroTimeText = "0:00 / 0:00"
)

// UIProjection is the derived view state. It is recomputed by the controller
// from PlaybackState and live media metrics and is never the source of truth.
type UIProjection struct {
	Title           string
	PlayGlyph       string
	ProgressPercent float64
	TimeText        string
	PrevDisabled    bool
	NextDisabled    bool
	Items           []PlaylistItemView
	RateLabel       string
	QualityLabel    string
	RateOptions     []MenuOption
	QualityOptions  []MenuOption
	SettingsOpen    bool
	Fullscreen      bool
	VolumePercent   int
	Muted           bool
	Notice          string
}

// PlaylistItemView is one playlist row. Clicking it loads Index.
type PlaylistItemView struct {
	Name   string
	Index  int
	Active bool
}

// MenuOption is one entry of a single-select settings submenu
type MenuOption struct {
	Label  string
	Active bool
}

// copy returns a projection that shares no slices with p
func (p UIProjection) copy() UIProjection {
	out := p
	out.Items = append([]PlaylistItemView(nil), p.Items...)
	out.RateOptions = append([]MenuOption(nil), p.RateOptions...)
	out.QualityOptions = append([]MenuOption(nil), p.QualityOptions...)
	return out
}

// progressProjection computes fill percentage and time text for a position.
// Unknown or zero durations render as zero rather than NaN.
func progressProjection(currentTime, duration float64) (float64, string) {
	if !durationKnown(duration) {
		return 0, zeroTimeText
	}
	percent := clamp(currentTime/duration*100, 0, 100)
	return percent, formatTime(currentTime) + " / " + formatTime(duration)
}

// selectOnly marks option i active and clears the rest; i < 0 clears all
func selectOnly(options []MenuOption, i int) {
	for j := range options {
		options[j].Active = j == i
	}
}
