package main

// KeyCode is a physical key identifier in KeyboardEvent.code form
type KeyCode string

const (
	KeySpace      KeyCode = "Space"
	KeyArrowLeft  KeyCode = "ArrowLeft"
	KeyArrowRight KeyCode = "ArrowRight"
	KeyArrowUp    KeyCode = "ArrowUp"
	KeyArrowDown  KeyCode = "ArrowDown"
	KeyM          KeyCode = "KeyM"
	KeyF          KeyCode = "KeyF"
	KeyN          KeyCode = "KeyN"
	KeyB          KeyCode = "KeyB"
)

var keyCommands = map[KeyCode]func(*PlayerController){
	KeySpace:      (*PlayerController).TogglePlayPause,
	KeyArrowLeft:  func(c *PlayerController) { c.seekBy(-c.opts.SeekStep) },
	KeyArrowRight: func(c *PlayerController) { c.seekBy(c.opts.SeekStep) },
	KeyArrowUp:    func(c *PlayerController) { c.adjustVolume(c.opts.VolumeStep) },
	KeyArrowDown:  func(c *PlayerController) { c.adjustVolume(-c.opts.VolumeStep) },
	KeyM:          (*PlayerController).toggleMute,
	KeyF:          (*PlayerController).ToggleFullscreen,
	KeyN:          func(c *PlayerController) { c.Advance(Next) },
	KeyB:          func(c *PlayerController) { c.Advance(Prev) },
}

// DispatchKeyCommand runs the command bound to code and reports whether one was
func (c *PlayerController) DispatchKeyCommand(code KeyCode) bool {
	cmd, ok := keyCommands[code]
	if !ok {
		return false
	}
	cmd(c)
	return true
}
