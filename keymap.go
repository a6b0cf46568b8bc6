package main

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbletea"
)

// keyMap binds terminal keys to player commands
type keyMap struct {
	PlayPause   key.Binding
	SeekBack    key.Binding
	SeekForward key.Binding
	VolumeUp    key.Binding
	VolumeDown  key.Binding
	Mute        key.Binding
	Fullscreen  key.Binding
	Next        key.Binding
	Prev        key.Binding
	Open        key.Binding
	Settings    key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		PlayPause:   key.NewBinding(key.WithKeys(" ", "space", "p"), key.WithHelp("space", "play/pause")),
		SeekBack:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "back")),
		SeekForward: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "forward")),
		VolumeUp:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "vol+")),
		VolumeDown:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "vol-")),
		Mute:        key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mute")),
		Fullscreen:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fullscreen")),
		Next:        key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
		Prev:        key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "previous")),
		Open:        key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open")),
		Settings:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "settings")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PlayPause, k.SeekBack, k.SeekForward, k.Open, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PlayPause, k.SeekBack, k.SeekForward, k.Next, k.Prev},
		{k.VolumeUp, k.VolumeDown, k.Mute, k.Fullscreen},
		{k.Open, k.Settings, k.Help, k.Quit},
	}
}

// keyCode translates a terminal key press into the controller's key code
func (k keyMap) keyCode(msg tea.KeyMsg) (KeyCode, bool) {
	switch {
	case key.Matches(msg, k.PlayPause):
		return KeySpace, true
	case key.Matches(msg, k.SeekBack):
		return KeyArrowLeft, true
	case key.Matches(msg, k.SeekForward):
		return KeyArrowRight, true
	case key.Matches(msg, k.VolumeUp):
		return KeyArrowUp, true
	case key.Matches(msg, k.VolumeDown):
		return KeyArrowDown, true
	case key.Matches(msg, k.Mute):
		return KeyM, true
	case key.Matches(msg, k.Fullscreen):
		return KeyF, true
	case key.Matches(msg, k.Next):
		return KeyN, true
	case key.Matches(msg, k.Prev):
		return KeyB, true
	}
	return "", false
}

// settingsKeyMap drives the settings submenu while it is open
type settingsKeyMap struct {
	Left   key.Binding
	Right  key.Binding
	Switch key.Binding
	Select key.Binding
	Close  key.Binding
}

func newSettingsKeyMap() settingsKeyMap {
	return settingsKeyMap{
		Left:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "prev option")),
		Right:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "next option")),
		Switch: key.NewBinding(key.WithKeys("tab", "up", "down"), key.WithHelp("tab", "speed/quality")),
		Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Close:  key.NewBinding(key.WithKeys("esc", "s"), key.WithHelp("esc", "close")),
	}
}

func (k settingsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Switch, k.Select, k.Close}
}

func (k settingsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
