package main

import (
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// model is the Bubble Tea model hosting the player controller
type model struct {
	ctrl    *PlayerController
	media   MediaElement
	watcher *folderWatcher
	logger  *zap.Logger

	keys         keyMap
	settingsKeys settingsKeyMap
	help         help.Model
	picker       filepicker.Model
	picking      bool
	initial      filesSelectedMsg

	color    string
	width    int
	height   int
	showHelp bool

	// Settings submenu cursor: row 0 is speed, row 1 is quality
	settingsRow int
	settingsCol int

	// Title scrolling state
	scrollOffset int
	scrollPause  int
	scrollTick   int
}

// Rows taken by the picker box around the listing: border, heading, blank
// line and the key hint
const (
	pickerChrome        = 5
	defaultPickerHeight = 10
)

// UI refresh tick
type tickMsg time.Time

// mediaEventMsg wraps a notification from the media element
type mediaEventMsg MediaEvent

func newModel(ctrl *PlayerController, media MediaElement, initial filesSelectedMsg, watcher *folderWatcher, logger *zap.Logger) model {
	cfg := config.Get()

	picker := filepicker.New()
	picker.AllowedTypes = videoExtensions
	picker.AutoHeight = false
	picker.SetHeight(defaultPickerHeight)

	return model{
		ctrl:         ctrl,
		media:        media,
		watcher:      watcher,
		logger:       logger,
		keys:         newKeyMap(),
		settingsKeys: newSettingsKeyMap(),
		help:         help.New(),
		picker:       picker,
		initial:      initial,
		color:        cfg.UI.Color,
	}
}

// Schedule next UI refresh tick
func tickCmd() tea.Cmd {
	cfg := config.Get()
	return tea.Tick(cfg.uiRefreshInterval(), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForMediaEvent blocks until the media element reports something
func waitForMediaEvent(events <-chan MediaEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return mediaEventMsg(ev)
	}
}

func (m model) Init() tea.Cmd {
	initial := m.initial
	cmds := []tea.Cmd{
		tickCmd(),
		waitForMediaEvent(m.media.Events()),
		watchConfigCmd(),
		func() tea.Msg { return initial },
	}
	if m.watcher != nil {
		cmds = append(cmds, m.watcher.waitForFileCmd())
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.picker.SetHeight(max(msg.Height-pickerChrome, 1))

	case mediaEventMsg:
		m.ctrl.Handle(Event{Kind: EventMedia, Media: MediaEvent(msg)})
		return m, waitForMediaEvent(m.media.Events())

	case filesSelectedMsg:
		m.acceptFiles(msg)
		return m, nil

	case watchedFileMsg:
		m.acceptFiles(filesSelectedMsg{files: []MediaFile{msg.file}})
		return m, m.watcher.waitForFileCmd()

	case configReloadMsg:
		cfg := config.Get()
		m.color = cfg.UI.Color
		m.ctrl.ApplyOptions(cfg.ControlOptions())
		m.syncSettingsCursor()
		m.logger.Info("config reloaded")
		return m, watchConfigCmd()

	case tickMsg:
		m.ctrl.UpdateProgressProjection()
		m.advanceScroll()
		return m, tickCmd()
	}

	if m.picking {
		return m.updatePicker(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m.handleClick(msg.X, msg.Y)
		}
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.ctrl.Projection().SettingsOpen {
		if handled := m.handleSettingsKey(msg); handled {
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil
	case key.Matches(msg, m.keys.Settings):
		m.ctrl.Handle(Event{Kind: EventSettingsClick})
		m.syncSettingsCursor()
		return m, nil
	case key.Matches(msg, m.keys.Open):
		m.picking = true
		return m, m.picker.Init()
	}

	if code, ok := m.keys.keyCode(msg); ok {
		m.ctrl.Handle(Event{Kind: EventKeyDown, Code: code})
	}
	return m, nil
}

// handleSettingsKey moves the submenu cursor. It reports false for keys the
// menu does not use so they fall through to the player.
func (m *model) handleSettingsKey(msg tea.KeyMsg) bool {
	opts := m.ctrl.Options()
	count := len(opts.PlaybackRates)
	if m.settingsRow == 1 {
		count = len(opts.Qualities)
	}

	switch {
	case key.Matches(msg, m.settingsKeys.Close):
		m.ctrl.CloseSettings()
	case key.Matches(msg, m.settingsKeys.Switch):
		m.settingsRow = 1 - m.settingsRow
		m.syncSettingsCursor()
	case key.Matches(msg, m.settingsKeys.Left):
		if m.settingsCol > 0 {
			m.settingsCol--
		}
	case key.Matches(msg, m.settingsKeys.Right):
		if m.settingsCol < count-1 {
			m.settingsCol++
		}
	case key.Matches(msg, m.settingsKeys.Select):
		if m.settingsRow == 0 && m.settingsCol < len(opts.PlaybackRates) {
			m.ctrl.Handle(Event{Kind: EventRateSelect, Rate: opts.PlaybackRates[m.settingsCol]})
		} else if m.settingsRow == 1 && m.settingsCol < len(opts.Qualities) {
			m.ctrl.Handle(Event{Kind: EventQualitySelect, Label: opts.Qualities[m.settingsCol]})
		}
	default:
		return false
	}
	return true
}

// syncSettingsCursor puts the cursor on the active option of the current row
func (m *model) syncSettingsCursor() {
	view := m.ctrl.Projection()
	options := view.RateOptions
	if m.settingsRow == 1 {
		options = view.QualityOptions
	}
	m.settingsCol = 0
	for i, o := range options {
		if o.Active {
			m.settingsCol = i
		}
	}
}

// handleClick hit-tests a left click against the rendered layout
func (m *model) handleClick(x, y int) {
	_, lay := m.render()

	if m.ctrl.Projection().SettingsOpen && !lay.inSettings(x, y) {
		m.ctrl.Handle(Event{Kind: EventOutsideClick})
	}

	if y == lay.barRow && x >= lay.barLeft && x < lay.barLeft+lay.barWidth {
		m.ctrl.Handle(Event{
			Kind:       EventProgressClick,
			PointerX:   float64(x) + 0.5,
			TrackLeft:  float64(lay.barLeft),
			TrackWidth: float64(lay.barWidth),
		})
		return
	}

	for _, z := range lay.zones {
		if z.contains(x, y) {
			m.ctrl.Handle(z.event)
			if z.event.Kind == EventSettingsClick {
				m.syncSettingsCursor()
			}
			return
		}
	}
}

func (m model) updatePicker(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && (k.String() == "esc" || k.String() == "q") {
		m.picking = false
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if didSelect, path := m.picker.DidSelectFile(msg); didSelect {
		m.picking = false
		m.acceptFiles(selectFiles([]string{path}))
	}
	if didSelect, path := m.picker.DidSelectDisabledFile(msg); didSelect {
		m.ctrl.Handle(Event{Kind: EventNotice, Label: "cannot open " + path, Err: ErrUnsupportedMedia})
	}
	return m, cmd
}

func (m *model) acceptFiles(msg filesSelectedMsg) {
	for _, err := range msg.errs {
		m.ctrl.Handle(Event{Kind: EventNotice, Label: "skipped file", Err: err})
	}
	if len(msg.files) > 0 {
		m.ctrl.Handle(Event{Kind: EventFilesSelected, Files: msg.files})
	}
}

func (m *model) advanceScroll() {
	m.scrollTick++
	if m.scrollPause > 0 {
		m.scrollPause--
		return
	}
	if m.scrollTick%2 != 0 {
		return
	}
	m.scrollOffset++
	titleLen := len([]rune(m.ctrl.Projection().Title))
	if titleLen > m.titleWidth() && m.scrollOffset >= titleLen+5 {
		m.scrollOffset = 0
		m.scrollPause = 12
	}
}
