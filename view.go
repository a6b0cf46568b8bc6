package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// The box is drawn at the top-left corner: one border cell plus two cells of
// padding before content, one border row above it. Pointer hit-testing relies
// on these offsets.
const (
	contentLeft = 3
	contentTop  = 1
	boxChrome   = 4 // horizontal padding on both sides
)

// zone is a clickable span on one terminal row; right is exclusive
type zone struct {
	row   int
	left  int
	right int
	event Event
}

func (z zone) contains(x, y int) bool {
	return y == z.row && x >= z.left && x < z.right
}

// layout records where the last render put each interactive element
type layout struct {
	barRow   int
	barLeft  int
	barWidth int
	zones    []zone

	settingsButton zone
	settingsTop    int // first settings row, -1 when closed
	settingsBottom int // exclusive
}

func (l layout) inSettings(x, y int) bool {
	if l.settingsButton.contains(x, y) {
		return true
	}
	return y >= l.settingsTop && y < l.settingsBottom
}

func (m model) titleWidth() int {
	return config.Get().UI.MaxWidth - boxChrome - 7
}

func (m model) View() string {
	out, _ := m.render()
	return out
}

// render draws the projection and returns the layout used for hit-testing
func (m model) render() (string, layout) {
	cfg := config.Get()
	view := m.ctrl.Projection()
	contentWidth := cfg.UI.MaxWidth - boxChrome

	color := lipgloss.Color(m.color)
	highlight := lipgloss.NewStyle().Foreground(color)
	white := lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	labelStyle := lipgloss.NewStyle().Foreground(color).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	activeStyle := lipgloss.NewStyle().Foreground(color).Bold(true).Reverse(true)
	noticeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	lineStyle := lipgloss.NewStyle().MaxWidth(contentWidth)

	lay := layout{settingsTop: -1, settingsBottom: -1}
	var lines []string
	nextRow := func() int { return contentTop + len(lines) }

	if m.picking {
		box := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(color).
			Padding(0, 2).
			Width(cfg.UI.MaxWidth).
			Render(labelStyle.Render("Open video") + "\n\n" + m.picker.View())
		return box + "\n" + dimStyle.Render("enter: open  esc: cancel"), lay
	}

	// Title
	lines = append(lines, labelStyle.Render("Title: ")+scrollText(view.Title, m.titleWidth(), m.scrollOffset))
	lines = append(lines, "")

	// Progress track and time text
	barWidth := contentWidth - 16
	filled := int(float64(barWidth) * view.ProgressPercent / 100)
	if filled > barWidth {
		filled = barWidth
	}
	lay.barRow, lay.barLeft, lay.barWidth = nextRow(), contentLeft, barWidth
	lines = append(lines,
		highlight.Render(strings.Repeat("█", filled))+
			white.Render(strings.Repeat("─", barWidth-filled))+
			" "+highlight.Render(view.TimeText))

	// Transport buttons
	row := nextRow()
	col := contentLeft
	var buttons strings.Builder
	addButton := func(label string, disabled, on bool, ev Event) zone {
		text := "[" + label + "]"
		w := lipgloss.Width(text)
		style := highlight
		switch {
		case disabled:
			style = dimStyle
		case on:
			style = activeStyle
		}
		buttons.WriteString(style.Render(text) + " ")
		z := zone{row: row, left: col, right: col + w, event: ev}
		if !disabled {
			lay.zones = append(lay.zones, z)
		}
		col += w + 1
		return z
	}
	if cfg.UI.ShowPlaylistNav {
		addButton("⏮", view.PrevDisabled, false, Event{Kind: EventPrevClick})
	}
	addButton(view.PlayGlyph, false, false, Event{Kind: EventPlayPauseClick})
	if cfg.UI.ShowPlaylistNav {
		addButton("⏭", view.NextDisabled, false, Event{Kind: EventNextClick})
	}
	addButton("⛶", false, view.Fullscreen, Event{Kind: EventFullscreenClick})
	lay.settingsButton = addButton("⚙", false, view.SettingsOpen, Event{Kind: EventSettingsClick})
	lines = append(lines, buttons.String())

	// Status
	var status []string
	if cfg.UI.ShowVolume {
		vol := fmt.Sprintf("Vol %d%%", view.VolumePercent)
		if view.Muted {
			vol += " (muted)"
		}
		status = append(status, vol)
	}
	status = append(status, "Speed "+view.RateLabel, "Quality "+view.QualityLabel)
	lines = append(lines, dimStyle.Render(strings.Join(status, "  ")))

	// Settings submenu
	if view.SettingsOpen {
		lay.settingsTop = nextRow()
		opts := m.ctrl.Options()
		lines = append(lines, "")
		lines = append(lines, m.menuLine("Speed   ", view.RateOptions, 0, nextRow(), &lay, func(i int) Event {
			return Event{Kind: EventRateSelect, Rate: opts.PlaybackRates[i]}
		}))
		lines = append(lines, m.menuLine("Quality ", view.QualityOptions, 1, nextRow(), &lay, func(i int) Event {
			return Event{Kind: EventQualitySelect, Label: opts.Qualities[i]}
		}))
		lay.settingsBottom = nextRow()
	}

	// Playlist
	lines = append(lines, "", labelStyle.Render("Playlist"))
	if len(view.Items) == 0 {
		lines = append(lines, dimStyle.Render("Empty. Press o to open a video."))
	}
	for _, item := range view.Items {
		text := fmt.Sprintf("  %2d. %s", item.Index+1, item.Name)
		style := white
		if item.Active {
			text = fmt.Sprintf("▸ %2d. %s", item.Index+1, item.Name)
			style = highlight.Bold(true)
		}
		lay.zones = append(lay.zones, zone{
			row:   nextRow(),
			left:  contentLeft,
			right: contentLeft + contentWidth,
			event: Event{Kind: EventPlaylistClick, Index: item.Index},
		})
		lines = append(lines, style.Render(text))
	}

	for i, l := range lines {
		lines[i] = lineStyle.Render(l)
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 2).
		Width(cfg.UI.MaxWidth).
		Render(strings.Join(lines, "\n"))

	var footer string
	if view.Notice != "" {
		footer = noticeStyle.Render(lipgloss.NewStyle().MaxWidth(cfg.UI.MaxWidth).Render(view.Notice)) + "\n"
	}
	if view.SettingsOpen {
		footer += m.help.View(m.settingsKeys)
	} else {
		footer += m.help.View(m.keys)
	}

	return box + "\n" + footer, lay
}

// menuLine renders a single-select submenu row and registers its click zones
func (m model) menuLine(label string, options []MenuOption, menuRow, row int, lay *layout, event func(int) Event) string {
	color := lipgloss.Color(m.color)
	labelStyle := lipgloss.NewStyle().Foreground(color).Bold(true)
	plain := lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	active := lipgloss.NewStyle().Foreground(color).Bold(true).Reverse(true)

	var b strings.Builder
	b.WriteString(labelStyle.Render(label))
	col := contentLeft + lipgloss.Width(label)
	for i, o := range options {
		style := plain
		if o.Active {
			style = active
		}
		if m.settingsRow == menuRow && m.settingsCol == i {
			style = style.Underline(true)
		}
		text := " " + o.Label + " "
		w := lipgloss.Width(text)
		b.WriteString(style.Render(text))
		lay.zones = append(lay.zones, zone{row: row, left: col, right: col + w, event: event(i)})
		col += w
	}
	return b.String()
}
