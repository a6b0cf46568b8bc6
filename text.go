package main

import (
	"fmt"
	"math"
)

// formatTime converts seconds to m:ss, flooring both fields
func formatTime(seconds float64) string {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		seconds = 0
	}
	mins := int64(math.Floor(seconds / 60))
	secs := int64(math.Floor(math.Mod(seconds, 60)))
	return fmt.Sprintf("%d:%02d", mins, secs)
}

// formatRate renders a playback rate the way the settings menu labels it
func formatRate(rate float64) string {
	return fmt.Sprintf("%gx", rate)
}

// scrollText returns a scrolling window of text with smooth looping
func scrollText(text string, max int, offset int) string {
	runes := []rune(text)
	if max <= 0 || len(runes) <= max {
		return text
	}

	looped := append(runes, []rune("  •  ")...)
	n := len(looped)
	offset %= n

	window := make([]rune, 0, max)
	for i := 0; i < max; i++ {
		window = append(window, looped[(offset+i)%n])
	}
	return string(window)
}
