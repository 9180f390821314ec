package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		inner := titleRendered + "\n\n" + content
		return boxStyle.Render(inner)
	}

	return boxStyle.Render(content)
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// FormatSeconds converts raw seconds into human-friendly format such as
// "2h 5m 30s".
func FormatSeconds(sec int) string {
	if sec <= 0 {
		return "0s"
	}
	h := sec / 3600
	m := (sec % 3600) / 60
	s := sec % 60

	var parts []string
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if m > 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	if s > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%ds", s))
	}
	return strings.Join(parts, " ")
}

// Timestamp renders a time in the CLI's canonical display format.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}

// ActivityBar renders a 10-segment activity meter colored by intensity.
// Activity is expressed in seconds out of a 600-second bucket.
func ActivityBar(activity int) string {
	if activity < 0 {
		activity = 0
	}
	if activity > 600 {
		activity = 600
	}
	filled := activity / 60
	bar := strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)

	pct := activity * 100 / 600
	switch {
	case pct >= 60:
		return StyleGreen.Render(bar)
	case pct >= 30:
		return StyleYellow.Render(bar)
	default:
		return StyleRed.Render(bar)
	}
}
