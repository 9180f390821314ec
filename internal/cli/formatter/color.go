package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"timecore/internal/domain"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}

// TimerPill returns a colored running/stopped indicator.
func TimerPill(running bool) string {
	if running {
		return StyleGreen.Render("● RUNNING")
	}
	return StyleDim.Render("○ STOPPED")
}

// SheetStatusPill returns a colored indicator for a timesheet status.
func SheetStatusPill(status domain.TimesheetStatus) string {
	switch status {
	case domain.TimesheetPending:
		return StyleBlue.Render("○ Pending")
	case domain.TimesheetInReview:
		return StyleYellow.Render("● In Review")
	case domain.TimesheetApproved:
		return StyleGreen.Render("✔ Approved")
	default:
		return StyleDim.Render(string(status))
	}
}

// LogTypeBadge returns a styled label for a log type.
func LogTypeBadge(t domain.TimeLogType) string {
	switch t {
	case domain.LogTracked:
		return StyleGreen.Render("TRACKED")
	case domain.LogManual:
		return StyleYellow.Render("MANUAL")
	case domain.LogIdle:
		return StyleDim.Render("IDLE")
	default:
		return StyleDim.Render(string(t))
	}
}
