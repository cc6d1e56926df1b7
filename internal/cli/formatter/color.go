package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/skiff/internal/domain"
	"github.com/charmbracelet/lipgloss"
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
	StyleGreen      = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow     = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleYellowBold = lipgloss.NewStyle().Foreground(ColorYellow).Bold(true)
	StyleRed        = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue       = lipgloss.NewStyle().Foreground(ColorBlue)
	StyleDim        = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg         = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader     = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold       = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// StatusPill returns a colored indicator for a task status.
func StatusPill(status domain.TaskStatus) string {
	switch status {
	case domain.TaskNotStarted:
		return StyleBlue.Render("○ Not started")
	case domain.TaskInProgress:
		return StyleYellow.Render("▶ In progress")
	case domain.TaskCompleted:
		return StyleGreen.Render("✔ Completed")
	case domain.TaskIgnored:
		return StyleDim.Render("⊘ Ignored")
	default:
		return StyleDim.Render(string(status))
	}
}

// SyncBadge returns a colored per-record sync indicator.
func SyncBadge(status domain.SyncStatus) string {
	switch status {
	case domain.SyncSynced:
		return StyleGreen.Render("synced")
	case domain.SyncPending:
		return StyleYellow.Render("pending")
	case domain.SyncConflict:
		return StyleRed.Render("conflict")
	default:
		return StyleDim.Render(string(status))
	}
}

// StateBadge returns a colored indicator for the engine sync state.
func StateBadge(state domain.SyncState) string {
	switch state {
	case domain.SyncIdle:
		return StyleGreen.Render("● idle")
	case domain.SyncSyncing:
		return StyleYellow.Render("● syncing")
	case domain.SyncOffline:
		return StyleDim.Render("○ offline")
	case domain.SyncError:
		return StyleRed.Render("● error")
	default:
		return StyleDim.Render(string(state))
	}
}

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
