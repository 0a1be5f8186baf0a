package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/pbdeck/pbdeck/internal/ui"
)

// Layout breakpoints for responsive pane sizing
const (
	minListColumn  = 24
	maxListColumn  = 40
	minUsableWidth = 50
	minUsableRows  = 12
)

var (
	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ui.ColorMuted)

	focusedPaneStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ui.ColorInfo)

	paneTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ui.ColorPrimary)

	focusedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ui.ColorInfo)

	cursorLineStyle = lipgloss.NewStyle().
			Foreground(ui.ColorInfo).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(ui.ColorMuted)

	checkedStyle = lipgloss.NewStyle().
			Foreground(ui.ColorSuccess)

	stderrStyle = lipgloss.NewStyle().
			Foreground(ui.ColorWarning)

	systemStyle = lipgloss.NewStyle().
			Foreground(ui.ColorInfo)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(ui.ColorMuted)

	noticeStyle = lipgloss.NewStyle().
			Foreground(ui.ColorWarning).
			Bold(true)

	runningStatusStyle = lipgloss.NewStyle().
				Foreground(ui.ColorInfo).
				Bold(true)

	successStatusStyle = lipgloss.NewStyle().
				Foreground(ui.ColorSuccess).
				Bold(true)

	failedStatusStyle = lipgloss.NewStyle().
				Foreground(ui.ColorError).
				Bold(true)

	cancelledStatusStyle = lipgloss.NewStyle().
				Foreground(ui.ColorWarning).
				Bold(true)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(ui.ColorInfo).
			Padding(1, 2)

	modalTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ui.ColorInfo)

	splashStyle = lipgloss.NewStyle().
			Foreground(ui.ColorSecondary).
			Bold(true)
)
