package tui

import "github.com/charmbracelet/lipgloss"

const logo = `        _         _           _
  _ __ | |__   __| | ___  ___| | __
 | '_ \| '_ \ / _` + "`" + ` |/ _ \/ __| |/ /
 | |_) | |_) | (_| |  __/ (__|   <
 | .__/|_.__/ \__,_|\___|\___|_|\_\
 |_|`

// renderSplash centers the startup logo. Any key (or the splash timer)
// dismisses it.
func (m Model) renderSplash() string {
	content := splashStyle.Render(logo) + "\n\n" +
		dimStyle.Render("playbook run console") + "\n\n" +
		dimStyle.Render("press any key")
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}
