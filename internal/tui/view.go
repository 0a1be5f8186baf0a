package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/pbdeck/pbdeck/internal/engine"
	"github.com/pbdeck/pbdeck/internal/ui"
)

// View renders the whole screen from current state. It is pure: all
// mutation happens in Update.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "loading..."
	}
	if m.width < minUsableWidth || m.height < minUsableRows {
		return fmt.Sprintf("terminal too small (%dx%d, need at least %dx%d)",
			m.width, m.height, minUsableWidth, minUsableRows)
	}
	if m.splash {
		return m.renderSplash()
	}

	base := m.renderMain()
	if len(m.modals) > 0 {
		top := m.modals[len(m.modals)-1]
		return overlay(base, top.render(m.width), m.width, m.height)
	}
	return base
}

func (m Model) renderMain() string {
	usable := m.height - 1 // status bar
	listCol := m.listColumnWidth()
	outCol := m.width - listCol

	paneH := usable / 4
	hostsH := usable - 3*paneH // hosts pane absorbs the remainder

	sitesTitle := "Sites"
	if m.siteLocked {
		sitesTitle = "Sites (locked)"
	}
	sitesPane := m.renderPane(PaneSites, sitesTitle,
		m.listWindow(PaneSites, m.sites(), m.siteCursor, listCol-2, paneH-3),
		listCol, paneH)

	targets := m.targets()
	targetsPane := m.renderPane(PaneTargets, fmt.Sprintf("Targets (%d)", len(targets)),
		m.listWindow(PaneTargets, targets, m.targetCursor, listCol-2, paneH-3),
		listCol, paneH)

	hosts := m.hosts()
	hostItems := make([]string, len(hosts))
	for i, h := range hosts {
		box := ui.SymbolUnchecked
		if m.selected[h] {
			box = checkedStyle.Render(ui.SymbolSelected)
		}
		hostItems[i] = box + " " + h
	}
	hostsPane := m.renderPane(PaneHosts,
		fmt.Sprintf("Hosts (%d/%d)", len(m.selected), len(hosts)),
		m.listWindow(PaneHosts, hostItems, m.hostCursor, listCol-2, hostsH-3),
		listCol, hostsH)

	books := m.playbooks()
	bookItems := make([]string, len(books))
	for i, pb := range books {
		item := pb.Name
		if pb.Description != "" {
			item += " " + dimStyle.Render(pb.Description)
		}
		bookItems[i] = item
	}
	booksPane := m.renderPane(PanePlaybooks, fmt.Sprintf("Playbooks (%d)", len(books)),
		m.listWindow(PanePlaybooks, bookItems, m.bookCursor, listCol-2, paneH-3),
		listCol, paneH)

	left := lipgloss.JoinVertical(lipgloss.Left,
		sitesPane, targetsPane, hostsPane, booksPane)

	outputPane := m.renderPane(PaneOutput, m.outputTitle(), m.vp.View(), outCol, usable)

	main := lipgloss.JoinHorizontal(lipgloss.Top, left, outputPane)
	return main + "\n" + m.renderStatusBar()
}

// outputTitle carries the derived scroll position and follow-tail marker.
func (m Model) outputTitle() string {
	title := fmt.Sprintf("Output %3.0f%%", m.vp.ScrollPercent()*100)
	if m.follow {
		title += " ⇣"
	}
	return title
}

// renderPane draws one bordered pane with its title as the first row.
// Focus highlighting is suppressed while a modal is open so the dialog
// reads as the only live surface.
func (m Model) renderPane(p Pane, title, body string, w, h int) string {
	style := paneStyle
	titleStyle := paneTitleStyle
	if m.focus == p && len(m.modals) == 0 {
		style = focusedPaneStyle
		titleStyle = focusedTitleStyle
	}
	content := titleStyle.Render(truncate.String(title, uint(w-2))) + "\n" + body
	return style.Width(w - 2).Height(h - 2).Render(content)
}

// listWindow renders items one per row, scrolled so the cursor stays
// visible inside height rows.
func (m Model) listWindow(p Pane, items []string, cursor, width, height int) string {
	if height <= 0 {
		return ""
	}
	if len(items) == 0 {
		return dimStyle.Render("(none)")
	}

	cursor = clamp(cursor, len(items))
	start := 0
	if cursor >= height {
		start = cursor - height + 1
	}
	end := start + height
	if end > len(items) {
		end = len(items)
	}

	focused := m.focus == p && len(m.modals) == 0
	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		line := "  " + items[i]
		if i == cursor {
			line = "▸ " + items[i]
			if focused {
				line = cursorLineStyle.Render(line)
			}
		}
		rows = append(rows, truncate.String(line, uint(width)))
	}
	return strings.Join(rows, "\n")
}

// renderStatusBar shows the session state, mode flags and either a
// transient notice or the key hints.
func (m Model) renderStatusBar() string {
	parts := []string{m.sessionIndicator()}

	if m.vaultMode {
		parts = append(parts, systemStyle.Render("[vault]"))
	}
	if site := m.site(); site != "" {
		parts = append(parts, statusBarStyle.Render("site:"+site))
	}
	if len(m.selected) > 0 {
		parts = append(parts, statusBarStyle.Render(fmt.Sprintf("hosts:%d", len(m.selected))))
	}

	if m.notice != "" {
		parts = append(parts, noticeStyle.Render(m.notice))
	} else {
		parts = append(parts, statusBarStyle.Render(
			"tab panes · enter pick hosts · r run · v vault · ctrl+k cancel · x clear · q quit"))
	}

	return truncate.String(strings.Join(parts, "  "), uint(m.width))
}

// sessionIndicator is the leftmost status cell: spinner + elapsed while
// running, outcome symbol afterwards.
func (m Model) sessionIndicator() string {
	view, ok := m.eng.Snapshot()
	if !ok {
		return dimStyle.Render(ui.SymbolPending + " idle")
	}

	elapsed := view.Elapsed().Round(100 * time.Millisecond)
	switch view.State {
	case engine.StateRunning:
		return runningStatusStyle.Render(fmt.Sprintf("%s running %s",
			spinnerFrames[m.spinnerFrame], elapsed))
	case engine.StateSucceeded:
		return successStatusStyle.Render(fmt.Sprintf("%s succeeded %s",
			ui.SymbolSuccess, elapsed))
	case engine.StateFailed:
		return failedStatusStyle.Render(fmt.Sprintf("%s failed (exit %d)",
			ui.SymbolFail, view.ExitCode))
	case engine.StateCancelled:
		return cancelledStatusStyle.Render(ui.SymbolCancelled + " cancelled")
	default:
		return dimStyle.Render(ui.SymbolPending + " idle")
	}
}
