package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pbdeck/pbdeck/internal/engine"
	"github.com/pbdeck/pbdeck/internal/errors"
	"github.com/pbdeck/pbdeck/internal/outbuf"
)

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeViewport()
		m.refreshOutput(true)
		return m, nil

	case tickMsg:
		m.spinnerFrame = (m.spinnerFrame + 1) % len(spinnerFrames)
		if m.notice != "" && time.Now().After(m.noticeUntil) {
			m.notice = ""
		}
		m.refreshOutput(false)
		return m, m.tickCmd()

	case outputMsg:
		m.refreshOutput(false)
		return m, nil

	case catalogReloadedMsg:
		m.snap = msg.snap
		m.clampCursors()
		for _, err := range msg.snap.LoadErrors {
			m.buf.Append(outbuf.SourceSystem, errors.Message(err))
		}
		m.setNotice("catalog reloaded")
		return m, nil

	case splashDoneMsg:
		m.splash = false
		return m, nil

	case tea.KeyMsg:
		if m.splash {
			m.splash = false
			return m, nil
		}
		if len(m.modals) > 0 {
			return m.updateModal(msg)
		}
		return m.handleKey(msg)
	}

	return m, nil
}

// handleKey processes keyboard input when no modal is open.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		m.focus = (m.focus + 1) % paneCount

	case "shift+tab":
		m.focus = (m.focus + paneCount - 1) % paneCount

	case "q", "ctrl+c":
		if m.eng.Running() {
			m.modals = append(m.modals, newQuitModal())
			return m, nil
		}
		m.quitting = true
		return m, tea.Quit

	case "j", "down":
		m.moveCursor(1)

	case "k", "up":
		m.moveCursor(-1)

	case "g", "home":
		if m.focus == PaneOutput {
			m.vp.GotoTop()
			m.follow = false
		}

	case "G", "end":
		if m.focus == PaneOutput {
			m.vp.GotoBottom()
			m.follow = true
		}

	case "pgup":
		if m.focus == PaneOutput {
			m.vp.ScrollUp(m.vp.Height)
			m.follow = false
		}

	case "pgdown":
		if m.focus == PaneOutput {
			m.vp.ScrollDown(m.vp.Height)
			m.follow = m.vp.AtBottom()
		}

	case "enter", " ":
		if m.focus == PaneHosts {
			m.modals = append(m.modals, newHostModal(m.hosts(), m.selected))
		} else if m.focus == PanePlaybooks && msg.String() == "enter" {
			return m.startRun()
		}

	case "r", "f5":
		return m.startRun()

	case "ctrl+k":
		if m.eng.Running() {
			m.eng.Cancel()
		} else {
			m.setNotice("no run to cancel")
		}

	case "x":
		m.buf.Clear()
		m.refreshOutput(true)

	case "c":
		m.selected = make(map[string]bool)
		m.setNotice("host selection cleared")

	case "v":
		m.vaultMode = !m.vaultMode
		if m.vaultMode {
			m.setNotice("vault mode on: runs will prompt for a passphrase")
		} else {
			m.setNotice("vault mode off")
		}

	case "ctrl+r":
		return m, m.reloadCmd()
	}

	return m, nil
}

// moveCursor moves the focused pane's selection. Changing the site or
// target filter resets the downstream cursors and the host selection,
// which would otherwise point at hosts outside the new filter.
func (m *Model) moveCursor(delta int) {
	switch m.focus {
	case PaneSites:
		if m.siteLocked {
			m.setNotice("site filter locked from the command line")
			return
		}
		old := m.siteCursor
		m.siteCursor = clamp(m.siteCursor+delta, len(m.sites()))
		if m.siteCursor != old {
			m.targetCursor, m.hostCursor, m.bookCursor = 0, 0, 0
			m.selected = make(map[string]bool)
		}

	case PaneTargets:
		old := m.targetCursor
		m.targetCursor = clamp(m.targetCursor+delta, len(m.targets()))
		if m.targetCursor != old {
			m.hostCursor, m.bookCursor = 0, 0
			m.selected = make(map[string]bool)
		}

	case PaneHosts:
		m.hostCursor = clamp(m.hostCursor+delta, len(m.hosts()))

	case PanePlaybooks:
		m.bookCursor = clamp(m.bookCursor+delta, len(m.playbooks()))

	case PaneOutput:
		if delta > 0 {
			m.vp.ScrollDown(1)
		} else {
			m.vp.ScrollUp(1)
		}
		// Scrolling back disables follow-tail; returning to the bottom
		// restores it.
		m.follow = m.vp.AtBottom()
	}
}

// updateModal routes a key to the top modal, which consumes it exclusively.
func (m Model) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	top := &m.modals[len(m.modals)-1]

	switch top.kind {
	case modalHosts:
		switch msg.String() {
		case "j", "down":
			top.cursor = clamp(top.cursor+1, len(top.hosts))
		case "k", "up":
			top.cursor = clamp(top.cursor-1, len(top.hosts))
		case " ":
			if len(top.hosts) > 0 {
				h := top.hosts[clamp(top.cursor, len(top.hosts))]
				if top.checked[h] {
					delete(top.checked, h)
				} else {
					top.checked[h] = true
				}
			}
		case "a":
			if len(top.checked) == len(top.hosts) {
				top.checked = make(map[string]bool)
			} else {
				for _, h := range top.hosts {
					top.checked[h] = true
				}
			}
		case "enter":
			m.selected = make(map[string]bool, len(top.checked))
			for h := range top.checked {
				m.selected[h] = true
			}
			m.popModal()
		case "esc":
			m.popModal()
		}
		return m, nil

	case modalVault:
		switch msg.String() {
		case "enter":
			secret := top.takeSecret()
			m.popModal()
			if len(secret) == 0 {
				m.setNotice("empty passphrase, run aborted")
				return m, nil
			}
			return m.launch(secret)
		case "esc":
			// Discard without exposing.
			top.input.Reset()
			m.popModal()
			return m, nil
		default:
			var cmd tea.Cmd
			top.input, cmd = top.input.Update(msg)
			return m, cmd
		}

	case modalQuit:
		switch msg.String() {
		case "y", "enter":
			m.eng.Cancel()
			m.quitting = true
			return m, tea.Quit
		case "n", "esc", "q":
			m.popModal()
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) popModal() {
	if len(m.modals) > 0 {
		m.modals = m.modals[:len(m.modals)-1]
	}
}

// startRun validates the selection and either launches immediately or, in
// vault mode, opens the passphrase prompt first.
func (m Model) startRun() (tea.Model, tea.Cmd) {
	if m.eng.Running() {
		m.setNotice("a run is already in progress")
		return m, nil
	}
	if len(m.selected) == 0 {
		m.setNotice("no hosts selected — press enter on the Hosts pane")
		return m, nil
	}
	if _, ok := m.currentPlaybook(); !ok {
		m.setNotice("no playbook selected")
		return m, nil
	}
	if m.vaultMode {
		m.modals = append(m.modals, newVaultModal())
		return m, textinput.Blink
	}
	return m.launch(nil)
}

// launch hands the run to the engine. The secret, when present, is owned
// by the engine from here on.
func (m Model) launch(secret []byte) (tea.Model, tea.Cmd) {
	pb, _ := m.currentPlaybook()
	var files []string
	if m.snap.Inventory != nil {
		files = m.snap.Inventory.Files
	}

	_, err := m.eng.Start(engine.Spec{
		Hosts:       m.selectionList(),
		Playbook:    pb.Path,
		Inventories: files,
		Secret:      secret,
	})
	if err != nil {
		m.setNotice(errors.Message(err))
		return m, nil
	}

	m.focus = PaneOutput
	m.follow = true
	m.refreshOutput(true)
	return m, nil
}

// reloadCmd reloads the catalog off the UI goroutine.
func (m Model) reloadCmd() tea.Cmd {
	cat := m.cat
	return func() tea.Msg {
		// A failed reload keeps the previous snapshot live.
		_ = cat.Reload()
		return catalogReloadedMsg{snap: cat.Snapshot()}
	}
}

// refreshOutput re-renders the viewport from the buffer when it changed.
// TotalAppended is the change detector, so clears force an explicit pass.
func (m *Model) refreshOutput(force bool) {
	total := m.buf.TotalAppended()
	if !force && total == m.lastSeen {
		return
	}
	m.lastSeen = total

	lines := m.buf.Snapshot()
	rendered := make([]string, len(lines))
	for i, l := range lines {
		switch l.Source {
		case outbuf.SourceStderr:
			rendered[i] = stderrStyle.Render(l.Text)
		case outbuf.SourceSystem:
			rendered[i] = systemStyle.Render(l.Text)
		default:
			rendered[i] = l.Text
		}
	}
	m.vp.SetContent(strings.Join(rendered, "\n"))
	if m.follow {
		m.vp.GotoBottom()
	}
}

// resizeViewport fits the output viewport into the right-hand column.
func (m *Model) resizeViewport() {
	listCol := m.listColumnWidth()
	w := m.width - listCol - 2 // output pane borders
	if w < 1 {
		w = 1
	}
	h := m.height - 3 // status bar + output pane borders
	if h < 1 {
		h = 1
	}
	m.vp.Width = w
	m.vp.Height = h
}

func (m Model) listColumnWidth() int {
	w := m.width / 4
	if w < minListColumn {
		w = minListColumn
	}
	if w > maxListColumn {
		w = maxListColumn
	}
	return w
}
