// Package tui is the interactive run console: a pane/focus state machine
// over the inventory and playbook catalogs, a modal stack for host picking
// and the vault passphrase, and a follow-tail viewport over the shared
// output buffer. The render loop never blocks on process I/O; engine
// goroutines wake it through program.Send.
package tui

import (
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pbdeck/pbdeck/internal/catalog"
	"github.com/pbdeck/pbdeck/internal/config"
	"github.com/pbdeck/pbdeck/internal/engine"
	"github.com/pbdeck/pbdeck/internal/inventory"
	"github.com/pbdeck/pbdeck/internal/logger"
	"github.com/pbdeck/pbdeck/internal/outbuf"
	"github.com/pbdeck/pbdeck/internal/playbook"
)

// Pane identifies one navigable region. The set is closed; focus cycles
// through them in declaration order.
type Pane int

const (
	PaneSites Pane = iota
	PaneTargets
	PaneHosts
	PanePlaybooks
	PaneOutput
	paneCount
)

func (p Pane) title() string {
	switch p {
	case PaneSites:
		return "Sites"
	case PaneTargets:
		return "Targets"
	case PaneHosts:
		return "Hosts"
	case PanePlaybooks:
		return "Playbooks"
	case PaneOutput:
		return "Output"
	default:
		return "?"
	}
}

// Spinner frames for the running-session indicator
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const noticeDuration = 4 * time.Second

// Model is the Bubble Tea model for the run console. Selection, viewport
// and modal state are owned by the UI goroutine; the engine and buffer are
// shared and only read through their snapshot methods.
type Model struct {
	cfg *config.Config
	cat *catalog.Catalog
	eng *engine.Engine
	buf *outbuf.Buffer
	log logger.Logger

	snap catalog.Snapshot

	width, height int
	ready         bool

	focus      Pane
	siteCursor int
	siteLocked bool
	targetCursor, hostCursor, bookCursor int

	selected  map[string]bool // confirmed host selection
	vaultMode bool

	modals []modal

	vp       viewport.Model
	follow   bool
	lastSeen uint64

	notice      string
	noticeUntil time.Time

	splash       bool
	spinnerFrame int
	quitting     bool
}

// NewModel builds the initial model. siteFilter, when non-empty, locks the
// site pane to the matching site (case-insensitive); an unknown site falls
// back to the unlocked "all" view.
func NewModel(cfg *config.Config, cat *catalog.Catalog, eng *engine.Engine,
	buf *outbuf.Buffer, log logger.Logger, siteFilter string, noSplash bool) Model {

	m := Model{
		cfg:      cfg,
		cat:      cat,
		eng:      eng,
		buf:      buf,
		log:      log,
		snap:     cat.Snapshot(),
		selected: make(map[string]bool),
		follow:   true,
		vp:       viewport.New(0, 0),
		splash:   cfg.Splash.Enabled && !noSplash,
	}

	if siteFilter != "" && m.snap.Inventory != nil {
		if site := m.snap.Inventory.MatchSite(siteFilter); site != "" {
			for i, s := range m.sites() {
				if s == site {
					m.siteCursor = i
					m.siteLocked = true
					break
				}
			}
		} else {
			m.notice = "unknown site " + siteFilter + ", showing all"
			m.noticeUntil = time.Now().Add(noticeDuration)
		}
	}

	for _, err := range m.snap.LoadErrors {
		m.buf.Append(outbuf.SourceSystem, err.Error())
	}
	return m
}

// Init starts the tick loop and, when enabled, the splash timer.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.tickCmd()}
	if m.splash {
		cmds = append(cmds, tea.Tick(m.cfg.Splash.Duration, func(time.Time) tea.Msg {
			return splashDoneMsg{}
		}))
	}
	return tea.Batch(cmds...)
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.cfg.Output.TickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// sites returns the site pane entries: "all" plus every inventory site.
func (m Model) sites() []string {
	out := []string{inventory.SiteAll}
	if m.snap.Inventory != nil {
		out = append(out, m.snap.Inventory.Sites()...)
	}
	return out
}

// site is the active site filter.
func (m Model) site() string {
	sites := m.sites()
	return sites[clamp(m.siteCursor, len(sites))]
}

// targets returns the target-type groups visible under the site filter.
func (m Model) targets() []string {
	if m.snap.Inventory == nil {
		return nil
	}
	return m.snap.Inventory.GroupsForSite(m.site())
}

// target is the highlighted target type, or "" with an empty catalog.
func (m Model) target() string {
	targets := m.targets()
	if len(targets) == 0 {
		return ""
	}
	return targets[clamp(m.targetCursor, len(targets))]
}

// hosts returns the hosts of the highlighted target under the site filter.
func (m Model) hosts() []string {
	if m.snap.Inventory == nil || m.target() == "" {
		return nil
	}
	return m.snap.Inventory.HostsIn(m.target(), m.site())
}

// playbooks returns the playbooks relevant to the highlighted target.
func (m Model) playbooks() []playbook.Playbook {
	return playbook.Relevant(m.snap.Playbooks, m.target())
}

// currentPlaybook is the highlighted playbook entry.
func (m Model) currentPlaybook() (playbook.Playbook, bool) {
	books := m.playbooks()
	if len(books) == 0 {
		return playbook.Playbook{}, false
	}
	return books[clamp(m.bookCursor, len(books))], true
}

// selectionList returns the confirmed hosts in display order.
func (m Model) selectionList() []string {
	out := make([]string, 0, len(m.selected))
	for h := range m.selected {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

func (m *Model) setNotice(text string) {
	m.notice = text
	m.noticeUntil = time.Now().Add(noticeDuration)
}

// clampCursors keeps every cursor inside its list after catalog or filter
// changes, and prunes selected hosts that are no longer visible.
func (m *Model) clampCursors() {
	m.siteCursor = clamp(m.siteCursor, len(m.sites()))
	m.targetCursor = clamp(m.targetCursor, len(m.targets()))
	m.hostCursor = clamp(m.hostCursor, len(m.hosts()))
	m.bookCursor = clamp(m.bookCursor, len(m.playbooks()))

	visible := make(map[string]bool, len(m.hosts()))
	for _, h := range m.hosts() {
		visible[h] = true
	}
	for h := range m.selected {
		if !visible[h] {
			delete(m.selected, h)
		}
	}
}

func clamp(i, n int) int {
	if n == 0 {
		return 0
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
