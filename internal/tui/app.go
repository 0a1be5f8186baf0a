package tui

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/pbdeck/pbdeck/internal/catalog"
	"github.com/pbdeck/pbdeck/internal/config"
	"github.com/pbdeck/pbdeck/internal/engine"
	"github.com/pbdeck/pbdeck/internal/errors"
	"github.com/pbdeck/pbdeck/internal/logger"
	"github.com/pbdeck/pbdeck/internal/outbuf"
)

// Options configures the interactive console.
type Options struct {
	Config     *config.Config
	SiteFilter string // pre-locks the site pane, matched case-insensitively
	NoSplash   bool
	Log        logger.Logger
}

// Run starts the console and blocks until the operator quits. The engine
// and catalog watcher run on their own goroutines and wake the UI through
// program.Send; the UI goroutine itself never touches process I/O.
func Run(opts Options) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New(errors.ErrRun,
			"pbdeck needs an interactive terminal",
			"Use `pbdeck run` for non-interactive execution")
	}

	cfg := opts.Config
	log := opts.Log
	if log == nil {
		log = logger.Noop()
	}

	cat := catalog.New(cfg.InventoryGlob, cfg.PlaybookGlob, log)
	if err := cat.Load(); err != nil {
		return err
	}

	buf := outbuf.New(cfg.Output.BufferLines)
	eng := engine.New(cfg.Engine, buf, log)

	model := NewModel(cfg, cat, eng, buf, log, opts.SiteFilter, opts.NoSplash)
	program := tea.NewProgram(model, tea.WithAltScreen())

	eng.SetNotify(func() { program.Send(outputMsg{}) })

	if cfg.WatchCatalog {
		stop, err := cat.Watch(func(s catalog.Snapshot) {
			program.Send(catalogReloadedMsg{snap: s})
		})
		if err != nil {
			log.Warn("tui: catalog watch unavailable: %v", err)
		} else {
			defer stop()
		}
	}

	_, err := program.Run()

	// Never leave a run orphaned behind the UI.
	if eng.Running() {
		eng.Cancel()
		eng.Wait()
	}
	return err
}
