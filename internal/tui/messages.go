package tui

import (
	"time"

	"github.com/pbdeck/pbdeck/internal/catalog"
)

// outputMsg signals that the output buffer or the session state changed.
// It carries no payload: Update re-snapshots the shared state instead of
// having the engine's goroutines marshal lines through messages.
type outputMsg struct{}

// catalogReloadedMsg delivers a fresh snapshot from the file watcher.
type catalogReloadedMsg struct {
	snap catalog.Snapshot
}

// tickMsg drives the spinner, elapsed-time display and notice expiry.
type tickMsg time.Time

// splashDoneMsg ends the startup splash when its timer fires.
type splashDoneMsg struct{}
