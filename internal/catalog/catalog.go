// Package catalog owns the loaded inventory and playbook catalogs and their
// reload lifecycle. The TUI consumes read-only snapshots; reloads happen on
// an explicit action or (optionally) when the source files change on disk.
package catalog

import (
	"path/filepath"
	"sync"

	"github.com/pbdeck/pbdeck/internal/inventory"
	"github.com/pbdeck/pbdeck/internal/logger"
	"github.com/pbdeck/pbdeck/internal/playbook"
)

// Snapshot is one consistent view of both catalogs.
type Snapshot struct {
	Inventory *inventory.Catalog
	Playbooks []playbook.Playbook

	// LoadErrors holds non-fatal problems from the last load (broken
	// inventory files that were skipped). The snapshot stays usable.
	LoadErrors []error
}

// Catalog loads and caches the inventory and playbook catalogs.
type Catalog struct {
	inventoryGlob string
	playbookGlob  string
	log           logger.Logger

	mu   sync.RWMutex
	snap Snapshot
}

// New creates a catalog for the given glob patterns. Call Load before Snapshot.
func New(inventoryGlob, playbookGlob string, log logger.Logger) *Catalog {
	if log == nil {
		log = logger.Noop()
	}
	return &Catalog{
		inventoryGlob: inventoryGlob,
		playbookGlob:  playbookGlob,
		log:           log,
	}
}

// Load reads both catalogs from disk. A failed inventory load is fatal only
// when no file parsed at all; playbook load errors are fatal since they mean
// the glob itself is unusable.
func (c *Catalog) Load() error {
	inv, invErrs := inventory.LoadGlob(c.inventoryGlob)
	for _, err := range invErrs {
		c.log.Warn("inventory: %v", err)
	}
	if inv == nil && len(invErrs) > 0 {
		return invErrs[len(invErrs)-1]
	}

	books, err := playbook.LoadGlob(c.playbookGlob)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.snap = Snapshot{
		Inventory:  inv,
		Playbooks:  books,
		LoadErrors: invErrs,
	}
	c.mu.Unlock()

	c.log.Info("catalog loaded: %d groups, %d hosts, %d playbooks",
		len(inv.Groups), len(inv.Hosts), len(books))
	return nil
}

// Reload is the explicit reload action. Identical to Load; kept separate so
// call sites read naturally.
func (c *Catalog) Reload() error {
	return c.Load()
}

// Snapshot returns the last loaded view. Safe for concurrent use.
func (c *Catalog) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// watchDirs returns the directories the watcher must observe: the parent
// directories of both glob patterns.
func (c *Catalog) watchDirs() []string {
	dirs := []string{filepath.Dir(c.inventoryGlob), filepath.Dir(c.playbookGlob)}
	if dirs[0] == dirs[1] {
		return dirs[:1]
	}
	return dirs
}
