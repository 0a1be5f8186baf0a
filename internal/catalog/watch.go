package catalog

import (
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pbdeck/pbdeck/internal/errors"
)

// debounce coalesces bursts of file events (editors write several times per
// save) into a single reload.
const debounce = 500 * time.Millisecond

// Watch reloads the catalog when inventory or playbook files change and
// calls onReload with the fresh snapshot. It returns a stop function.
// Reload failures are logged and skipped; the previous snapshot stays live.
func (c *Catalog) Watch(onReload func(Snapshot)) (func(), error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCatalog,
			"Cannot start catalog watcher",
			"Disable watch_catalog in your config to skip file watching")
	}

	for _, dir := range c.watchDirs() {
		if err := w.Add(dir); err != nil {
			// Non-fatal: the directory may not exist yet.
			c.log.Warn("watch: cannot watch %s: %v", dir, err)
		}
	}

	done := make(chan struct{})
	go func() {
		var timer *time.Timer
		var timerC <-chan time.Time
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(debounce)
					timerC = timer.C
				} else {
					timer.Reset(debounce)
				}
			case <-timerC:
				timer = nil
				timerC = nil
				if err := c.Reload(); err != nil {
					c.log.Warn("watch: reload failed: %v", err)
					continue
				}
				if onReload != nil {
					onReload(c.Snapshot())
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				c.log.Warn("watch: %v", err)
			case <-done:
				return
			}
		}
	}()

	stop := func() {
		close(done)
		_ = w.Close()
	}
	return stop, nil
}
