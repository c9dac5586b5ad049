package scan

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// A StaleWatcher marks the session stale when work units change on disk.
// The editor's dirty flag only covers unsaved changes; edits saved from
// the editor or made by other tools arrive through the filesystem.
type StaleWatcher struct {
	watcher *fsnotify.Watcher
	session *Session
	log     *slog.Logger
}

// WatchFolders starts watching the given work-unit folders. Empty folder
// paths are skipped so a watcher can be built before the first scan
// resolves them.
func WatchFolders(session *Session, log *slog.Logger, folders ...string) (*StaleWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("scan: creating watcher: %w", err)
	}
	for _, f := range folders {
		if f == "" {
			continue
		}
		if err := w.Add(f); err != nil {
			w.Close()
			return nil, fmt.Errorf("scan: watching %s: %w", f, err)
		}
	}
	return &StaleWatcher{watcher: w, session: session, log: log}, nil
}

// Run consumes filesystem events until ctx is cancelled or the watcher
// closes. Only events touching .wwu files mark the session stale.
func (sw *StaleWatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if !strings.EqualFold(filepath.Ext(ev.Name), ".wwu") {
				continue
			}
			sw.log.Debug("work unit changed on disk", "path", ev.Name)
			sw.session.MarkStale()
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.log.Warn("stale watcher error", "error", err)
		}
	}
}

// Close stops the underlying watcher; Run returns shortly after.
func (sw *StaleWatcher) Close() error {
	return sw.watcher.Close()
}
