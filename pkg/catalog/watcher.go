package catalog

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the burst of events an editor or importer
// produces when rewriting a data file.
const watchDebounce = 500 * time.Millisecond

// Watcher observes a data directory and invokes a reload callback after
// any catalog file changes settle. Events for unrelated files (temp
// files, the sqlite source db) are ignored.
type Watcher struct {
	dir      string
	logger   *slog.Logger
	onChange func()
}

// NewWatcher creates a watcher for dir. onChange runs on the watcher
// goroutine after each settled burst of relevant events.
func NewWatcher(dir string, logger *slog.Logger, onChange func()) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{dir: dir, logger: logger, onChange: onChange}
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return err
	}
	w.logger.Info("watching data directory", "dir", w.dir)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !isCatalogFile(event.Name) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			w.logger.Debug("data file changed", "file", filepath.Base(event.Name), "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					<-timerC
				}
				timer.Reset(watchDebounce)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		case <-timerC:
			timer = nil
			timerC = nil
			w.logger.Info("data directory changed, reloading")
			w.onChange()
		}
	}
}

// isCatalogFile reports whether a changed path is one of the files the
// catalog loader reads.
func isCatalogFile(path string) bool {
	switch filepath.Base(path) {
	case CompoundsFile, InteractionsFile, SourcesFile, RulesFile, SnapshotFile:
		return true
	}
	// Atomic writers rename temp files into place.
	return strings.HasSuffix(path, ".csv") || strings.HasSuffix(path, ".yaml")
}
