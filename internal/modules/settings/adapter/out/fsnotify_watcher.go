package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	settingsout "worktrack/internal/modules/settings/port/out"
	"worktrack/internal/platform/logging"
)

const DefaultDebounce = 200 * time.Millisecond

// FileWatcher reports changes to one file. It watches the parent directory
// so editors that save by rename are still seen, and collapses a burst of
// events into one notification once the file has been quiet for debounce.
type FileWatcher struct {
	path     string
	debounce time.Duration
	log      *zap.Logger
}

func NewFileWatcher(path string, debounce time.Duration, logger *zap.Logger) settingsout.ChangeNotifier {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &FileWatcher{path: filepath.Clean(path), debounce: debounce, log: logging.OrNop(logger).Named("settings-watcher")}
}

func (w *FileWatcher) Watch(ctx context.Context, notify func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("new watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.log.Debug("watching settings", zap.String("path", w.path))

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("settings watcher error", zap.Error(err))
		case <-fire:
			fire = nil
			notify()
		}
	}
}
