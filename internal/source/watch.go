package source

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-gitcontent/internal/logging"
	"github.com/goliatone/go-gitcontent/pkg/interfaces"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher calls a callback after files change under the watched collection
// directories of a local source. Bursts of events inside the debounce window
// collapse into one call.
type Watcher struct {
	root     string
	dirs     []string
	debounce time.Duration
	logger   interfaces.Logger
}

// NewWatcher watches each dir relative to root.
func NewWatcher(root string, dirs []string, debounce time.Duration, logger interfaces.Logger) *Watcher {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Watcher{root: root, dirs: dirs, debounce: debounce, logger: logger}
}

// Run blocks until ctx is done. Directories that do not exist yet are
// skipped; their parent is watched so creating them later triggers a call.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, dir := range w.dirs {
		target := filepath.Join(w.root, filepath.FromSlash(cleanDir(dir)))
		if !isDir(target) {
			target = filepath.Dir(target)
		}
		if err := watcher.Add(target); err != nil {
			w.logger.Warn("source.watch.add_failed", "path", target, "error", err)
			continue
		}
		w.logger.Debug("source.watch.added", "path", target)
	}

	// The debounce timer is drained by this loop, so onChange only ever
	// runs on the caller's goroutine and never after Run returns.
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
		case <-fire:
			fire = nil
			if ctx.Err() == nil {
				onChange()
			}
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if event.Has(fsnotify.Create) && isDir(event.Name) {
				if err := watcher.Add(event.Name); err != nil {
					w.logger.Warn("source.watch.add_failed", "path", event.Name, "error", err)
				}
			}
			w.logger.Debug("source.watch.event", "path", event.Name, "op", event.Op.String())
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
			w.logger.Error("source.watch.error", "error", err)
		}
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
