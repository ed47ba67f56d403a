package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the bursts editors and atomic renames produce.
const DefaultDebounce = 100 * time.Millisecond

// File calls OnChange whenever Path is written, created or renamed into
// place. The parent directory is watched so atomic replaces are seen.
type File struct {
	Path     string
	OnChange func()
	Debounce time.Duration
	Logger   *slog.Logger
}

// Run blocks until ctx is cancelled.
func (f *File) Run(ctx context.Context) error {
	if f.OnChange == nil {
		return fmt.Errorf("watch: nil change func")
	}
	log := f.Logger
	if log == nil {
		log = slog.Default()
	}
	debounce := f.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch: add %s: %w", dir, err)
	}
	log.Debug("watching state file", "path", f.Path)

	name := filepath.Clean(f.Path)
	var (
		pending <-chan time.Time
		timer   *time.Timer
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != name {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			pending = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("state watcher error", "error", err)
		case <-pending:
			pending = nil
			log.Debug("state file changed", "path", f.Path)
			f.OnChange()
		}
	}
}
