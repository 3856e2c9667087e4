package mirror

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/PrashanthReddyGP/tasknotes-customized-fork/internal/models"
)

// Watch reparses the mirror file whenever something other than the
// mirror itself edits it, handing the parsed entries to onEdit. The
// parent directory is watched rather than the file so editors that
// replace the file via rename keep being observed. Blocks until ctx is
// done.
func (m *Mirror) Watch(ctx context.Context, onEdit func([]models.HistoryEntry)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if err := watcher.Add(dir); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(m.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			m.handleChange(onEdit)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("mirror watch: %v", err)
		}
	}
}

func (m *Mirror) handleChange(onEdit func([]models.HistoryEntry)) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("mirror watch: reading %s: %v", m.path, err)
		}
		return
	}
	if !m.ShouldImport(data) {
		return
	}
	onEdit(Parse(string(data), m.defaultPlanned, time.Now(), m.resolve))
}
