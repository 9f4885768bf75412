package health

import (
	"context"
	"os"

	"github.com/fsnotify/fsnotify"
)

// WatchFile loads a JSON health snapshot file into the store and reloads it
// every time the file is written. It runs until ctx is cancelled.
//
// A failed reload keeps the previous snapshot active; the error is logged by
// the store's malformed-entry handling.
func (s *Store) WatchFile(ctx context.Context, path string) error {
	// Seed from the file if it already exists; a missing file just means the
	// feed has not delivered yet.
	if data, err := os.ReadFile(path); err == nil {
		if err := s.ApplyRaw(data); err != nil {
			s.log.Warn("initial health file rejected", "path", path, "err", err)
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	s.log.Info("watching health feed file", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Editors and pipelines often replace the file via rename
			// (atomic save), so catch Create as well as Write.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			data, err := os.ReadFile(path)
			if err != nil {
				s.log.Warn("health file read failed", "path", path, "err", err)
				continue
			}
			if err := s.ApplyRaw(data); err != nil {
				s.log.Warn("health file rejected, keeping last snapshot",
					"path", path, "err", err)
				continue
			}
			s.log.Info("health feed file reloaded", "path", path)

			// Re-add the file in case an atomic save replaced the inode.
			_ = watcher.Add(path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.log.Error("health file watcher error", "err", err)
		}
	}
}
