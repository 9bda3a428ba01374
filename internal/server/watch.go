package server

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Loader reads a fresh copy of the served database.
type Loader func(ctx context.Context) (Database, error)

const reloadDebounce = 100 * time.Millisecond

// Reload replaces the database with the result of load. On failure the
// current database stays in place.
func (s *Server) Reload(ctx context.Context, load Loader) error {
	db, err := load(ctx)
	s.metrics.RecordReload(err == nil)
	if err != nil {
		s.log.Error().Err(err).Msg("database reload failed")
		return err
	}
	s.SetDatabase(db)
	s.log.Info().Int("phases", len(db.PhaseNames())).Msg("database reloaded")
	return nil
}

// Watch reloads the database whenever the file at path is written or
// replaced, until ctx is done.
func (s *Server) Watch(ctx context.Context, path string, load Loader) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	// Editors often save by renaming over the file, so watch its directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}
	go s.watchLoop(ctx, watcher, filepath.Clean(path), load)
	return nil
}

func (s *Server) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string, load Loader) {
	defer func() { _ = watcher.Close() }()

	var debounce *time.Timer
	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, func() {
				s.log.Debug().Str("path", path).Msg("change detected")
				_ = s.Reload(ctx, load)
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn().Err(err).Msg("watcher error")
		}
	}
}
