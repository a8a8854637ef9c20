package ml

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/cardiometrix/riskd/internal/artifact"
)

// Watcher reloads the manager when another writer commits a new artifact
// pair into the shared directory, e.g. a sibling replica training against
// the same volume. Reload ignores versions already active, so events caused
// by this process's own saves are no-ops.
type Watcher struct {
	fsw  *fsnotify.Watcher
	done chan struct{}
}

// WatchArtifacts starts watching the manager's artifact directory. The
// directory must exist before the watch is established.
func (m *Manager) WatchArtifacts() (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create artifact watcher: %w", err)
	}
	if err := fsw.Add(m.store.Dir()); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch artifact dir: %w", err)
	}

	w := &Watcher{fsw: fsw, done: make(chan struct{})}
	metaName := filepath.Base(m.store.MetadataPath())

	go func() {
		defer close(w.done)
		for {
			select {
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				// the metadata rename is the commit point of a pair
				if filepath.Base(event.Name) != metaName {
					continue
				}
				if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Rename) {
					continue
				}
				if err := m.Reload(); err != nil && !errors.Is(err, artifact.ErrNotFound) {
					m.logger.Warn("artifact reload failed", zap.Error(err))
				}
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				m.logger.Warn("artifact watcher error", zap.Error(err))
			}
		}
	}()

	m.logger.Info("watching artifact dir", zap.String("dir", m.store.Dir()))
	return w, nil
}

// Close stops the watcher and waits for its event loop to drain.
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	<-w.done
	return err
}
