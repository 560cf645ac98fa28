package configmanager

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher reloads a config file into the tree when it changes on disk.
// Each reload runs inside a change-tracking scope, and the resulting
// changeset is handed to the registered callbacks so they can react to
// exactly what changed.
type Watcher struct {
	adapter *Adapter
	path    string
	logger  zerolog.Logger

	mu       sync.Mutex
	fw       *fsnotify.Watcher
	onReload []func(*Changeset)
	stopCh   chan struct{}
}

// NewWatcher creates a watcher for path using the given adapter. The path
// is resolved to an absolute path immediately so later directory watching
// is unambiguous.
func NewWatcher(adapter *Adapter, path string, logger zerolog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %s: %w", path, err)
	}
	return &Watcher{
		adapter: adapter,
		path:    abs,
		logger:  logger.With().Str("component", "config-watcher").Str("file", abs).Logger(),
	}, nil
}

// OnReload registers a callback invoked after every successful reload with
// the changeset of that reload. Must be called before Start.
func (w *Watcher) OnReload(fn func(*Changeset)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReload = append(w.onReload, fn)
}

// Start begins watching. The containing directory is watched rather than
// the file itself: editors and atomic writers replace the file, which
// would silently kill an inode watch.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fw != nil {
		return fmt.Errorf("watcher already started")
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		fw.Close()
		return fmt.Errorf("failed to watch directory %s: %w", filepath.Dir(w.path), err)
	}

	w.fw = fw
	w.stopCh = make(chan struct{})
	go w.loop(fw, w.stopCh)

	w.logger.Info().Msg("config watcher started")
	return nil
}

func (w *Watcher) loop(fw *fsnotify.Watcher, stopCh chan struct{}) {
	base := filepath.Base(w.path)
	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.logger.Debug().Str("op", event.Op.String()).Msg("config file changed")
			if err := w.Reload(); err != nil {
				w.logger.Error().Err(err).Msg("config reload failed")
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Msg("file watcher error")
		case <-stopCh:
			return
		}
	}
}

// Reload loads the file once and notifies the reload callbacks. Safe to
// call manually, e.g. on SIGHUP.
func (w *Watcher) Reload() error {
	var loadErr error
	cs := w.adapter.section.TrackChanges(func() {
		loadErr = w.adapter.LoadFile(w.path, false)
	})
	if loadErr != nil {
		// Values apply key by key, so a file that fails partway through has
		// already touched the tree. Roll those back: a failed reload keeps
		// the previous configuration.
		cs.Reset()
		return loadErr
	}

	w.logger.Info().Int("changed_items", cs.Len()).Msg("config reloaded")

	w.mu.Lock()
	callbacks := make([]func(*Changeset), len(w.onReload))
	copy(callbacks, w.onReload)
	w.mu.Unlock()

	for _, fn := range callbacks {
		fn(cs)
	}
	return nil
}

// Stop ends watching. Safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fw == nil {
		return
	}
	close(w.stopCh)
	w.fw.Close()
	w.fw = nil
	w.logger.Info().Msg("config watcher stopped")
}
