package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultSettle is how long the watcher waits after the last change before
// reloading. Editors often write a file more than once per save.
const DefaultSettle = 100 * time.Millisecond

// Watcher reloads the config when the config file, or a file registered with
// WatchFile, changes. Handlers run on the watcher goroutine.
type Watcher struct {
	path    string
	logger  *zap.Logger
	fs      *fsnotify.Watcher
	settle  time.Duration
	done    chan struct{}
	stop    sync.Once
	stopped sync.WaitGroup

	mu       sync.RWMutex
	config   *Config
	files    map[string]struct{}
	handlers []func(*Config)
}

// NewWatcher loads the config at path and prepares to watch it. Call Start
// to begin watching.
func NewWatcher(path string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:   path,
		logger: logger,
		fs:     fs,
		settle: DefaultSettle,
		done:   make(chan struct{}),
		config: cfg,
		files:  make(map[string]struct{}),
	}
	if err := w.WatchFile(path); err != nil {
		fs.Close()
		return nil, err
	}
	return w, nil
}

// WatchFile adds a file whose changes trigger a reload, such as a layout the
// config points to. Its directory is watched so that saves by rename are seen.
func (w *Watcher) WatchFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.files[abs]; ok {
		return nil
	}
	if err := w.fs.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	w.files[abs] = struct{}{}
	return nil
}

// Start watches in the background until Stop.
func (w *Watcher) Start() {
	w.stopped.Add(1)
	go func() {
		defer w.stopped.Done()
		w.watch()
	}()
}

// Stop ends watching and waits for a reload in progress. It is safe to call
// more than once.
func (w *Watcher) Stop() {
	w.stop.Do(func() {
		close(w.done)
		w.fs.Close()
	})
	w.stopped.Wait()
}

// OnReload registers a handler for reloaded configs.
func (w *Watcher) OnReload(handler func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, handler)
}

// Get returns the current config.
func (w *Watcher) Get() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

func (w *Watcher) watch() {
	var settled <-chan time.Time
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				if w.watched(ev.Name) {
					w.logger.Debug("watched file changed", zap.String("file", ev.Name))
					settled = time.After(w.settle)
				}
			}
		case <-settled:
			settled = nil
			w.reload()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) watched(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.files[abs]
	return ok
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Warn("keeping current config", zap.String("path", w.path), zap.Error(err))
		return
	}

	w.mu.Lock()
	w.config = cfg
	handlers := append(([]func(*Config))(nil), w.handlers...)
	w.mu.Unlock()

	w.logger.Info("config reloaded", zap.String("path", w.path))
	for _, h := range handlers {
		h(cfg)
	}
}
