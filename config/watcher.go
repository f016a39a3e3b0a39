package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the watcher waits after the last change event
// before reloading.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reloads a settings file when it changes on disk. Invalid files are
// logged and ignored; the previous settings stay current.
//
// Callbacks run on the watcher's goroutine. Hosts that apply settings to a
// Simulation should hand them to their frame loop (for example over a
// channel) rather than mutate the simulation from the callback.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *zap.Logger
	fs       *fsnotify.Watcher

	mu        sync.RWMutex
	current   Settings
	callbacks []func(Settings)

	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewWatcher loads path and starts watching it. A zero debounce means
// DefaultDebounce; a nil logger is replaced by a no-op logger.
func NewWatcher(path string, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	initial, err := Load(path)
	if err != nil {
		return nil, err
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: failed to create file watcher: %w", err)
	}
	// Watch the directory so editors that replace the file by rename are seen.
	if err := fs.Add(filepath.Dir(path)); err != nil {
		fs.Close()
		return nil, fmt.Errorf("config: failed to watch %s: %w", path, err)
	}

	w := &Watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		logger:   logger,
		fs:       fs,
		current:  initial,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.watchLoop()

	logger.Info("configuration hot reloading enabled", zap.String("path", path))
	return w, nil
}

// Settings returns the current settings.
func (w *Watcher) Settings() Settings {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// OnChange registers fn to receive every successfully reloaded Settings.
func (w *Watcher) OnChange(fn func(Settings)) {
	w.mu.Lock()
	w.callbacks = append(w.callbacks, fn)
	w.mu.Unlock()
}

// Stop stops watching and waits for the watch goroutine to exit. It is safe
// to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
	<-w.done
}

func (w *Watcher) watchLoop() {
	defer close(w.done)
	defer w.fs.Close()

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.logger.Debug("configuration file changed",
				zap.String("file", event.Name),
				zap.String("operation", event.Op.String()),
			)
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, w.reload)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", zap.Error(err))

		case <-w.stopCh:
			w.logger.Info("stopping configuration watcher")
			return
		}
	}
}

func (w *Watcher) reload() {
	select {
	case <-w.stopCh:
		return
	default:
	}

	next, err := Load(w.path)
	if err != nil {
		w.logger.Error("invalid configuration after reload", zap.Error(err))
		return
	}

	w.mu.Lock()
	if next == w.current {
		w.mu.Unlock()
		w.logger.Debug("configuration unchanged after reload")
		return
	}
	w.current = next
	callbacks := make([]func(Settings), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	for i, cb := range callbacks {
		w.notify(i, cb, next)
	}
	w.logger.Info("configuration reloaded", zap.Int("callbacks_notified", len(callbacks)))
}

func (w *Watcher) notify(idx int, cb func(Settings), s Settings) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("configuration callback panicked",
				zap.Int("callback_index", idx),
				zap.Any("panic", r),
			)
		}
	}()
	cb(s)
}
