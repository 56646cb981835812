package config

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/codefionn/calcschnell/internal/logger"
)

// Watcher reloads a config file whenever it changes on disk
type Watcher struct {
	path      string
	watcher   *fsnotify.Watcher
	onChange  func(*Config)
	stopWatch chan struct{}
	closeOnce sync.Once
	done      chan struct{}
}

// Watch starts watching path. The parent directory is watched so editors
// that replace the file through a rename are picked up as well.
func Watch(path string, onChange func(*Config)) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	w := &Watcher{
		path:      absPath,
		watcher:   watcher,
		onChange:  onChange,
		stopWatch: make(chan struct{}),
		done:      make(chan struct{}),
	}
	go w.watchFile()
	return w, nil
}

// Close stops the watcher
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.stopWatch)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) watchFile() {
	defer close(w.done)

	for {
		select {
		case <-w.stopWatch:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Global().Error("config watcher error: %v", err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		// Half-written files fail to parse; the next write event retries.
		logger.Global().Warn("failed to reload config %s: %v", w.path, err)
		return
	}
	cfg.ApplyEnvironment()
	logger.Global().Info("reloaded config from %s", w.path)
	if w.onChange != nil {
		w.onChange(cfg)
	}
}
