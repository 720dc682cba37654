// Package watch runs a callback for files that settle in a folder.
package watch

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Monitor watches one folder and hands every matching file to Handle once
// it has stopped changing for the debounce period.
type Monitor struct {
	watcher  *fsnotify.Watcher
	dir      string
	match    func(path string) bool
	handle   func(path string)
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
	stop    chan struct{}
	done    chan struct{}
}

// New creates a Monitor; call Start to begin watching.
func New(dir string, match func(path string) bool, handle func(path string), debounce time.Duration) (*Monitor, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	return &Monitor{
		watcher:  w,
		dir:      dir,
		match:    match,
		handle:   handle,
		debounce: debounce,
		pending:  make(map[string]*time.Timer),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

// Start adds the folder and launches the event loop.
func (m *Monitor) Start() error {
	if err := os.MkdirAll(m.dir, 0755); err != nil {
		return fmt.Errorf("create folder: %w", err)
	}
	if err := m.watcher.Add(m.dir); err != nil {
		return fmt.Errorf("watch %s: %w", m.dir, err)
	}

	go m.loop()

	logrus.WithField("dir", m.dir).Info("watching folder")
	return nil
}

// Stop ends the event loop and drops files still waiting to settle.
func (m *Monitor) Stop() {
	close(m.stop)
	m.watcher.Close()
	<-m.done

	m.mu.Lock()
	defer m.mu.Unlock()
	for path, timer := range m.pending {
		timer.Stop()
		delete(m.pending, path)
	}
	logrus.WithField("dir", m.dir).Info("stopped watching folder")
}

func (m *Monitor) loop() {
	defer close(m.done)
	for {
		select {
		case <-m.stop:
			return
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			m.onEvent(event)
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			logrus.WithError(err).Error("watch error")
		}
	}
}

func (m *Monitor) onEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	path := event.Name
	if fi, err := os.Stat(path); err != nil || fi.IsDir() {
		return
	}
	if m.match != nil && !m.match(path) {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if timer, ok := m.pending[path]; ok {
		timer.Stop()
	}
	m.pending[path] = time.AfterFunc(m.debounce, func() { m.fire(path) })

	logrus.WithField("file", path).Debug("file changed")
}

func (m *Monitor) fire(path string) {
	m.mu.Lock()
	delete(m.pending, path)
	m.mu.Unlock()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return
	}
	m.handle(path)
}
