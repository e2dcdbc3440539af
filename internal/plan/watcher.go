package plan

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/capstanhq/capstan/internal/logging"
)

// watchDebounce collapses the event bursts editors emit for a single save.
const watchDebounce = 50 * time.Millisecond

// Watcher reports external modifications to the plan artifact while the
// execution session runs. The session executes the plan it already parsed;
// the watcher only surfaces that the file on disk has diverged from it.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string // absolute plan path
	onChange func(path string)
	logger   *logging.Logger

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a watcher for the plan artifact at planPath. onChange
// is invoked (on the watcher goroutine) after each debounced modification.
func NewWatcher(planPath string, onChange func(string), logger *logging.Logger) (*Watcher, error) {
	if logger == nil {
		logger = logging.NopLogger()
	}

	abs, err := filepath.Abs(planPath)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the parent directory: editors replace files via rename, which a
	// watch on the file itself loses track of.
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	return &Watcher{
		watcher:  fsw,
		path:     abs,
		onChange: onChange,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}, nil
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start() {
	go w.watchLoop()
}

// Stop stops the watcher and releases its resources. Safe to call more than
// once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		_ = w.watcher.Close()
	})
}

func (w *Watcher) watchLoop() {
	debounceTimer := time.NewTimer(0)
	<-debounceTimer.C // drain initial timer

	pending := false

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			pending = true
			debounceTimer.Reset(watchDebounce)

		case <-debounceTimer.C:
			if !pending {
				continue
			}
			pending = false
			w.logger.Warn("plan artifact modified during execution", "path", w.path)
			if w.onChange != nil {
				w.onChange(w.path)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Debug("plan watcher error", "error", err.Error())
		}
	}
}
