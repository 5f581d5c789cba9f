package zmconfig

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a Config from disk whenever its backing file changes,
// rejecting any revision whose schema is incompatible with the build
// instead of applying it. Region growth after a Heap has been built is
// still a non-goal: the watcher exists to catch a stale or
// cross-revision config drifting under a running process, not to
// resize an already-initialized Heap.
type Watcher struct {
	w       *fsnotify.Watcher
	path    string
	updates chan Config
	errs    chan error
}

// NewWatcher starts watching path for writes and reports freshly
// loaded, schema-validated Config values on Updates().
func NewWatcher(path string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("zmconfig: create watcher: %w", err)
	}

	if err := w.Add(path); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("zmconfig: watch %s: %w", path, err)
	}

	cw := &Watcher{
		w:       w,
		path:    path,
		updates: make(chan Config, 1),
		errs:    make(chan error, 1),
	}
	go cw.loop()

	return cw, nil
}

func (cw *Watcher) loop() {
	for {
		select {
		case ev, ok := <-cw.w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			cfg, err := Load(cw.path)
			if err != nil {
				select {
				case cw.errs <- err:
				default:
				}
				continue
			}

			select {
			case cw.updates <- cfg:
			default:
				// Drop a stale pending update in favor of the fresher one.
				select {
				case <-cw.updates:
				default:
				}
				cw.updates <- cfg
			}

		case err, ok := <-cw.w.Errors:
			if !ok {
				return
			}
			select {
			case cw.errs <- err:
			default:
			}
		}
	}
}

// Updates returns the channel of successfully reloaded configs.
func (cw *Watcher) Updates() <-chan Config { return cw.updates }

// Errors returns the channel of reload failures (I/O errors, schema
// rejections).
func (cw *Watcher) Errors() <-chan error { return cw.errs }

// Close stops watching and releases the underlying fsnotify handle.
func (cw *Watcher) Close() error { return cw.w.Close() }
