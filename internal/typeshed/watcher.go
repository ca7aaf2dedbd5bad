package typeshed

import (
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// Watcher reloads stub files into a Registry when they change on disk, so a
// long-running driver picks up mapping edits without restarting.
type Watcher struct {
	registry *Registry
	fsw      *fsnotify.Watcher
	done     chan struct{}

	// Errors carries reload failures; the driver drains it or they are
	// dropped when the buffer fills.
	Errors chan error
}

// NewWatcher starts watching dir. The directory is loaded once before the
// watch begins so the registry never observes a partial state.
func NewWatcher(registry *Registry, dir string) (*Watcher, error) {
	if err := registry.LoadDir(dir); err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create watcher")
	}

	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, errors.Wrapf(err, "watch %s", dir)
	}

	w := &Watcher{
		registry: registry,
		fsw:      fsw,
		done:     make(chan struct{}),
		Errors:   make(chan error, 16),
	}

	go w.run()

	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(ev.Name, ".pyi") {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := w.registry.LoadFile(ev.Name); err != nil {
				select {
				case w.Errors <- err:
				default:
				}
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		}
	}
}

// Close stops the watch loop and releases the inotify handle.
func (w *Watcher) Close() error {
	close(w.done)

	return w.fsw.Close()
}
