// Package watcher reports files dropped into an inbox directory.
package watcher

import (
	"context"
	"log"
	"time"

	"github.com/fsnotify/fsnotify"

	"ragchat/internal/extract"
)

// DefaultSettle is how long a file must go without events before it is
// reported.
const DefaultSettle = 500 * time.Millisecond

// Watcher emits paths of supported files created or written in a directory,
// once per burst of writes.
type Watcher struct {
	watcher *fsnotify.Watcher
	settle  time.Duration
}

func New() (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{watcher: w, settle: DefaultSettle}, nil
}

type settled struct {
	name string
	gen  int
}

type pending struct {
	timer *time.Timer
	gen   int
}

// Watch starts monitoring dir. The returned channel closes when ctx is done
// or the watcher is stopped.
func (w *Watcher) Watch(ctx context.Context, dir string) (<-chan string, error) {
	if err := w.watcher.Add(dir); err != nil {
		return nil, err
	}
	paths := make(chan string, 16)
	go func() {
		defer close(paths)
		done := make(chan struct{})
		defer close(done)
		ready := make(chan settled)
		timers := make(map[string]*pending)
		defer func() {
			for _, p := range timers {
				p.timer.Stop()
			}
		}()

		schedule := func(name string) {
			p, ok := timers[name]
			if !ok {
				p = &pending{}
				timers[name] = p
			} else {
				p.timer.Stop()
			}
			p.gen++
			s := settled{name: name, gen: p.gen}
			p.timer = time.AfterFunc(w.settle, func() {
				select {
				case ready <- s:
				case <-done:
				}
			})
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
					continue
				}
				if !extract.IsSupported(event.Name) {
					continue
				}
				schedule(event.Name)
			case s := <-ready:
				// a stale generation was superseded by a later write
				if p, ok := timers[s.name]; !ok || p.gen != s.gen {
					continue
				}
				delete(timers, s.name)
				select {
				case paths <- s.name:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				log.Printf("watcher: %v", err)
			}
		}
	}()
	return paths, nil
}

func (w *Watcher) Stop() error {
	return w.watcher.Close()
}
