package screenshot

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Tracker remembers the newest image written into a directory. Latest falls
// back to a directory scan when nothing has been seen yet or the remembered
// file is gone.
type Tracker struct {
	dir string

	mu   sync.Mutex
	last string
}

func NewTracker(dir string) *Tracker {
	return &Tracker{dir: dir}
}

func (t *Tracker) Dir() string { return t.dir }

// Latest returns the tracked file, or scans the directory.
func (t *Tracker) Latest() (string, error) {
	t.mu.Lock()
	last := t.last
	t.mu.Unlock()
	if last != "" {
		if _, err := os.Stat(last); err == nil {
			return last, nil
		}
	}
	path, err := Latest(t.dir)
	if err != nil {
		return "", err
	}
	t.Observe(path)
	return path, nil
}

// Observe records path as the newest image.
func (t *Tracker) Observe(path string) {
	t.mu.Lock()
	t.last = path
	t.mu.Unlock()
}

// Run watches the directory until ctx is done. A missing directory is
// created so a later screenshot tool can write into it.
func (t *Tracker) Run(ctx context.Context) error {
	if err := os.MkdirAll(t.dir, 0o755); err != nil {
		return fmt.Errorf("create screenshot directory: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(t.dir); err != nil {
		return fmt.Errorf("watch %s: %w", t.dir, err)
	}
	log.Printf("Screenshot tracker watching %s", t.dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Rename) {
				if IsImage(ev.Name) {
					if st, err := os.Stat(ev.Name); err == nil && !st.IsDir() {
						t.Observe(ev.Name)
					}
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("Screenshot tracker error: %v", err)
		}
	}
}
