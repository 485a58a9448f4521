package app

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// Watcher polls a design file and reports each modification. It is used to
// re-render a design while it is edited by another tool.
type Watcher struct {
	path     string
	baseline time.Time
	interval time.Duration
}

// NewWatcher creates a watcher for path, taking its current modification
// time as the baseline.
func NewWatcher(path string, interval time.Duration) (*Watcher, error) {
	// Editors that save by rename replace the link target, so watch the
	// resolved file.
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		path = resolved
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return &Watcher{path: path, baseline: info.ModTime(), interval: interval}, nil
}

// Path returns the watched file.
func (w *Watcher) Path() string { return w.path }

// Baseline returns the modification time last reported.
func (w *Watcher) Baseline() time.Time { return w.baseline }

// Changed reports whether the file was modified since the baseline, and if
// so moves the baseline forward.
func (w *Watcher) Changed() bool {
	info, err := os.Stat(w.path)
	if err != nil || !info.ModTime().After(w.baseline) {
		return false
	}
	w.baseline = info.ModTime()
	return true
}

// Run calls onChange after every modification until ctx is done. A failing
// callback stops the watch and its error is returned.
func (w *Watcher) Run(ctx context.Context, onChange func() error) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if w.Changed() {
				if err := onChange(); err != nil {
					return err
				}
			}
		}
	}
}
