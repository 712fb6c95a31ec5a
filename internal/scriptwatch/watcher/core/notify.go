package core

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/dimasma0305/scriptwatch/internal/log"
)

// notifier turns fsnotify events for one file into tick nudges. Editors
// often replace a file by rename, so the parent directory is watched.
type notifier struct {
	path    string
	watcher *fsnotify.Watcher
	nudges  chan struct{}
}

func newNotifier(path string) (*notifier, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	return &notifier{
		path:    filepath.Clean(path),
		watcher: fw,
		nudges:  make(chan struct{}, 1),
	}, nil
}

// Nudges delivers at most one pending nudge at a time
func (n *notifier) Nudges() <-chan struct{} {
	return n.nudges
}

// Run forwards relevant events until ctx ends or the watcher is closed
func (n *notifier) Run(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-n.watcher.Events:
				if !ok {
					return
				}
				if n.relevant(event) {
					n.nudge()
				}
			case err, ok := <-n.watcher.Errors:
				if !ok {
					return
				}
				log.Error("File watcher error: %v", err)
			}
		}
	}()
}

func (n *notifier) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != n.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

func (n *notifier) nudge() {
	select {
	case n.nudges <- struct{}{}:
	default:
	}
}

// Close stops the underlying fsnotify watcher
func (n *notifier) Close() {
	if err := n.watcher.Close(); err != nil {
		log.Error("Failed to close file watcher: %v", err)
	}
}
