package core

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dimasma0305/scriptwatch/internal/log"
	swerrors "github.com/dimasma0305/scriptwatch/internal/scriptwatch/errors"
)

// StartWatch loads the script once and starts polling it. It is a no-op
// when already watching. Cancelling ctx stops the loop and returns the
// watcher to Idle.
func (w *Watcher) StartWatch(ctx context.Context) error {
	w.runMu.Lock()
	defer w.runMu.Unlock()

	if w.watching.Load() {
		return nil
	}

	if err := checkScript(w.target.Path); err != nil {
		return err
	}

	if err := w.initialLoad(); err != nil {
		return err
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	var nudges <-chan struct{}
	var stopNotify func()
	if w.config.Notify {
		n, err := newNotifier(w.target.Path)
		if err != nil {
			log.Error("Change notifications unavailable, polling only: %v", err)
		} else {
			nudges = n.Nudges()
			stopNotify = n.Close
			n.Run(loopCtx)
		}
	}

	w.watchCancel = cancel
	w.watchDone = done
	w.watching.Store(true)

	go w.loop(loopCtx, w.config.PollInterval, nudges, stopNotify, done)

	log.Info("👀 Watching %s every %v", w.target.Path, w.config.PollInterval)
	w.db.LogToDatabase("INFO", "watcher", w.target.ModuleName, "Watch started", "", 0)
	return nil
}

// StopWatch stops polling and waits for an in-flight tick to finish
func (w *Watcher) StopWatch() {
	w.runMu.Lock()
	defer w.runMu.Unlock()

	if w.watchCancel == nil {
		return
	}

	w.watchCancel()
	<-w.watchDone
	w.watchCancel = nil
	w.watchDone = nil

	log.Info("Stopped watching %s", w.target.Path)
	w.db.LogToDatabase("INFO", "watcher", w.target.ModuleName, "Watch stopped", "", 0)
}

// loop ticks on the poll interval and on change nudges until ctx ends
func (w *Watcher) loop(ctx context.Context, interval time.Duration, nudges <-chan struct{}, stopNotify func(), done chan struct{}) {
	defer close(done)
	defer w.watching.Store(false)
	if stopNotify != nil {
		defer stopNotify()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-nudges:
		}

		if ctx.Err() != nil {
			return
		}
		w.Tick()
	}
}

// checkScript requires path to be an existing regular file
func checkScript(path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", swerrors.ErrScriptNotFound, path)
	}
	return nil
}
