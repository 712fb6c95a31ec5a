// Package core implements the watcher host: the reload driver loop, its
// socket handlers and the host lifecycle
package core

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dimasma0305/scriptwatch/internal/log"
	swerrors "github.com/dimasma0305/scriptwatch/internal/scriptwatch/errors"
	"github.com/dimasma0305/scriptwatch/internal/scriptwatch/watcher/capture"
	"github.com/dimasma0305/scriptwatch/internal/scriptwatch/watcher/database"
	"github.com/dimasma0305/scriptwatch/internal/scriptwatch/watcher/loader"
	"github.com/dimasma0305/scriptwatch/internal/scriptwatch/watcher/socket"
	"github.com/dimasma0305/scriptwatch/internal/scriptwatch/watcher/types"
)

// WatchState is the driver state
type WatchState int

const (
	// StateIdle means no timer is registered
	StateIdle WatchState = iota
	// StateWatching means the ticker goroutine is polling the script
	StateWatching
)

func (s WatchState) String() string {
	if s == StateWatching {
		return "watching"
	}
	return "idle"
}

// Watcher drives reloads of a single script and hosts the control socket
// and the journal
type Watcher struct {
	config types.WatcherConfig
	target loader.Target

	// mu serializes load attempts and every read of the live namespace
	mu     sync.Mutex
	loader *loader.Loader

	reloadRequested atomic.Bool

	// runMu guards the watch lifecycle below
	runMu       sync.Mutex
	watching    atomic.Bool
	watchCancel context.CancelFunc
	watchDone   chan struct{}

	db           *database.DB
	socketServer *socket.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a watcher for config.ScriptPath. Extra loader options are
// applied after the ones derived from config.
func New(config types.WatcherConfig, opts ...loader.Option) (*Watcher, error) {
	config = config.WithDefaults()

	target, err := loader.NewTarget(config.ScriptPath, config.RunEntrypoint)
	if err != nil {
		return nil, err
	}

	loaderOpts := append([]loader.Option{loader.WithRetryFailed(config.RetryFailed)}, opts...)
	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		config: config,
		target: target,
		loader: loader.New(target, loaderOpts...),
		db:     database.New(config.DatabasePath, config.DatabaseEnabled),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// Config returns the effective configuration
func (w *Watcher) Config() types.WatcherConfig {
	return w.config
}

// Target returns the watched script
func (w *Watcher) Target() loader.Target {
	return w.target
}

// State returns Watching while the ticker goroutine runs
func (w *Watcher) State() WatchState {
	if w.watching.Load() {
		return StateWatching
	}
	return StateIdle
}

// Running mirrors State for callers that only need a flag
func (w *Watcher) Running() bool {
	return w.watching.Load()
}

// RequestReload makes the next tick reload unconditionally. Requests made
// before the tick collapse into one.
func (w *Watcher) RequestReload() {
	w.reloadRequested.Store(true)
}

// ReloadPending reports whether a forced reload is waiting for a tick
func (w *Watcher) ReloadPending() bool {
	return w.reloadRequested.Load()
}

// Tick runs one driver step: a forced Load when requested, otherwise a
// CheckReload. The attempt runs under an OutputCapture.
func (w *Watcher) Tick() loader.Outcome {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.reloadRequested.Swap(false) {
		outcome, err := w.attempt(types.TriggerForced, true)
		if err != nil {
			// Nothing ran; keep the request for the next tick
			w.reloadRequested.Store(true)
		}
		return outcome
	}

	outcome, _ := w.attempt(types.TriggerChange, false)
	return outcome
}

// WithNamespace runs fn with the live namespace, nil before the first
// successful load, while no load can swap it out
func (w *Watcher) WithNamespace(fn func(ns *loader.Namespace, generation int64)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var gen int64
	if cur := w.loader.Current(); cur != nil {
		gen = cur.Generation
	}
	fn(w.loader.Namespace(), gen)
}

// attempt performs one capture-wrapped load or reload check. The caller
// holds w.mu. The error is non-nil only when the capture could not begin.
func (w *Watcher) attempt(trigger string, force bool) (loader.Outcome, error) {
	var outcome loader.Outcome
	start := time.Now()

	out, err := capture.Run(func() error {
		if force {
			outcome = w.loader.Load()
		} else {
			outcome = w.loader.CheckReload()
		}
		return nil
	})
	if err != nil {
		log.Error("Skipping tick for %s: %v", w.target.Path, err)
		return loader.NoChange, err
	}

	if outcome != loader.NoChange {
		w.report(trigger, outcome, out, time.Since(start))
	}
	return outcome, nil
}

// report surfaces captured text on the console and journals the attempt
func (w *Watcher) report(trigger string, outcome loader.Outcome, out capture.Output, elapsed time.Duration) {
	if w.config.ShowInConsole {
		log.ScriptOutput(out.Stdout)
		if outcome == loader.Failed {
			log.ScriptError(w.target.Path, out.Stderr)
		} else {
			log.ScriptStderr(out.Stderr)
		}
	}

	attempt := types.LoadAttempt{
		Timestamp: time.Now(),
		Script:    w.target.Path,
		Trigger:   trigger,
		Status:    outcome.String(),
		Duration:  elapsed.Nanoseconds(),
		Output:    out.Stdout,
		Error:     out.Stderr,
	}
	if cur := w.loader.Current(); cur != nil {
		attempt.Generation = cur.Generation
	}
	if outcome == loader.Loaded {
		attempt.ModTime = w.loader.LastModTime()
		log.Debug("Loaded %s (generation %d, %s trigger)", w.target.Path, attempt.Generation, trigger)
	} else {
		attempt.ModTime = w.loader.FailedModTime()
		log.Debug("Load of %s failed (%s trigger)", w.target.Path, trigger)
	}

	id := w.db.RecordLoad(attempt)

	level, message := "INFO", fmt.Sprintf("Script loaded (generation %d, %s)", attempt.Generation, trigger)
	var errText string
	if outcome == loader.Failed {
		level, message = "ERROR", fmt.Sprintf("Script failed to load (%s)", trigger)
		if cause := w.loader.LastError(); cause != nil {
			errText = cause.Error()
		}
	}
	w.db.LogToDatabase(level, "loader", w.target.ModuleName, message+" ["+id+"]", errText, elapsed.Milliseconds())
}

// initialLoad runs the synchronous first load of a watch session
func (w *Watcher) initialLoad() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	// A pending request is satisfied by this load
	w.reloadRequested.Store(false)

	outcome, err := w.attempt(types.TriggerInitial, true)
	if err != nil {
		return fmt.Errorf("%w: %w", swerrors.ErrInitialLoadFailed, err)
	}
	if outcome != loader.Loaded {
		if cause := w.loader.LastError(); cause != nil {
			return fmt.Errorf("%w: %w", swerrors.ErrInitialLoadFailed, cause)
		}
		return swerrors.ErrInitialLoadFailed
	}
	return nil
}
