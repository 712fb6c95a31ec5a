package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	lua "github.com/yuin/gopher-lua"

	swerrors "github.com/dimasma0305/scriptwatch/internal/scriptwatch/errors"
	"github.com/dimasma0305/scriptwatch/internal/scriptwatch/watcher/loader"
	"github.com/dimasma0305/scriptwatch/internal/scriptwatch/watcher/socket"
	"github.com/dimasma0305/scriptwatch/internal/scriptwatch/watcher/types"
)

var baseTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func writeScript(t *testing.T, path, src string, mtime time.Time) {
	t.Helper()
	if err := os.WriteFile(path, []byte(src), 0600); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("failed to set script mtime: %v", err)
	}
}

// testConfig polls once an hour so tests drive ticks by hand
func testConfig(path string) types.WatcherConfig {
	return types.WatcherConfig{
		ScriptPath:   path,
		PollInterval: time.Hour,
		DatabasePath: filepath.Join(filepath.Dir(path), "journal.db"),
		SocketPath:   filepath.Join(filepath.Dir(path), "w.sock"),
	}
}

func newTestWatcher(t *testing.T, src string, mutate func(*types.WatcherConfig), opts ...loader.Option) (*Watcher, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "script.lua")
	writeScript(t, path, src, baseTime)

	cfg := testConfig(path)
	if mutate != nil {
		mutate(&cfg)
	}

	opts = append([]loader.Option{loader.WithRegistry(loader.NewRegistry())}, opts...)
	w, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(func() {
		w.StopWatch()
		w.mu.Lock()
		w.loader.Close()
		w.mu.Unlock()
		_ = w.db.Close()
	})
	return w, path
}

// global reads a global of the live namespace
func global(t *testing.T, w *Watcher, name string) any {
	t.Helper()
	var v any
	w.WithNamespace(func(ns *loader.Namespace, _ int64) {
		if ns == nil {
			t.Fatalf("no namespace loaded")
		}
		v, _ = ns.Lookup(name)
	})
	return v
}

func generation(w *Watcher) int64 {
	var gen int64
	w.WithNamespace(func(_ *loader.Namespace, g int64) { gen = g })
	return gen
}

func counter(n *int) lua.LGFunction {
	return func(_ *lua.LState) int {
		*n++
		return 0
	}
}

// eventually polls cond until it holds or the deadline passes
func eventually(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestNew_RejectsBlankPath(t *testing.T) {
	if _, err := New(types.WatcherConfig{}); err == nil {
		t.Fatal("New() should fail without a script path")
	}
}

func TestNew_AppliesDefaults(t *testing.T) {
	w, err := New(types.WatcherConfig{ScriptPath: "script.lua"})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if w.Config().PollInterval != 500*time.Millisecond {
		t.Errorf("PollInterval = %v, want 500ms", w.Config().PollInterval)
	}
	if !filepath.IsAbs(w.Target().Path) {
		t.Errorf("target path %q should be absolute", w.Target().Path)
	}
	if w.State() != StateIdle {
		t.Errorf("State() = %v, want idle", w.State())
	}
}

func TestWatcher_EditScenario(t *testing.T) {
	w, path := newTestWatcher(t, "x = 1", nil)

	if err := w.StartWatch(context.Background()); err != nil {
		t.Fatalf("StartWatch() failed: %v", err)
	}
	if w.State() != StateWatching {
		t.Fatalf("State() = %v, want watching", w.State())
	}
	if got := global(t, w, "x"); got != float64(1) {
		t.Fatalf("x = %v after start, want 1", got)
	}

	steps := []struct {
		src     string
		want    loader.Outcome
		wantX   float64
		wantGen int64
	}{
		{"x = 2", loader.Loaded, 2, 2},
		{"x = = 3", loader.Failed, 2, 2},
		{"x = 3", loader.Loaded, 3, 3},
	}
	for i, step := range steps {
		writeScript(t, path, step.src, baseTime.Add(time.Duration(i+1)*time.Second))

		if got := w.Tick(); got != step.want {
			t.Fatalf("step %d (%q): Tick() = %v, want %v", i, step.src, got, step.want)
		}
		if got := global(t, w, "x"); got != step.wantX {
			t.Errorf("step %d: x = %v, want %v", i, got, step.wantX)
		}
		if got := generation(w); got != step.wantGen {
			t.Errorf("step %d: generation = %d, want %d", i, got, step.wantGen)
		}
	}
}

func TestWatcher_TickIsIdempotent(t *testing.T) {
	w, path := newTestWatcher(t, "x = 1", nil)
	if err := w.StartWatch(context.Background()); err != nil {
		t.Fatal(err)
	}

	if got := w.Tick(); got != loader.NoChange {
		t.Errorf("Tick() without edit = %v, want unchanged", got)
	}

	writeScript(t, path, "x = 2", baseTime.Add(time.Second))
	if got := w.Tick(); got != loader.Loaded {
		t.Fatalf("Tick() after edit = %v, want loaded", got)
	}
	for i := 0; i < 3; i++ {
		if got := w.Tick(); got != loader.NoChange {
			t.Errorf("repeat Tick() %d = %v, want unchanged", i, got)
		}
	}
}

func TestWatcher_ForceReloadRunsOnce(t *testing.T) {
	var runs int
	w, _ := newTestWatcher(t, "bump()", nil, loader.WithBinding("bump", counter(&runs)))
	if err := w.StartWatch(context.Background()); err != nil {
		t.Fatal(err)
	}
	if runs != 1 {
		t.Fatalf("runs = %d after start, want 1", runs)
	}

	// Requests before the tick collapse into one
	w.RequestReload()
	w.RequestReload()
	if !w.ReloadPending() {
		t.Error("ReloadPending() = false after RequestReload")
	}

	if got := w.Tick(); got != loader.Loaded {
		t.Fatalf("forced Tick() = %v, want loaded", got)
	}
	if got := w.Tick(); got != loader.NoChange {
		t.Errorf("Tick() after forced reload = %v, want unchanged", got)
	}
	if runs != 2 {
		t.Errorf("runs = %d, want 2", runs)
	}
	if w.ReloadPending() {
		t.Error("ReloadPending() = true after the flag was consumed")
	}
}

func TestWatcher_FailureIsolation(t *testing.T) {
	w, path := newTestWatcher(t, "x = 1\nfunction greet() return 'hi' end", nil)
	if err := w.StartWatch(context.Background()); err != nil {
		t.Fatal(err)
	}

	writeScript(t, path, "x = 99\nerror('boom')", baseTime.Add(time.Second))
	if got := w.Tick(); got != loader.Failed {
		t.Fatalf("Tick() = %v, want failed", got)
	}

	if got := global(t, w, "x"); got != float64(1) {
		t.Errorf("x = %v, want the previous version's 1", got)
	}
	if got := global(t, w, "greet"); got != "<function>" {
		t.Errorf("greet = %v, want the previous version's function", got)
	}
	if w.State() != StateWatching {
		t.Errorf("State() = %v, a failed load must not stop watching", w.State())
	}

	// A failed version is not retried until the file changes
	if got := w.Tick(); got != loader.NoChange {
		t.Errorf("Tick() on known-bad version = %v, want unchanged", got)
	}
}

func TestWatcher_TickRestoresStreams(t *testing.T) {
	w, path := newTestWatcher(t, "x = 1", nil)
	if err := w.StartWatch(context.Background()); err != nil {
		t.Fatal(err)
	}

	stdout, stderr := os.Stdout, os.Stderr
	writeScript(t, path, "print('noise')\nerror('boom')", baseTime.Add(time.Second))
	w.Tick()

	if os.Stdout != stdout || os.Stderr != stderr {
		t.Error("process streams were not restored after a failed tick")
	}
}

func TestWatcher_StartWatchErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		w, path := newTestWatcher(t, "x = 1", nil)
		if err := os.Remove(path); err != nil {
			t.Fatal(err)
		}
		err := w.StartWatch(context.Background())
		if !errors.Is(err, swerrors.ErrScriptNotFound) {
			t.Fatalf("StartWatch() = %v, want ErrScriptNotFound", err)
		}
		if w.State() != StateIdle {
			t.Error("watcher should stay idle")
		}
	})

	t.Run("directory", func(t *testing.T) {
		w, path := newTestWatcher(t, "x = 1", nil)
		if err := os.Remove(path); err != nil {
			t.Fatal(err)
		}
		if err := os.Mkdir(path, 0750); err != nil {
			t.Fatal(err)
		}
		if err := w.StartWatch(context.Background()); !errors.Is(err, swerrors.ErrScriptNotFound) {
			t.Fatalf("StartWatch() = %v, want ErrScriptNotFound", err)
		}
	})

	t.Run("bad initial load", func(t *testing.T) {
		w, _ := newTestWatcher(t, "this is not lua", nil)
		err := w.StartWatch(context.Background())
		if !errors.Is(err, swerrors.ErrInitialLoadFailed) {
			t.Fatalf("StartWatch() = %v, want ErrInitialLoadFailed", err)
		}
		if !strings.Contains(err.Error(), "script.lua") {
			t.Errorf("error should carry the cause, got: %v", err)
		}
		if w.State() != StateIdle {
			t.Error("no timer may be registered after a failed initial load")
		}
	})
}

func TestWatcher_StartStop(t *testing.T) {
	var runs int
	w, _ := newTestWatcher(t, "bump()", nil, loader.WithBinding("bump", counter(&runs)))

	if err := w.StartWatch(context.Background()); err != nil {
		t.Fatal(err)
	}
	// Already watching: no second initial load
	if err := w.StartWatch(context.Background()); err != nil {
		t.Fatal(err)
	}
	if runs != 1 {
		t.Errorf("runs = %d, want 1", runs)
	}

	w.StopWatch()
	if w.State() != StateIdle {
		t.Errorf("State() = %v after StopWatch, want idle", w.State())
	}
	w.StopWatch()

	if err := w.StartWatch(context.Background()); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	if runs != 2 {
		t.Errorf("runs = %d after restart, want 2", runs)
	}
}

func TestWatcher_ContextCancelReturnsToIdle(t *testing.T) {
	w, _ := newTestWatcher(t, "x = 1", nil)

	ctx, cancel := context.WithCancel(context.Background())
	if err := w.StartWatch(ctx); err != nil {
		t.Fatal(err)
	}
	cancel()

	if !eventually(t, 2*time.Second, func() bool { return w.State() == StateIdle }) {
		t.Fatal("watcher did not return to idle after cancellation")
	}
}

func TestWatcher_LoopPicksUpChanges(t *testing.T) {
	w, path := newTestWatcher(t, "x = 1", func(c *types.WatcherConfig) {
		c.PollInterval = 20 * time.Millisecond
	})
	if err := w.StartWatch(context.Background()); err != nil {
		t.Fatal(err)
	}

	writeScript(t, path, "x = 2", baseTime.Add(time.Minute))

	if !eventually(t, 3*time.Second, func() bool { return generation(w) >= 2 }) {
		t.Fatal("ticker did not reload the edited script")
	}
	if got := global(t, w, "x"); got != float64(2) {
		t.Errorf("x = %v, want 2", got)
	}
}

func TestWatcher_NotifyNudges(t *testing.T) {
	w, path := newTestWatcher(t, "x = 1", func(c *types.WatcherConfig) {
		c.Notify = true
	})
	if err := w.StartWatch(context.Background()); err != nil {
		t.Fatal(err)
	}

	// The hourly ticker never fires here; only a nudge can reload
	if err := os.WriteFile(path, []byte("x = 2"), 0600); err != nil {
		t.Fatal(err)
	}

	if !eventually(t, 3*time.Second, func() bool { return generation(w) >= 2 }) {
		t.Fatal("change notification did not trigger a reload")
	}
}

func TestWatcher_Journal(t *testing.T) {
	w, path := newTestWatcher(t, "x = 1", func(c *types.WatcherConfig) {
		c.DatabaseEnabled = true
	})
	if err := w.db.Init(); err != nil {
		t.Fatalf("db.Init() failed: %v", err)
	}
	if err := w.StartWatch(context.Background()); err != nil {
		t.Fatal(err)
	}

	writeScript(t, path, "print('partial')\nerror('boom')", baseTime.Add(time.Second))
	w.Tick()
	w.RequestReload()
	writeScript(t, path, "x = 3", baseTime.Add(2*time.Second))
	w.Tick()

	attempts, err := w.db.GetLoadAttempts("", 10)
	if err != nil {
		t.Fatalf("GetLoadAttempts() failed: %v", err)
	}

	type row struct{ Trigger, Status string }
	got := make([]row, 0, len(attempts))
	for _, a := range attempts {
		got = append(got, row{a.Trigger, a.Status})
		if a.ID == "" {
			t.Error("attempt recorded without an id")
		}
	}
	want := []row{
		{types.TriggerForced, "loaded"},
		{types.TriggerChange, "failed"},
		{types.TriggerInitial, "loaded"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("journal mismatch (-want +got):\n%s", diff)
	}

	failed, err := w.db.GetLoadAttempts("failed", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(failed) != 1 {
		t.Fatalf("failed attempts = %d, want 1", len(failed))
	}
	if failed[0].Output != "partial\n" {
		t.Errorf("captured stdout = %q, want %q", failed[0].Output, "partial\n")
	}
	if !strings.Contains(failed[0].Error, "boom") {
		t.Errorf("captured stderr should hold the error, got %q", failed[0].Error)
	}
	if !failed[0].ModTime.Equal(baseTime.Add(time.Second)) {
		t.Errorf("failed ModTime = %v, want %v", failed[0].ModTime, baseTime.Add(time.Second))
	}
}

func TestWatcher_Handlers(t *testing.T) {
	w, _ := newTestWatcher(t, "x = 1\nname = 'demo'", nil)
	router := socket.NewDefaultCommandHandler(w)

	resp := router.HandleCommand(types.WatcherCommand{Action: types.ActionGetGlobals})
	if resp.Success {
		t.Error("get_globals should fail before the first load")
	}

	resp = router.HandleCommand(types.WatcherCommand{Action: types.ActionStatus})
	if !resp.Success || resp.Data["status"] != "idle" {
		t.Errorf("status before start = %+v", resp)
	}

	// start_watch runs under the host context
	resp = router.HandleCommand(types.WatcherCommand{Action: types.ActionStartWatch})
	if !resp.Success {
		t.Fatalf("start_watch failed: %s", resp.Error)
	}

	resp = router.HandleCommand(types.WatcherCommand{Action: types.ActionGetGlobals})
	if !resp.Success {
		t.Fatalf("get_globals failed: %s", resp.Error)
	}
	wantGlobals := map[string]any{"x": float64(1), "name": "demo"}
	if diff := cmp.Diff(wantGlobals, resp.Data["globals"]); diff != "" {
		t.Errorf("globals mismatch (-want +got):\n%s", diff)
	}
	if resp.Data["identity"] != loader.MainIdentity {
		t.Errorf("identity = %v, want %s", resp.Data["identity"], loader.MainIdentity)
	}

	resp = router.HandleCommand(types.WatcherCommand{Action: types.ActionRequestReload})
	if !resp.Success || !w.ReloadPending() {
		t.Errorf("request_reload = %+v, pending = %v", resp, w.ReloadPending())
	}

	resp = router.HandleCommand(types.WatcherCommand{Action: types.ActionStatus})
	if resp.Data["status"] != "watching" || resp.Data["generation"] != int64(1) || resp.Data["reload_pending"] != true {
		t.Errorf("status while watching = %+v", resp.Data)
	}

	resp = router.HandleCommand(types.WatcherCommand{Action: types.ActionGetLogs})
	if resp.Success {
		t.Error("get_logs should fail with the journal disabled")
	}

	resp = router.HandleCommand(types.WatcherCommand{Action: types.ActionStopWatch})
	if !resp.Success || w.Running() {
		t.Errorf("stop_watch = %+v, running = %v", resp, w.Running())
	}
}

func TestWatcher_HostOverSocket(t *testing.T) {
	dir, err := os.MkdirTemp("", "swh")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	path := filepath.Join(dir, "script.lua")
	writeScript(t, path, "x = 1", baseTime)

	cfg := testConfig(path)
	cfg.SocketEnabled = true
	cfg.DatabaseEnabled = true

	w, err := New(cfg, loader.WithRegistry(loader.NewRegistry()))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(true); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer func() { _ = w.Stop() }()

	client := socket.NewClient(cfg.SocketPath)
	client.SetTimeout(2 * time.Second)
	if err := client.WaitForWatcher(2 * time.Second); err != nil {
		t.Fatal(err)
	}

	if _, err := client.RequestReload(); err != nil {
		t.Fatalf("RequestReload() failed: %v", err)
	}
	if got := w.Tick(); got != loader.Loaded {
		t.Errorf("Tick() after socket reload request = %v, want loaded", got)
	}

	resp, err := client.GetLoads("", 10)
	if err != nil {
		t.Fatal(err)
	}
	loads, _ := resp.Data["loads"].([]interface{})
	if len(loads) != 2 {
		t.Errorf("journal holds %d loads, want 2", len(loads))
	}

	resp, err = client.GetGlobals()
	if err != nil || !resp.Success {
		t.Fatalf("GetGlobals() = %+v, %v", resp, err)
	}
	globals, _ := resp.Data["globals"].(map[string]interface{})
	if globals["x"] != float64(1) {
		t.Errorf("x over the socket = %v, want 1", globals["x"])
	}
}
