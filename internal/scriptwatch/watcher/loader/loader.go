package loader

import (
	"bytes"
	"fmt"
	"os"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// EntrypointName is the global the loader calls in entrypoint mode
const EntrypointName = "main"

// Outcome is the result of a load or reload check
type Outcome int

const (
	// NoChange means nothing was executed
	NoChange Outcome = iota
	// Loaded means a new version was executed and is now current
	Loaded
	// Failed means an attempt was made and the previous version stays current
	Failed
)

func (o Outcome) String() string {
	switch o {
	case NoChange:
		return "unchanged"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is the loader's position in its lifecycle
type State int

const (
	StateUnloaded State = iota
	StateLoading
	StateLoaded
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	default:
		return "unknown"
	}
}

// LoadState is the live result of the most recent successful load
type LoadState struct {
	Namespace  *Namespace
	ModTime    time.Time
	LoadedAt   time.Time
	Duration   time.Duration
	Generation int64
}

// Loader owns one Target and its current LoadState. It is not safe for
// concurrent use; callers serialize Load and CheckReload.
type Loader struct {
	target      Target
	registry    *Registry
	bindings    map[string]lua.LGFunction
	retryFailed bool
	stat        func(string) (os.FileInfo, error)

	current       *LoadState
	lastModTime   time.Time
	failedModTime time.Time
	state         State
	lastErr       error
	generation    int64
}

// Option configures a Loader
type Option func(*Loader)

// WithRegistry registers namespaces in r instead of DefaultRegistry
func WithRegistry(r *Registry) Option {
	return func(l *Loader) {
		if r != nil {
			l.registry = r
		}
	}
}

// WithBinding exposes a Go function to the script as a global
func WithBinding(name string, fn lua.LGFunction) Option {
	return func(l *Loader) {
		l.bindings[name] = fn
	}
}

// WithRetryFailed makes CheckReload retry a version that already failed to
// load. By default such a version is skipped until its mtime changes.
func WithRetryFailed(retry bool) Option {
	return func(l *Loader) {
		l.retryFailed = retry
	}
}

// New creates a loader for target; nothing is executed until Load
func New(target Target, opts ...Option) *Loader {
	l := &Loader{
		target:   target,
		registry: DefaultRegistry,
		bindings: make(map[string]lua.LGFunction),
		stat:     os.Stat,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Target returns the watched target
func (l *Loader) Target() Target {
	return l.target
}

// Current returns the live LoadState, or nil before the first success
func (l *Loader) Current() *LoadState {
	return l.current
}

// Namespace returns the live namespace, or nil before the first success
func (l *Loader) Namespace() *Namespace {
	if l.current == nil {
		return nil
	}
	return l.current.Namespace
}

// State returns the lifecycle state
func (l *Loader) State() State {
	return l.state
}

// LastModTime is the modification time of the currently loaded version
func (l *Loader) LastModTime() time.Time {
	return l.lastModTime
}

// FailedModTime is the modification time of the version that last failed
// to load, zero once a load succeeds
func (l *Loader) FailedModTime() time.Time {
	return l.failedModTime
}

// LastError returns the cause of the most recent failed attempt. It is
// cleared by the next successful load.
func (l *Loader) LastError() error {
	return l.lastErr
}

// Load executes the script from scratch in a new namespace. On success the
// new namespace replaces the current one; on failure the error text is
// written to os.Stderr and the current namespace and last-seen mtime are
// kept.
func (l *Loader) Load() Outcome {
	previousState := l.state
	l.state = StateLoading

	start := time.Now()
	ns, modTime, err := l.execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		l.lastErr = err
		l.failedModTime = modTime
		l.state = previousState
		return Failed
	}

	old := l.current
	l.current = &LoadState{
		Namespace:  ns,
		ModTime:    modTime,
		LoadedAt:   time.Now(),
		Duration:   time.Since(start),
		Generation: l.generation,
	}
	l.lastModTime = modTime
	l.failedModTime = time.Time{}
	l.lastErr = nil
	l.state = StateLoaded

	if old != nil {
		old.Namespace.Close()
	}
	return Loaded
}

// CheckReload loads the script when its mtime is newer than the loaded
// version. A missing or unreadable file is treated as unchanged.
func (l *Loader) CheckReload() Outcome {
	info, err := l.stat(l.target.Path)
	if err != nil {
		return NoChange
	}

	modTime := info.ModTime()
	if !modTime.After(l.lastModTime) {
		return NoChange
	}
	if !l.retryFailed && !l.failedModTime.IsZero() && modTime.Equal(l.failedModTime) {
		return NoChange
	}
	return l.Load()
}

// Close drops the live namespace and its registry entry
func (l *Loader) Close() {
	if l.current == nil {
		return
	}
	if ns, ok := l.registry.Lookup(l.target.ModuleName); ok && ns == l.current.Namespace {
		l.registry.Evict(l.target.ModuleName)
	}
	l.current.Namespace.Close()
	l.current = nil
	l.state = StateUnloaded
}

// execute runs one attempt. The mtime is read before the source so that a
// write landing during execution is picked up by the next check.
func (l *Loader) execute() (ns *Namespace, modTime time.Time, err error) {
	name := l.target.ModuleName
	previous := l.registry.Evict(name)

	info, err := l.stat(l.target.Path)
	if err != nil {
		l.registry.Restore(name, previous)
		return nil, time.Time{}, fmt.Errorf("failed to stat script: %w", err)
	}
	modTime = info.ModTime()

	//nolint:gosec // G304: the watched path is chosen by the user
	src, err := os.ReadFile(l.target.Path)
	if err != nil {
		l.registry.Restore(name, previous)
		return nil, modTime, fmt.Errorf("failed to read script: %w", err)
	}

	l.generation++
	ns = newNamespace(l.target, l.generation, l.bindings)
	l.registry.Register(name, ns)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during execution: %v", r)
		}
		if err != nil {
			ns.Close()
			ns = nil
			l.generation--
			l.registry.Restore(name, previous)
		}
	}()

	L := ns.state
	fn, err := L.Load(bytes.NewReader(src), l.target.Path)
	if err != nil {
		return ns, modTime, err
	}

	L.Push(fn)
	if err = L.PCall(0, lua.MultRet, nil); err != nil {
		return ns, modTime, err
	}
	L.SetTop(0)

	if l.target.RunEntrypoint {
		if mainFn := L.GetGlobal(EntrypointName); callable(L, mainFn) {
			err = L.CallByParam(lua.P{Fn: mainFn, NRet: 0, Protect: true})
			if err != nil {
				return ns, modTime, fmt.Errorf("%s() failed: %w", EntrypointName, err)
			}
		}
	}

	return ns, modTime, nil
}

// callable reports whether v is a function or carries a __call metamethod
func callable(L *lua.LState, v lua.LValue) bool {
	if _, ok := v.(*lua.LFunction); ok {
		return true
	}
	return L.GetMetaField(v, "__call") != lua.LNil
}
