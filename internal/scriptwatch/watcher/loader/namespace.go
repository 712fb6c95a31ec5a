package loader

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// maxConvertDepth bounds table conversion in Globals
const maxConvertDepth = 8

// Namespace is the set of bindings produced by one execution of the script.
// It owns a private Lua state; nothing is shared between namespaces.
type Namespace struct {
	identity string
	state    *lua.LState
	baseline map[string]struct{}
}

func newNamespace(target Target, generation int64, bindings map[string]lua.LGFunction) *Namespace {
	L := lua.NewState()
	identity := target.Identity()

	L.SetGlobal("_NAME", lua.LString(identity))
	L.SetGlobal("host", hostTable(L, target, generation))
	for name, fn := range bindings {
		L.SetGlobal(name, L.NewFunction(fn))
	}

	if pkg, ok := L.GetGlobal("package").(*lua.LTable); ok {
		dir := filepath.Dir(target.Path)
		searchPath := filepath.Join(dir, "?.lua") + ";" + filepath.Join(dir, "?", PackageEntry)
		if current := lua.LVAsString(L.GetField(pkg, "path")); current != "" {
			searchPath += ";" + current
		}
		L.SetField(pkg, "path", lua.LString(searchPath))

		if loaded, ok := L.GetField(pkg, "loaded").(*lua.LTable); ok {
			L.SetField(loaded, target.ModuleName, L.G.Global)
		}
	}

	ns := &Namespace{
		identity: identity,
		state:    L,
		baseline: make(map[string]struct{}),
	}
	L.G.Global.ForEach(func(k, _ lua.LValue) {
		if key, ok := k.(lua.LString); ok {
			ns.baseline[string(key)] = struct{}{}
		}
	})
	return ns
}

func hostTable(L *lua.LState, target Target, generation int64) *lua.LTable {
	tbl := L.NewTable()
	L.SetField(tbl, "path", lua.LString(target.Path))
	L.SetField(tbl, "module", lua.LString(target.ModuleName))
	L.SetField(tbl, "entrypoint", lua.LBool(target.RunEntrypoint))
	L.SetField(tbl, "generation", lua.LNumber(generation))
	return tbl
}

// Identity is the name the namespace was executed under
func (ns *Namespace) Identity() string {
	return ns.identity
}

// Get returns the raw Lua value bound to name, or lua.LNil
func (ns *Namespace) Get(name string) lua.LValue {
	if ns == nil || ns.state == nil {
		return lua.LNil
	}
	return ns.state.GetGlobal(name)
}

// Lookup returns the Go form of the value bound to name
func (ns *Namespace) Lookup(name string) (any, bool) {
	v := ns.Get(name)
	if v == lua.LNil {
		return nil, false
	}
	return toGo(v, 0, map[*lua.LTable]bool{}), true
}

// Names lists the globals defined by the script itself, sorted
func (ns *Namespace) Names() []string {
	if ns == nil || ns.state == nil {
		return nil
	}
	var names []string
	ns.state.G.Global.ForEach(func(k, _ lua.LValue) {
		key, ok := k.(lua.LString)
		if !ok {
			return
		}
		if _, builtin := ns.baseline[string(key)]; !builtin {
			names = append(names, string(key))
		}
	})
	sort.Strings(names)
	return names
}

// Globals converts every script-defined global into a Go value
func (ns *Namespace) Globals() map[string]any {
	globals := make(map[string]any)
	for _, name := range ns.Names() {
		globals[name] = toGo(ns.Get(name), 0, map[*lua.LTable]bool{})
	}
	return globals
}

// Close releases the Lua state; the namespace is unusable afterwards
func (ns *Namespace) Close() {
	if ns == nil || ns.state == nil {
		return
	}
	ns.state.Close()
	ns.state = nil
}

func toGo(v lua.LValue, depth int, seen map[*lua.LTable]bool) any {
	switch val := v.(type) {
	case *lua.LNilType:
		return nil
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		return float64(val)
	case lua.LString:
		return string(val)
	case *lua.LTable:
		if depth >= maxConvertDepth || seen[val] {
			return "<table>"
		}
		seen[val] = true
		defer delete(seen, val)
		return tableToGo(val, depth, seen)
	case *lua.LFunction:
		return "<function>"
	default:
		return fmt.Sprintf("<%s>", strings.ToLower(v.Type().String()))
	}
}

func tableToGo(tbl *lua.LTable, depth int, seen map[*lua.LTable]bool) any {
	count := 0
	tbl.ForEach(func(_, _ lua.LValue) { count++ })

	if n := tbl.Len(); n > 0 && n == count {
		list := make([]any, 0, n)
		for i := 1; i <= n; i++ {
			list = append(list, toGo(tbl.RawGetInt(i), depth+1, seen))
		}
		return list
	}

	m := make(map[string]any, count)
	tbl.ForEach(func(k, v lua.LValue) {
		m[k.String()] = toGo(v, depth+1, seen)
	})
	return m
}
