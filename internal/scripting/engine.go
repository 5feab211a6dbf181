package scripting

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Gravity drives the default collapse curve, in m/s².
const Gravity = 9.81

// FreeFallTime is the default height-to-duration curve: the time a body
// needs to fall height metres from rest.
func FreeFallTime(height float64) float64 {
	if height <= 0 || math.IsNaN(height) {
		return 0
	}
	return math.Sqrt(2 * height / Gravity)
}

// Engine wraps a single gopher-lua VM holding the tunable building curves.
// Calls are serialized; the VM is not safe for concurrent use.
type Engine struct {
	mu  sync.Mutex
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory. Missing directories are not an error; every curve then falls
// back to its Go default.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	vm.SetGlobal("GRAVITY", lua.LNumber(Gravity))

	e := &Engine{vm: vm, log: log}

	for _, sub := range []string{"core", "building"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// DoString runs a chunk of Lua in the engine, used by tests and the CLI to
// inject overrides.
func (e *Engine) DoString(src string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.vm.DoString(src)
}

// HasFunction reports whether a global Lua function with the given name is
// defined.
func (e *Engine) HasFunction(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// CollapseTime returns how long a building of the given height takes to
// collapse. It calls the Lua calc_collapse_time(height) when defined and
// falls back to FreeFallTime when the function is missing, fails or returns
// something that is not a finite non-negative number.
func (e *Engine) CollapseTime(height float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	fn := e.vm.GetGlobal("calc_collapse_time")
	if fn == lua.LNil {
		return FreeFallTime(height)
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LNumber(height)); err != nil {
		e.log.Error("lua calc_collapse_time error", zap.Error(err))
		return FreeFallTime(height)
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	n, ok := result.(lua.LNumber)
	if !ok {
		e.log.Error("lua calc_collapse_time returned non-number",
			zap.String("type", result.Type().String()))
		return FreeFallTime(height)
	}
	v := float64(n)
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		e.log.Warn("lua calc_collapse_time out of range", zap.Float64("value", v))
		return FreeFallTime(height)
	}
	return v
}

// Close releases the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
