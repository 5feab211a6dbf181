package scripting

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine(t *testing.T, dir string) *Engine {
	t.Helper()
	e, err := NewEngine(dir, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func TestFreeFallTime(t *testing.T) {
	assert.InDelta(t, 2.0, FreeFallTime(19.62), 1e-9)
	assert.Equal(t, 0.0, FreeFallTime(0))
	assert.Equal(t, 0.0, FreeFallTime(-3))
	assert.Equal(t, 0.0, FreeFallTime(math.NaN()))
}

func TestCollapseTime_DefaultsWithoutScript(t *testing.T) {
	e := newTestEngine(t, t.TempDir())
	assert.False(t, e.HasFunction("calc_collapse_time"))
	assert.InDelta(t, FreeFallTime(40), e.CollapseTime(40), 1e-9)
}

func TestCollapseTime_LoadsScriptDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "building"), 0o755))
	script := "function calc_collapse_time(h) return h / 10 end\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "building", "collapse.lua"), []byte(script), 0o644))

	e := newTestEngine(t, dir)
	assert.True(t, e.HasFunction("calc_collapse_time"))
	assert.InDelta(t, 2.5, e.CollapseTime(25), 1e-9)
}

func TestCollapseTime_FallsBackOnBadResult(t *testing.T) {
	e := newTestEngine(t, t.TempDir())

	require.NoError(t, e.DoString(`function calc_collapse_time(h) return "slow" end`))
	assert.InDelta(t, FreeFallTime(10), e.CollapseTime(10), 1e-9)

	require.NoError(t, e.DoString(`function calc_collapse_time(h) return -1 end`))
	assert.InDelta(t, FreeFallTime(10), e.CollapseTime(10), 1e-9)

	require.NoError(t, e.DoString(`function calc_collapse_time(h) error("boom") end`))
	assert.InDelta(t, FreeFallTime(10), e.CollapseTime(10), 1e-9)
}

func TestNewEngine_RejectsBrokenScript(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "core"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "core", "bad.lua"), []byte("function ("), 0o644))

	_, err := NewEngine(dir, zap.NewNop())
	require.Error(t, err)
}
