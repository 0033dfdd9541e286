package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const trace = `{
  "targets": [{"name": "fb", "width": 2, "height": 2, "clear": [0, 0, 255, 255]}],
  "commands": [
    {"op": "SetContext", "target": "fb", "color": {"width": 2, "height": 2, "data": 4096}},
    {"op": "Sync", "sync": true, "surface": {"width": 2, "height": 2, "data": 4096}, "readback": true}
  ]
}`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app.Writer = &out
	t.Cleanup(func() { app.Writer = os.Stdout })
	err := app.Run(append([]string{"gxmreplay", "--log-level", "error"}, args...))
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReplay(t *testing.T) {
	path := writeFile(t, "trace.json", trace)
	out, err := run(t, "replay", "--memory-size", "65536", path)
	require.NoError(t, err)
	assert.Contains(t, out, "backend=software")
	assert.Contains(t, out, "step 1 SyncSurfaceData: success")
}

func TestReplayDump(t *testing.T) {
	path := writeFile(t, "trace.json", trace)
	dir := t.TempDir()
	_, err := run(t, "replay", "--dump-surfaces", "--dump-dir", dir, "--dump-format", "tiff", path)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "color_surface_0x1000.tiff"))
	assert.NoError(t, err)
}

func TestReplayWithConfigFile(t *testing.T) {
	path := writeFile(t, "trace.json", trace)
	cfg := writeFile(t, "gxm.toml", "[Renderer]\nBackend = \"none\"\n")
	out, err := run(t, "--config", cfg, "replay", path)
	require.NoError(t, err)
	assert.Contains(t, out, "backend=none")
	assert.Contains(t, out, "missing feature none/pullSurfaceData")
}

func TestReplayErrors(t *testing.T) {
	_, err := run(t, "replay")
	assert.Error(t, err)

	_, err = run(t, "replay", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := writeFile(t, "trace.json", trace)
	_, err = run(t, "replay", "--memory", "rom", path)
	assert.ErrorContains(t, err, "memory kind")
}

func TestBackends(t *testing.T) {
	out, err := run(t, "backends")
	require.NoError(t, err)
	assert.Contains(t, strings.Fields(out), "software")
}

func TestDumpConfig(t *testing.T) {
	out, err := run(t, "dumpconfig", "--backend", "none", "--memory", "wasm")
	require.NoError(t, err)
	assert.Contains(t, out, `Backend = "none"`)
	assert.Contains(t, out, `Kind = "wasm"`)
}
