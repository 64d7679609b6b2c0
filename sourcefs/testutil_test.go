package sourcefs

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// countingFS wraps the real filesystem and counts every call.
type countingFS struct {
	osFS
	calls atomic.Int64
}

func (c *countingFS) EvalSymlinks(path string) (string, error) {
	c.calls.Add(1)
	return c.osFS.EvalSymlinks(path)
}

func (c *countingFS) Stat(path string) (fs.FileInfo, error) {
	c.calls.Add(1)
	return c.osFS.Stat(path)
}

func (c *countingFS) Open(path string) (io.ReadCloser, error) {
	c.calls.Add(1)
	return c.osFS.Open(path)
}

func (c *countingFS) WalkDir(root string, fn fs.WalkDirFunc) error {
	c.calls.Add(1)
	return c.osFS.WalkDir(root, fn)
}

var bridgeCpp = `#include "Bridge.h"
// TODO: split this file
void Init() {
    Setup();
}
void Tick() {
    // TODO: throttle
}
`

var fixture = map[string]string{
	"Source/Bridge.cpp":       bridgeCpp,
	"Source/Bridge.h":         "#pragma once\n// TODO: document\n",
	"Source/Private/Util.cpp": "int Util() { return 0; }\n",
	"Content/readme.txt":      "TODO: not a source file\n",
	"Scripts/init.py":         "import unreal\n",
	".git/config":             "TODO hidden\n",
	"Source/.cache/x.cpp":     "// TODO hidden\n",
}

// writeTree creates the fixture tree in a temp dir and returns its root.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func newTestFS(t *testing.T, cfg Config) (*FS, *countingFS) {
	t.Helper()
	if cfg.Root == "" {
		cfg.Root = writeTree(t, fixture)
	}
	counter := &countingFS{}
	f, err := newFS(cfg, counter)
	require.NoError(t, err)
	counter.calls.Store(0)
	return f, counter
}
