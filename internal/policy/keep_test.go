package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devclean/internal/config"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

func TestKeepMarkerProtectsProject(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "node_modules")
	require.NoError(t, os.MkdirAll(target, 0o755))
	touch(t, filepath.Join(root, KeepMarker))

	p := FromConfig(config.Default())
	d := p.Evaluate(root, target)
	assert.True(t, d.Protected)
	assert.Contains(t, d.Reason, KeepMarker)
}

func TestKeepPatternsFile(t *testing.T) {
	root := t.TempDir()
	modules := filepath.Join(root, "node_modules")
	dist := filepath.Join(root, "dist")
	require.NoError(t, os.MkdirAll(modules, 0o755))
	require.NoError(t, os.MkdirAll(dist, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, KeepPatternsFile),
		[]byte("# keep deps\nnode_modules\n"), 0o644))

	p := FromConfig(config.Default())
	assert.True(t, p.Protected(root, modules))
	assert.False(t, p.Protected(root, dist))
}

func TestKeepPatternsFileGlob(t *testing.T) {
	root := t.TempDir()
	cache := filepath.Join(root, "pkg", "a", ".cache")
	require.NoError(t, os.MkdirAll(cache, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, KeepPatternsFile),
		[]byte("pkg/**\n"), 0o644))

	p := FromConfig(config.Default())
	assert.True(t, p.Protected(root, cache))
}

func TestKeepPatternsParseErrorFailsProtected(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "build")
	require.NoError(t, os.MkdirAll(target, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, KeepPatternsFile),
		[]byte("[\n"), 0o644))

	p := FromConfig(config.Default())
	d := p.Evaluate(root, target)
	assert.True(t, d.Protected)
	assert.Contains(t, d.Reason, "parse_error")
}

func TestConfigKeepPaths(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "target")
	require.NoError(t, os.MkdirAll(target, 0o755))

	cfg := config.Default()
	cfg.KeepPaths = []string{root}
	p := FromConfig(cfg)

	d := p.Evaluate(root, target)
	assert.True(t, d.Protected)
	assert.Equal(t, "config_keep_paths", d.Reason)
}

func TestConfigKeepGlobs(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "work", "critical", "build")
	require.NoError(t, os.MkdirAll(target, 0o755))

	cfg := config.Default()
	cfg.KeepGlobs = []string{filepath.ToSlash(root) + "/work/critical/**"}
	p := FromConfig(cfg)

	assert.True(t, p.Protected(root, target))
	assert.False(t, p.Protected(root, filepath.Join(root, "other", "build")))
}

func TestConfigKeepProjectRoots(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "node_modules")
	require.NoError(t, os.MkdirAll(target, 0o755))

	cfg := config.Default()
	cfg.KeepProjectRoots = []string{filepath.ToSlash(root)}
	p := FromConfig(cfg)

	d := p.Evaluate(root, target)
	assert.True(t, d.Protected)
	assert.Equal(t, "config_keep_project_roots", d.Reason)
}

func TestUnprotectedByDefault(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "node_modules")
	require.NoError(t, os.MkdirAll(target, 0o755))

	p := FromConfig(config.Default())
	assert.False(t, p.Protected(root, target))
}
