package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	assert.Equal(t, []string{".git", ".svn", ".hg"}, cfg.ExcludeDirs)
}

func TestSaveLoadRoundtrip(t *testing.T) {
	depth := 6
	cfg := Default()
	cfg.DefaultDepth = &depth
	cfg.KeepPaths = []string{"~/critical"}
	cfg.CustomPatterns = []CustomPattern{{
		Name:        "bazel",
		Directory:   "bazel-*",
		MarkerFiles: []string{"WORKSPACE"},
	}}

	path := filepath.Join(t.TempDir(), "nested", "config.json")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, loaded.DefaultDepth)
	assert.Equal(t, 6, *loaded.DefaultDepth)
	require.Len(t, loaded.CustomPatterns, 1)
	assert.Equal(t, "bazel", loaded.CustomPatterns[0].Name)
}

func TestValidateCustomPatterns(t *testing.T) {
	base := CustomPattern{
		Name:        "ok",
		Directory:   "out",
		MarkerFiles: []string{"m.txt"},
	}

	cfg := Default()
	cfg.CustomPatterns = []CustomPattern{base}
	assert.NoError(t, cfg.Validate())

	cases := []struct {
		name   string
		mutate func(*CustomPattern)
	}{
		{"empty name", func(p *CustomPattern) { p.Name = "" }},
		{"no directory", func(p *CustomPattern) { p.Directory = "" }},
		{"no markers", func(p *CustomPattern) { p.MarkerFiles = nil }},
		{"bad mode", func(p *CustomPattern) { p.MarkerMode = "sometimes" }},
		{"bad glob", func(p *CustomPattern) { p.Directory = "[" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := base
			tc.mutate(&p)
			cfg := Default()
			cfg.CustomPatterns = []CustomPattern{p}
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateKeepGlobs(t *testing.T) {
	cfg := Default()
	cfg.KeepGlobs = []string{"["}
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.KeepProjectRoots = []string{"/home/*/critical"}
	assert.NoError(t, cfg.Validate())
}

func TestMarkerModeDefault(t *testing.T) {
	assert.Equal(t, AnyOf, CustomPattern{}.Mode())
	assert.Equal(t, AllOf, CustomPattern{MarkerMode: AllOf}.Mode())
}

func TestAuditConfigDefaults(t *testing.T) {
	var a AuditConfig
	assert.True(t, a.IsEnabled())
	assert.Equal(t, int64(5*1024*1024), a.MaxSizeBytes())

	off := false
	a = AuditConfig{Enabled: &off, MaxSizeMB: 2}
	assert.False(t, a.IsEnabled())
	assert.Equal(t, int64(2*1024*1024), a.MaxSizeBytes())
}

func TestExpandPath(t *testing.T) {
	abs, err := ExpandPath("~/projects")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(abs))
	assert.Contains(t, abs, "projects")
}
