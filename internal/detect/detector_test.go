package detect

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devclean/internal/catalog"
	"devclean/internal/config"
	"devclean/internal/policy"
)

func mkdirs(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		require.NoError(t, os.MkdirAll(p, 0o755))
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newDetector(cfg config.Config) *Detector {
	return New(catalog.Default(), cfg.CustomPatterns, policy.FromConfig(cfg))
}

func TestExamineBuiltinNodeProject(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "package.json"), "{}")
	modules := filepath.Join(root, "node_modules")
	mkdirs(t, modules)

	d := newDetector(config.Default())
	m := d.Examine(modules, root)
	require.NotNil(t, m)
	assert.Equal(t, root, m.Root)
	assert.Equal(t, catalog.TypeNode, m.Type)
	assert.Equal(t, catalog.SourceBuiltin, m.Source)
	assert.Equal(t, "node_modules", m.Pattern)
}

func TestExamineNestedPythonCache(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pyproject.toml"), "")
	pycache := filepath.Join(root, "src", "app", "__pycache__")
	mkdirs(t, pycache)

	d := newDetector(config.Default())
	m := d.Examine(pycache, root)
	require.NotNil(t, m)
	assert.Equal(t, root, m.Root)
	assert.Equal(t, catalog.TypePython, m.Type)
	assert.Equal(t, catalog.SourceBuiltin, m.Source)
}

func TestExamineGitignorePattern(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "package.json"), "{}")
	writeFile(t, filepath.Join(root, ".gitignore"), "tmp/\n")
	tmp := filepath.Join(root, "tmp")
	mkdirs(t, tmp)

	d := newDetector(config.Default())
	m := d.Examine(tmp, root)
	require.NotNil(t, m)
	assert.Equal(t, catalog.SourceGitignore, m.Source)
	assert.Equal(t, "tmp", m.Pattern)
}

func TestBuiltinOutranksGitignore(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "package.json"), "{}")
	writeFile(t, filepath.Join(root, ".gitignore"), "node_modules/\n")
	modules := filepath.Join(root, "node_modules")
	mkdirs(t, modules)

	d := newDetector(config.Default())
	m := d.Examine(modules, root)
	require.NotNil(t, m)
	assert.Equal(t, catalog.SourceBuiltin, m.Source)
}

func TestExamineCustomPattern(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "stack.yaml"), "")
	work := filepath.Join(root, ".stack-work")
	mkdirs(t, work)

	cfg := config.Default()
	cfg.CustomPatterns = []config.CustomPattern{{
		Name:        "haskell-stack",
		Directory:   ".stack-work",
		MarkerFiles: []string{"stack.yaml"},
	}}

	d := newDetector(cfg)
	m := d.Examine(work, root)
	require.NotNil(t, m)
	assert.Equal(t, catalog.SourceCustom, m.Source)
	assert.Equal(t, "haskell-stack", m.RuleName)
	assert.Equal(t, catalog.TypeUnknown, m.Type)
}

func TestCustomPatternAllOfMarkers(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.marker"), "")
	out := filepath.Join(root, "out")
	mkdirs(t, out)

	cfg := config.Default()
	cfg.CustomPatterns = []config.CustomPattern{{
		Name:        "both",
		Directory:   "out",
		MarkerFiles: []string{"a.marker", "b.marker"},
		MarkerMode:  config.AllOf,
	}}

	d := newDetector(cfg)
	assert.Nil(t, d.Examine(out, root))

	writeFile(t, filepath.Join(root, "b.marker"), "")
	d = newDetector(cfg)
	m := d.Examine(out, root)
	require.NotNil(t, m)
	assert.Equal(t, "both", m.RuleName)
}

func TestExamineRespectsKeepMarker(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "package.json"), "{}")
	writeFile(t, filepath.Join(root, policy.KeepMarker), "")
	modules := filepath.Join(root, "node_modules")
	mkdirs(t, modules)

	d := newDetector(config.Default())
	assert.Nil(t, d.Examine(modules, root))
}

func TestExamineNoProject(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "plain", "node_modules")
	mkdirs(t, dir)

	d := newDetector(config.Default())
	assert.Nil(t, d.Examine(dir, root))
}

func TestExamineStopsAtScanRoot(t *testing.T) {
	outer := t.TempDir()
	writeFile(t, filepath.Join(outer, "package.json"), "{}")
	scanRoot := filepath.Join(outer, "sub")
	modules := filepath.Join(scanRoot, "node_modules")
	mkdirs(t, modules)

	d := newDetector(config.Default())
	// The project root lies above the scan root, so no ancestor within
	// the scan can claim the directory.
	assert.Nil(t, d.Examine(modules, scanRoot))
}

func TestExamineCMakeHeuristic(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "CMakeLists.txt"), "")
	build := filepath.Join(root, "mybuild")
	mkdirs(t, build)
	writeFile(t, filepath.Join(build, "CMakeCache.txt"), "")

	d := newDetector(config.Default())
	m := d.Examine(build, root)
	require.NotNil(t, m)
	assert.Equal(t, catalog.SourceHeuristic, m.Source)
	assert.Equal(t, catalog.TypeCpp, m.Type)

	// A directory holding its own CMakeLists.txt is a source tree, not
	// a build output.
	writeFile(t, filepath.Join(build, "CMakeLists.txt"), "")
	d = newDetector(config.Default())
	assert.Nil(t, d.Examine(build, root))
}

func TestDotNetWildcardMarker(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "App.csproj"), "")
	objDir := filepath.Join(root, "obj")
	mkdirs(t, objDir)

	d := newDetector(config.Default())
	m := d.Examine(objDir, root)
	require.NotNil(t, m)
	assert.Equal(t, catalog.TypeDotNet, m.Type)
}

func TestInUse(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "package.json"), "{}")

	d := newDetector(config.Default())
	assert.False(t, d.InUse(root, catalog.TypeNode))

	writeFile(t, filepath.Join(root, "yarn.lock"), "")
	assert.True(t, d.InUse(root, catalog.TypeNode))
}
