package sweep

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devclean/internal/audit"
	"devclean/internal/config"
	"devclean/internal/scan"
)

func setupProject(t *testing.T) (root, modules string) {
	t.Helper()
	root = t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "app", "node_modules"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "app", "package.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "app", "node_modules", "f"), []byte("data"), 0o644))
	return root, filepath.Join(root, "app", "node_modules")
}

func scanProject(t *testing.T, root string) (*scan.Scanner, []*scan.Candidate) {
	t.Helper()
	s, err := scan.New(config.Default(), scan.Options{Roots: []string{root}}, scan.Filters{})
	require.NoError(t, err)
	result, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, result.Candidates)
	return s, result.Candidates
}

func TestRunDeletes(t *testing.T) {
	root, modules := setupProject(t)
	scanner, candidates := scanProject(t, root)

	exec := &Executor{Scanner: scanner}
	summary, err := exec.Run(context.Background(), "clean", []string{root}, candidates, Options{Mode: ModeDelete})
	require.NoError(t, err)

	assert.NoDirExists(t, modules)
	assert.Equal(t, 1, summary.Deleted)
	assert.Greater(t, summary.FreedBytes, int64(0))
	assert.NoError(t, summary.Err())
}

func TestRunDryRunTouchesNothing(t *testing.T) {
	root, modules := setupProject(t)
	scanner, candidates := scanProject(t, root)

	exec := &Executor{Scanner: scanner}
	summary, err := exec.Run(context.Background(), "clean", []string{root}, candidates, Options{Mode: ModeDelete, DryRun: true})
	require.NoError(t, err)

	assert.DirExists(t, modules)
	assert.Equal(t, 1, summary.Deleted)
}

func TestRunSkipsVanishedTargets(t *testing.T) {
	root, modules := setupProject(t)
	scanner, candidates := scanProject(t, root)

	require.NoError(t, os.RemoveAll(modules))

	exec := &Executor{Scanner: scanner}
	summary, err := exec.Run(context.Background(), "clean", []string{root}, candidates, Options{Mode: ModeDelete})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Skipped)
	assert.Zero(t, summary.Deleted)
	assert.Zero(t, summary.FreedBytes)
}

func TestRunTrashMode(t *testing.T) {
	root, modules := setupProject(t)
	scanner, candidates := scanProject(t, root)
	trashRoot := filepath.Join(t.TempDir(), "trash")

	exec := &Executor{Scanner: scanner}
	summary, err := exec.Run(context.Background(), "clean", []string{root}, candidates,
		Options{Mode: ModeTrash, TrashRoot: trashRoot})
	require.NoError(t, err)

	assert.NoDirExists(t, modules)
	assert.Equal(t, 1, summary.Trashed)
	require.NotEmpty(t, summary.BatchID)
	assert.DirExists(t, filepath.Join(trashRoot, summary.BatchID))
}

func TestRunWritesAuditTrail(t *testing.T) {
	root, _ := setupProject(t)
	scanner, candidates := scanProject(t, root)

	logPath := filepath.Join(t.TempDir(), "audit.jsonl")
	logger, err := audit.Open(config.AuditConfig{Path: logPath})
	require.NoError(t, err)
	require.NotNil(t, logger)

	exec := &Executor{Scanner: scanner, Audit: logger}
	_, err = exec.Run(context.Background(), "clean", []string{root}, candidates, Options{Mode: ModeDelete})
	require.NoError(t, err)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, audit.EventRunStarted)
	assert.Contains(t, content, audit.EventItemAction)
	assert.Contains(t, content, audit.EventRunFinished)
	assert.Contains(t, content, logger.RunID())
}

func TestRunReportsItemCallbacks(t *testing.T) {
	root, _ := setupProject(t)
	scanner, candidates := scanProject(t, root)

	var seen []string
	exec := &Executor{
		Scanner: scanner,
		OnItem: func(res ItemResult) {
			seen = append(seen, res.Action)
		},
	}
	_, err := exec.Run(context.Background(), "clean", []string{root}, candidates, Options{Mode: ModeDelete})
	require.NoError(t, err)
	assert.Equal(t, []string{audit.ActionDeleted}, seen)
}
