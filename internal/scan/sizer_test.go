package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBytes(t *testing.T, path string, n int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, n), 0o644))
}

func TestDirSize(t *testing.T) {
	dir := t.TempDir()
	writeBytes(t, filepath.Join(dir, "a.bin"), 100)
	writeBytes(t, filepath.Join(dir, "sub", "b.bin"), 250)

	size, err := dirSize(context.Background(), dir, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(350), size)
}

func TestDirSizeIgnoresSymlinkTargets(t *testing.T) {
	dir := t.TempDir()
	outside := t.TempDir()
	writeBytes(t, filepath.Join(outside, "huge.bin"), 4096)
	writeBytes(t, filepath.Join(dir, "real.bin"), 10)
	require.NoError(t, os.Symlink(outside, filepath.Join(dir, "link")))

	size, err := dirSize(context.Background(), dir, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(10), size)
}

func TestDirSizeTimeout(t *testing.T) {
	dir := t.TempDir()
	writeBytes(t, filepath.Join(dir, "a.bin"), 1)

	_, err := dirSize(context.Background(), dir, time.Nanosecond)
	require.Error(t, err)
	var timeout *SizeTimeoutError
	assert.ErrorAs(t, err, &timeout)
}

func TestSizerRunSizesAll(t *testing.T) {
	a := t.TempDir()
	b := t.TempDir()
	writeBytes(t, filepath.Join(a, "f"), 64)
	writeBytes(t, filepath.Join(b, "g"), 128)

	candidates := []*Candidate{cand(a), cand(b)}
	z := &Sizer{Timeout: time.Minute, Workers: 2}
	errs := z.Run(context.Background(), candidates)
	assert.Empty(t, errs)

	sa, ok := candidates[0].SizeBytes()
	require.True(t, ok)
	assert.Equal(t, int64(64), sa)
	sb, ok := candidates[1].SizeBytes()
	require.True(t, ok)
	assert.Equal(t, int64(128), sb)
}

func TestSizerMissingDirectoryErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone")
	c := cand(missing)

	z := &Sizer{Timeout: time.Minute, Workers: 1}
	errs := z.Run(context.Background(), []*Candidate{c})
	assert.Len(t, errs, 1)

	_, ok := c.SizeBytes()
	assert.False(t, ok)
}

func TestSizerRunIsolatesFailedSibling(t *testing.T) {
	a := t.TempDir()
	b := t.TempDir()
	writeBytes(t, filepath.Join(a, "f"), 64)
	writeBytes(t, filepath.Join(b, "g"), 128)
	missing := filepath.Join(t.TempDir(), "gone")

	good := []*Candidate{cand(a), cand(b)}
	bad := cand(missing)
	candidates := []*Candidate{good[0], bad, good[1]}

	z := &Sizer{Timeout: time.Minute, Workers: 2}
	errs := z.Run(context.Background(), candidates)
	require.Len(t, errs, 1)

	sa, ok := good[0].SizeBytes()
	require.True(t, ok)
	assert.Equal(t, int64(64), sa)
	sb, ok := good[1].SizeBytes()
	require.True(t, ok)
	assert.Equal(t, int64(128), sb)

	_, ok = bad.SizeBytes()
	assert.False(t, ok)
}

func TestStreamDeliversSiblingsPastFailure(t *testing.T) {
	dirs := make([]*Candidate, 0, 4)
	for i := 0; i < 3; i++ {
		d := t.TempDir()
		writeBytes(t, filepath.Join(d, "f"), 8)
		dirs = append(dirs, cand(d))
	}
	missing := filepath.Join(t.TempDir(), "gone")
	dirs = append(dirs, cand(missing))

	z := &Sizer{Timeout: time.Minute, Workers: 2}
	stream := z.Stream(context.Background(), dirs)

	var sized, unsized int
	for c := range stream.Results {
		if _, ok := c.SizeBytes(); ok {
			sized++
		} else {
			unsized++
		}
	}
	assert.Equal(t, 3, sized)
	assert.Equal(t, 1, unsized)
	assert.Len(t, stream.Wait(), 1)
}

func TestStreamDeliversAllAndCloses(t *testing.T) {
	dirs := make([]*Candidate, 5)
	for i := range dirs {
		d := t.TempDir()
		writeBytes(t, filepath.Join(d, "f"), 8)
		dirs[i] = cand(d)
	}

	z := &Sizer{Timeout: time.Minute, Workers: 2}
	stream := z.Stream(context.Background(), dirs)
	assert.Equal(t, 5, stream.Total)

	var got int
	for c := range stream.Results {
		got++
		_, ok := c.SizeBytes()
		assert.True(t, ok)
	}
	assert.Equal(t, 5, got)
	assert.Empty(t, stream.Wait())
}

func TestStreamConsumerMayWalkAway(t *testing.T) {
	dirs := make([]*Candidate, 8)
	for i := range dirs {
		d := t.TempDir()
		writeBytes(t, filepath.Join(d, "f"), 8)
		dirs[i] = cand(d)
	}

	z := &Sizer{Timeout: time.Minute, Workers: 2}
	stream := z.Stream(context.Background(), dirs)

	// Read one result, then abandon the channel. Wait must still
	// return: the buffered handoff never blocks the workers.
	<-stream.Results
	assert.Empty(t, stream.Wait())
}
