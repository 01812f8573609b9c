package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devclean/internal/catalog"
	"devclean/internal/scan"
)

func sized(path string, typ catalog.ProjectType, cat catalog.Category, size int64, ageDays int) *scan.Candidate {
	c := &scan.Candidate{
		CleanablePath: path,
		ProjectType:   typ,
		Category:      cat,
		LastModified:  time.Now().Add(-time.Duration(ageDays) * 24 * time.Hour),
	}
	c.Size = &size
	c.SizeCalculated = true
	return c
}

func TestBuildAggregates(t *testing.T) {
	candidates := []*scan.Candidate{
		sized("/a/node_modules", catalog.TypeNode, catalog.CategoryDeps, 3000, 10),
		sized("/a/.cache", catalog.TypeNode, catalog.CategoryCache, 500, 45),
		sized("/b/target", catalog.TypeRust, catalog.CategoryBuild, 7000, 120),
	}
	candidates = append(candidates, &scan.Candidate{
		CleanablePath: "/c/slow",
		ProjectType:   catalog.TypeUnknown,
		Category:      catalog.CategoryBuild,
		LastModified:  time.Now(),
	})

	s := Build(candidates, "")
	assert.Equal(t, 4, s.TotalCount)
	assert.Equal(t, int64(10500), s.TotalSize)
	assert.Equal(t, 1, s.UnsizedCount)

	require.NotEmpty(t, s.ByType)
	assert.Equal(t, catalog.TypeRust, s.ByType[0].Type)
	assert.Equal(t, int64(7000), s.ByType[0].Size)

	require.Len(t, s.ByCategory, 3)
	assert.Equal(t, catalog.CategoryBuild, s.ByCategory[0].Category)

	assert.Equal(t, 2, s.Ages.Fresh)
	assert.Equal(t, 1, s.Ages.Stale)
	assert.Equal(t, 1, s.Ages.Old)

	require.NotEmpty(t, s.Largest)
	assert.Equal(t, "/b/target", s.Largest[0].CleanablePath)
}

func TestBuildEmpty(t *testing.T) {
	s := Build(nil, "")
	assert.Zero(t, s.TotalCount)
	assert.Zero(t, s.TotalSize)
	assert.Empty(t, s.Largest)
}

func TestBuildDiskUsage(t *testing.T) {
	s := Build(nil, t.TempDir())
	require.NotNil(t, s.Disk)
	assert.Greater(t, s.Disk.Total, uint64(0))
}

func TestSummaryJSON(t *testing.T) {
	s := Build([]*scan.Candidate{
		sized("/a/dist", catalog.TypeNode, catalog.CategoryBuild, 100, 1),
	}, "")
	data, err := s.JSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"total_size": 100`)
	assert.Contains(t, string(data), `"by_type"`)
}
