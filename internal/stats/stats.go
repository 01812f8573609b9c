// Package stats aggregates scan results into summary figures for
// reporting: per-type and per-category totals, age distribution, and
// the largest individual targets, alongside disk headroom for context.
package stats

import (
	"encoding/json"
	"sort"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/sirupsen/logrus"

	"devclean/internal/catalog"
	"devclean/internal/core"
	"devclean/internal/scan"
)

// TopN is how many largest candidates a summary carries.
const TopN = 10

// TypeBreakdown is the aggregate for one project type.
type TypeBreakdown struct {
	Type  catalog.ProjectType `json:"type"`
	Count int                 `json:"count"`
	Size  int64               `json:"size"`
}

// CategoryBreakdown is the aggregate for one category.
type CategoryBreakdown struct {
	Category catalog.Category `json:"category"`
	Count    int              `json:"count"`
	Size     int64            `json:"size"`
}

// AgeBuckets splits candidates by staleness of the cleanable directory.
type AgeBuckets struct {
	// Fresh is under 30 days, Stale 30 to 90, Old over 90.
	Fresh int `json:"under_30_days"`
	Stale int `json:"days_30_to_90"`
	Old   int `json:"over_90_days"`
}

// DiskUsage is the filesystem headroom for the scanned volume.
type DiskUsage struct {
	Path  string `json:"path"`
	Total uint64 `json:"total"`
	Free  uint64 `json:"free"`
	Used  uint64 `json:"used"`
}

// Summary is the full aggregate over one scan.
type Summary struct {
	TotalCount   int    `json:"total_count"`
	TotalSize    int64  `json:"total_size"`
	UnsizedCount int    `json:"unsized_count"`
	InUseCount   int    `json:"in_use_count"`

	ByType     []TypeBreakdown     `json:"by_type"`
	ByCategory []CategoryBreakdown `json:"by_category"`
	Ages       AgeBuckets          `json:"age_buckets"`
	Largest    []*scan.Candidate   `json:"largest"`

	Disk *DiskUsage `json:"disk,omitempty"`
}

// Build computes a summary from a candidate set. diskPath, when
// non-empty, names a path on the volume whose usage should be reported;
// usage lookup failures are logged and leave Disk nil.
func Build(candidates []*scan.Candidate, diskPath string) *Summary {
	s := &Summary{TotalCount: len(candidates)}

	byType := make(map[catalog.ProjectType]*TypeBreakdown)
	byCategory := make(map[catalog.Category]*CategoryBreakdown)

	for _, c := range candidates {
		size, sized := c.SizeBytes()
		if !sized {
			s.UnsizedCount++
		}
		s.TotalSize += size
		if c.InUse {
			s.InUseCount++
		}

		tb := byType[c.ProjectType]
		if tb == nil {
			tb = &TypeBreakdown{Type: c.ProjectType}
			byType[c.ProjectType] = tb
		}
		tb.Count++
		tb.Size += size

		cb := byCategory[c.Category]
		if cb == nil {
			cb = &CategoryBreakdown{Category: c.Category}
			byCategory[c.Category] = cb
		}
		cb.Count++
		cb.Size += size

		switch age := c.AgeDays(); {
		case age < 30:
			s.Ages.Fresh++
		case age <= 90:
			s.Ages.Stale++
		default:
			s.Ages.Old++
		}
	}

	for _, tb := range byType {
		s.ByType = append(s.ByType, *tb)
	}
	sort.Slice(s.ByType, func(i, j int) bool {
		if s.ByType[i].Size != s.ByType[j].Size {
			return s.ByType[i].Size > s.ByType[j].Size
		}
		return s.ByType[i].Type < s.ByType[j].Type
	})

	for _, cb := range byCategory {
		s.ByCategory = append(s.ByCategory, *cb)
	}
	sort.Slice(s.ByCategory, func(i, j int) bool {
		if s.ByCategory[i].Size != s.ByCategory[j].Size {
			return s.ByCategory[i].Size > s.ByCategory[j].Size
		}
		return s.ByCategory[i].Category < s.ByCategory[j].Category
	})

	ranked := append([]*scan.Candidate(nil), candidates...)
	scan.SortBySize(ranked)
	if len(ranked) > TopN {
		ranked = ranked[:TopN]
	}
	s.Largest = ranked

	if diskPath != "" {
		if usage, err := disk.Usage(diskPath); err == nil {
			s.Disk = &DiskUsage{
				Path:  diskPath,
				Total: usage.Total,
				Free:  usage.Free,
				Used:  usage.Used,
			}
		} else {
			logrus.WithField("path", diskPath).WithError(err).Debug("disk usage lookup failed")
		}
	}

	return s
}

// TotalHuman renders the reclaimable total for display.
func (s *Summary) TotalHuman() string {
	return core.FormatSize(s.TotalSize)
}

// JSON renders the summary as indented JSON.
func (s *Summary) JSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
