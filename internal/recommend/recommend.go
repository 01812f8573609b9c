// Package recommend picks a subset of candidates to delete in order to
// free a requested number of bytes, preferring safe targets first.
package recommend

import (
	"sort"

	"devclean/internal/scan"
)

// Options tune the selection.
type Options struct {
	// TargetBytes is how much space the user wants back. Zero selects
	// nothing.
	TargetBytes int64

	// IncludeInUse lets apparently active projects into the selection.
	// Off by default.
	IncludeInUse bool
}

// Recommendation is the chosen subset plus what it adds up to.
type Recommendation struct {
	Selected []*scan.Candidate
	// Total is the sum of selected sizes. It can fall short of the
	// target when the candidate set is too small.
	Total int64
	// Shortfall is how many bytes the selection misses the target by.
	Shortfall int64
}

// Build selects candidates greedily until the target is met. Ordering
// is lowest risk first, then largest, then oldest, so the cheapest
// reclaimable space is spent before anything riskier is touched.
// Unsized candidates are never selected: a pick must provably count
// toward the target.
func Build(candidates []*scan.Candidate, opts Options) *Recommendation {
	rec := &Recommendation{}
	if opts.TargetBytes <= 0 {
		return rec
	}

	eligible := make([]*scan.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if _, sized := c.SizeBytes(); !sized {
			continue
		}
		if c.InUse && !opts.IncludeInUse {
			continue
		}
		eligible = append(eligible, c)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if a.RiskLevel != b.RiskLevel {
			return a.RiskLevel < b.RiskLevel
		}
		sa, _ := a.SizeBytes()
		sb, _ := b.SizeBytes()
		if sa != sb {
			return sa > sb
		}
		return a.AgeDays() > b.AgeDays()
	})

	for _, c := range eligible {
		if rec.Total >= opts.TargetBytes {
			break
		}
		size, _ := c.SizeBytes()
		rec.Selected = append(rec.Selected, c)
		rec.Total += size
	}

	if rec.Total < opts.TargetBytes {
		rec.Shortfall = opts.TargetBytes - rec.Total
	}
	return rec
}
