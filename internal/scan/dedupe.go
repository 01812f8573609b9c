package scan

import (
	"path/filepath"
	"sort"
	"strings"
)

// Dedupe removes candidates nested beneath another candidate, keeping
// only top-level targets. The ancestor always wins, even when the
// descendant carries a different category or risk. Runs before sizing
// so no work is spent on directories that would be discarded.
//
// Paths are canonicalized and compared lexicographically: in sorted
// order every descendant follows its ancestor immediately, so nesting
// reduces to an adjacent prefix check and the pass is near-linear.
func Dedupe(candidates []*Candidate) []*Candidate {
	if len(candidates) <= 1 {
		return candidates
	}

	type keyed struct {
		key  string
		cand *Candidate
	}
	sorted := make([]keyed, 0, len(candidates))
	for _, c := range candidates {
		sorted = append(sorted, keyed{key: canonicalKey(c.CleanablePath), cand: c})
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].key < sorted[j].key })

	retained := make(map[*Candidate]bool, len(sorted))
	lastKept := ""
	for _, k := range sorted {
		if lastKept != "" && strings.HasPrefix(k.key, lastKept+"/") {
			continue
		}
		retained[k.cand] = true
		lastKept = k.key
	}

	out := make([]*Candidate, 0, len(retained))
	for _, c := range candidates {
		if retained[c] {
			out = append(out, c)
		}
	}
	return out
}

// canonicalKey normalizes a path for ancestor/descendant comparison:
// cleaned, separator-normalized, no trailing separator.
func canonicalKey(path string) string {
	return strings.TrimSuffix(filepath.ToSlash(filepath.Clean(path)), "/")
}

// SortBySize orders candidates descending by computed size; entries
// whose sizing errored or timed out sort last, stable by path.
func SortBySize(candidates []*Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		si, oki := candidates[i].SizeBytes()
		sj, okj := candidates[j].SizeBytes()
		if oki != okj {
			return oki
		}
		if !oki {
			return candidates[i].CleanablePath < candidates[j].CleanablePath
		}
		if si != sj {
			return si > sj
		}
		return candidates[i].CleanablePath < candidates[j].CleanablePath
	})
}
