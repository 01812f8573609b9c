package scan

import (
	"os"
	"path/filepath"
)

// Revalidate re-checks a previously discovered candidate immediately
// before it is acted on. The filesystem may have changed since the
// scan: the directory may be gone, the project root may have been
// protected, or the rules may no longer match. Returns a refreshed
// candidate, or nil when the entry is no longer actionable.
func (s *Scanner) Revalidate(c *Candidate) (*Candidate, error) {
	info, err := os.Stat(c.CleanablePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &TraversalError{Path: c.CleanablePath, Err: err}
	}
	if !info.IsDir() {
		return nil, nil
	}

	// Force-included entries carry no detectable project structure, so
	// existence is all that can be rechecked.
	if c.MatchedRule.Name == "cli-include" {
		refreshed := *c
		refreshed.LastModified = info.ModTime()
		return &refreshed, nil
	}

	m := s.det.Examine(c.CleanablePath, c.Root)
	if m == nil {
		return nil, nil
	}

	rel := relSlash(m.Root, c.CleanablePath)
	category, risk, confidence := Classify(s.cat, m.Source, filepath.Base(c.CleanablePath), rel)
	refreshed := &Candidate{
		Root:           m.Root,
		ProjectType:    m.Type,
		CleanablePath:  c.CleanablePath,
		Size:           c.Size,
		SizeCalculated: c.SizeCalculated,
		LastModified:   info.ModTime(),
		InUse:          s.det.InUse(m.Root, m.Type),
		MatchedRule: MatchedRule{
			Source:  m.Source,
			Pattern: m.Pattern,
			Name:    m.RuleName,
		},
		Category:   category,
		RiskLevel:  risk,
		Confidence: confidence,
	}
	return refreshed, nil
}
