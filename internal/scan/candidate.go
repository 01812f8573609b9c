// Package scan implements the discovery engine: traversal,
// classification, deduplication, and the two-stage size pipeline. It
// never mutates the filesystem; deletion belongs to the sweep package.
package scan

import (
	"time"

	"devclean/internal/catalog"

	"devclean/internal/core"
)

// MatchedRule records which mechanism produced a candidate.
type MatchedRule struct {
	Source  catalog.RuleSource `json:"source"`
	Pattern string             `json:"pattern"`
	Name    string             `json:"name,omitempty"`
}

// Candidate is one regenerable directory eligible for deletion. It is
// created unsized by the traversal engine, enriched by the classifier
// and the size calculator, and handed to consumers by value; the
// engine owns all instances until then.
type Candidate struct {
	// Root is the detected project root. CleanablePath is always a
	// strict descendant of it, never the root itself.
	Root        string              `json:"root"`
	ProjectType catalog.ProjectType `json:"project_type"`

	CleanablePath string `json:"cleanable_dir"`

	// Size is present only once computed; consumers must never read an
	// absent size as zero.
	Size           *int64 `json:"size,omitempty"`
	SizeCalculated bool   `json:"size_calculated"`

	LastModified time.Time `json:"last_modified"`

	// InUse is a heuristic: a recognized lock file under Root was
	// modified within the recency window. Advisory only.
	InUse bool `json:"in_use"`

	MatchedRule MatchedRule        `json:"matched_rule"`
	Category    catalog.Category   `json:"category"`
	RiskLevel   catalog.RiskLevel  `json:"risk_level"`
	Confidence  catalog.Confidence `json:"confidence"`
}

// SizeBytes returns the computed size, or 0 and false when sizing has
// not completed for this path.
func (c *Candidate) SizeBytes() (int64, bool) {
	if !c.SizeCalculated || c.Size == nil {
		return 0, false
	}
	return *c.Size, true
}

func (c *Candidate) setSize(size int64) {
	c.Size = &size
	c.SizeCalculated = true
}

// SizeHuman renders the size for display.
func (c *Candidate) SizeHuman() string {
	size, ok := c.SizeBytes()
	if !ok {
		return "?"
	}
	return core.FormatSize(size)
}

// AgeDays returns whole days since the cleanable directory was modified.
func (c *Candidate) AgeDays() int {
	return int(time.Since(c.LastModified).Hours() / 24)
}

// TypeDisplayName prefers the custom rule name over the project type.
func (c *Candidate) TypeDisplayName() string {
	if c.MatchedRule.Name != "" {
		return c.MatchedRule.Name
	}
	return c.ProjectType.DisplayName()
}
