// Package plan persists a reviewed deletion list to disk so that the
// scan and the deletion can happen in separate invocations. Every entry
// is re-validated at apply time; a plan is a proposal, not a promise.
package plan

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"devclean/internal/scan"
)

// SchemaVersion is bumped whenever the on-disk shape changes
// incompatibly. Load rejects files written by a different version.
const SchemaVersion = 1

// Plan is a saved deletion proposal.
type Plan struct {
	SchemaVersion int               `json:"schema_version"`
	ID            string            `json:"id"`
	CreatedAt     time.Time         `json:"created_at"`
	Roots         []string          `json:"roots"`
	Entries       []*scan.Candidate `json:"entries"`
}

// New builds a plan over the given candidates.
func New(roots []string, entries []*scan.Candidate) *Plan {
	return &Plan{
		SchemaVersion: SchemaVersion,
		ID:            uuid.NewString(),
		CreatedAt:     time.Now().UTC(),
		Roots:         roots,
		Entries:       entries,
	}
}

// TotalSize sums the sizes recorded at plan time.
func (p *Plan) TotalSize() int64 {
	var total int64
	for _, e := range p.Entries {
		if size, ok := e.SizeBytes(); ok {
			total += size
		}
	}
	return total
}

// Save writes the plan as indented JSON.
func (p *Plan) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create plan directory %s: %w", dir, err)
		}
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Load reads and checks a plan file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file %s: %w", path, err)
	}
	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse plan file %s: %w", path, err)
	}
	if p.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("plan file %s has schema version %d, expected %d", path, p.SchemaVersion, SchemaVersion)
	}
	return &p, nil
}
