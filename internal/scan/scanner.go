package scan

import (
	"context"
	"runtime"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"devclean/internal/catalog"
	"devclean/internal/config"
	"devclean/internal/detect"
	"devclean/internal/policy"
)

// Options are the traversal parameters for one scan invocation.
type Options struct {
	// Roots to walk. Each must be an absolute, expanded path.
	Roots []string

	// MaxDepth limits descent, counted in path segments from the root:
	// a child of the root is depth 1. Zero means unlimited. Cleanable
	// directories found at the boundary are still reported.
	MaxDepth int

	// RespectIgnore prunes traversal with conservative .gitignore
	// entries found along the way. It never affects which patterns the
	// detector learns from project .gitignore files.
	RespectIgnore bool

	// ExcludeDirs are basenames never descended into, in addition to
	// the always-pruned VCS directories.
	ExcludeDirs []string

	// IncludeGlobs force-match directories with no project detection.
	// ExcludeGlobs prune by basename or root-relative path.
	IncludeGlobs []string
	ExcludeGlobs []string

	// Concurrency bounds both the traversal workers and the sizing
	// pool. Zero means one worker per CPU.
	Concurrency int

	// SizeTimeout bounds each candidate's size computation.
	SizeTimeout time.Duration
}

func (o Options) concurrency() int {
	if o.Concurrency > 0 {
		return o.Concurrency
	}
	return runtime.NumCPU()
}

// Filters narrow the candidate set. Category, risk, and age apply
// before sizing so filtered-out directories cost no size work; the
// size floor applies after.
type Filters struct {
	Category *catalog.Category
	MaxRisk  *catalog.RiskLevel

	// MinSize in bytes. Candidates whose sizing failed or timed out
	// are kept: an absent size is unknown, not small.
	MinSize int64

	// OlderThanDays keeps only candidates at least this stale.
	OlderThanDays int
}

func (f Filters) preSize(c *Candidate) bool {
	if f.Category != nil && c.Category != *f.Category {
		return false
	}
	if f.MaxRisk != nil && c.RiskLevel > *f.MaxRisk {
		return false
	}
	if f.OlderThanDays > 0 && c.AgeDays() < f.OlderThanDays {
		return false
	}
	return true
}

func (f Filters) postSize(c *Candidate) bool {
	if f.MinSize <= 0 {
		return true
	}
	size, ok := c.SizeBytes()
	if !ok {
		return true
	}
	return size >= f.MinSize
}

// Result is the outcome of a blocking scan.
type Result struct {
	Candidates []*Candidate
	// Errors are non-fatal: unreadable directories and size timeouts.
	Errors []error
	// Warnings are non-fatal detector notes, mostly .gitignore parse
	// problems.
	Warnings []string
}

// Err folds the non-fatal errors into one, or nil when the scan was
// clean.
func (r *Result) Err() error {
	var merr *multierror.Error
	for _, err := range r.Errors {
		merr = multierror.Append(merr, err)
	}
	return merr.ErrorOrNil()
}

// TotalSize sums the computed sizes; unsized candidates contribute
// nothing.
func (r *Result) TotalSize() int64 {
	var total int64
	for _, c := range r.Candidates {
		if size, ok := c.SizeBytes(); ok {
			total += size
		}
	}
	return total
}

// Scanner runs the discovery pipeline: traverse, classify, deduplicate,
// size, filter. It never deletes anything.
type Scanner struct {
	opts    Options
	filters Filters
	cat     *catalog.Catalog
	det     *detect.Detector
	sizer   *Sizer
}

// New validates cfg and assembles a scanner. A malformed custom pattern
// or keep glob fails here, before any filesystem work.
func New(cfg config.Config, opts Options, filters Filters) (*Scanner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &ConfigurationError{Err: err}
	}
	cat := catalog.Default()
	keep := policy.FromConfig(cfg)
	return &Scanner{
		opts:    opts,
		filters: filters,
		cat:     cat,
		det:     detect.New(cat, cfg.CustomPatterns, keep),
		sizer:   &Sizer{Timeout: opts.SizeTimeout, Workers: opts.concurrency()},
	}, nil
}

// Catalog exposes the pattern catalog backing this scanner.
func (s *Scanner) Catalog() *catalog.Catalog { return s.cat }

// Scan runs the full pipeline and blocks until every surviving
// candidate is sized.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	candidates, errs, err := s.discover(ctx)
	if err != nil {
		return nil, err
	}

	errs = append(errs, s.sizer.Run(ctx, candidates)...)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kept := candidates[:0]
	for _, c := range candidates {
		if s.filters.postSize(c) {
			kept = append(kept, c)
		}
	}
	SortBySize(kept)

	return &Result{
		Candidates: kept,
		Errors:     errs,
		Warnings:   s.det.Warnings(),
	}, nil
}

// ScanStream runs discovery to completion, then hands off to streaming
// sizing: each candidate is delivered as its size resolves. Post-size
// filtering is the consumer's concern in this mode; MinSize is ignored.
func (s *Scanner) ScanStream(ctx context.Context) (*Stream, []error, error) {
	candidates, errs, err := s.discover(ctx)
	if err != nil {
		return nil, nil, err
	}
	return s.sizer.Stream(ctx, candidates), errs, nil
}

// ApplyPostFilters applies the size floor to an already-sized set.
// Streaming consumers call this after collecting the stream, mirroring
// what Scan does internally.
func (s *Scanner) ApplyPostFilters(candidates []*Candidate) []*Candidate {
	kept := make([]*Candidate, 0, len(candidates))
	for _, c := range candidates {
		if s.filters.postSize(c) {
			kept = append(kept, c)
		}
	}
	return kept
}

// Warnings returns the detector's non-fatal notes collected so far.
func (s *Scanner) Warnings() []string { return s.det.Warnings() }

// discover is the shared front half: traverse, deduplicate, pre-size
// filter. The returned slice is ready for sizing.
func (s *Scanner) discover(ctx context.Context) ([]*Candidate, []error, error) {
	w, err := newWalker(s.det, s.cat, s.opts)
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	raw, errs := w.run(ctx, s.opts.Roots)
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	deduped := Dedupe(raw)
	kept := deduped[:0]
	for _, c := range deduped {
		if s.filters.preSize(c) {
			kept = append(kept, c)
		}
	}

	logrus.WithFields(logrus.Fields{
		"raw":      len(raw),
		"deduped":  len(deduped),
		"kept":     len(kept),
		"duration": time.Since(start).Round(time.Millisecond),
	}).Debug("traversal complete")

	return kept, errs, nil
}
