// Package sweep executes a reviewed deletion: the only package in the
// tool that removes user data. Every target is re-validated immediately
// before it is touched, and every outcome is audit-logged.
package sweep

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"devclean/internal/audit"
	"devclean/internal/scan"
	"devclean/internal/trash"
)

// Mode selects what happens to a confirmed target.
type Mode int

const (
	// ModeDelete removes targets permanently.
	ModeDelete Mode = iota
	// ModeTrash moves targets into the trash area for later restore.
	ModeTrash
)

// Options configure one sweep run.
type Options struct {
	Mode   Mode
	DryRun bool

	// TrashRoot overrides the trash location. Empty uses the default.
	TrashRoot string
}

// ItemResult is the outcome for one target.
type ItemResult struct {
	Candidate *scan.Candidate
	Action    string // audit action constant
	Detail    string
	Err       error
}

// Summary is the aggregate outcome of a run.
type Summary struct {
	Results    []ItemResult
	FreedBytes int64
	Deleted    int
	Trashed    int
	Skipped    int
	Failed     int
	// BatchID is set in trash mode when anything was moved.
	BatchID string
}

// Err folds the per-item failures into one error, or nil.
func (s *Summary) Err() error {
	var merr *multierror.Error
	for _, r := range s.Results {
		if r.Err != nil {
			merr = multierror.Append(merr, r.Err)
		}
	}
	return merr.ErrorOrNil()
}

// Executor runs sweeps. The scanner is used for pre-removal
// re-validation, the audit logger may be nil.
type Executor struct {
	Scanner *scan.Scanner
	Audit   *audit.Logger

	// OnItem, when set, is called after each target is handled. Used by
	// the CLI for progress output.
	OnItem func(ItemResult)
}

// Run processes the candidates in order. A failing target is recorded
// and the run continues; only context cancellation stops it early.
func (e *Executor) Run(ctx context.Context, command string, roots []string, candidates []*scan.Candidate, opts Options) (*Summary, error) {
	e.Audit.RunStarted(command, roots, opts.DryRun)

	var batch *trash.Batch
	if opts.Mode == ModeTrash && !opts.DryRun {
		bin, err := trash.Open(opts.TrashRoot)
		if err != nil {
			return nil, err
		}
		if batch, err = bin.NewBatch(); err != nil {
			return nil, err
		}
	}

	summary := &Summary{}
	if batch != nil {
		summary.BatchID = batch.ID()
	}

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		res := e.handle(c, batch, opts)
		summary.Results = append(summary.Results, res)

		switch res.Action {
		case audit.ActionDeleted:
			summary.Deleted++
		case audit.ActionTrashed:
			summary.Trashed++
		case audit.ActionSkipped:
			summary.Skipped++
		case audit.ActionFailed:
			summary.Failed++
		}
		if res.Err == nil && res.Action != audit.ActionSkipped {
			if size, ok := res.Candidate.SizeBytes(); ok {
				summary.FreedBytes += size
			}
		}

		var size *int64
		if s, ok := res.Candidate.SizeBytes(); ok {
			size = &s
		}
		detail := res.Detail
		if res.Err != nil {
			detail = res.Err.Error()
		}
		e.Audit.ItemAction(res.Candidate.CleanablePath, res.Action, size, detail)

		if e.OnItem != nil {
			e.OnItem(res)
		}
	}

	e.Audit.RunFinished(len(summary.Results), summary.FreedBytes, summary.Failed)
	return summary, nil
}

func (e *Executor) handle(c *scan.Candidate, batch *trash.Batch, opts Options) ItemResult {
	refreshed, err := e.Scanner.Revalidate(c)
	if err != nil {
		return ItemResult{Candidate: c, Action: audit.ActionFailed, Err: err}
	}
	if refreshed == nil {
		return ItemResult{Candidate: c, Action: audit.ActionSkipped, Detail: "no longer matches"}
	}

	if opts.DryRun {
		action := audit.ActionDeleted
		if opts.Mode == ModeTrash {
			action = audit.ActionTrashed
		}
		return ItemResult{Candidate: refreshed, Action: action, Detail: "dry run"}
	}

	logrus.WithField("path", refreshed.CleanablePath).Debug("removing")

	if opts.Mode == ModeTrash {
		var size *int64
		if s, ok := refreshed.SizeBytes(); ok {
			size = &s
		}
		if err := batch.Move(refreshed.CleanablePath, size); err != nil {
			return ItemResult{Candidate: refreshed, Action: audit.ActionFailed, Err: err}
		}
		return ItemResult{Candidate: refreshed, Action: audit.ActionTrashed}
	}

	if err := os.RemoveAll(refreshed.CleanablePath); err != nil {
		return ItemResult{
			Candidate: refreshed,
			Action:    audit.ActionFailed,
			Err:       fmt.Errorf("failed to remove %s: %w", refreshed.CleanablePath, err),
		}
	}
	return ItemResult{Candidate: refreshed, Action: audit.ActionDeleted}
}
