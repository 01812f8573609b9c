package scan

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultSizeTimeout bounds one directory's size computation.
const DefaultSizeTimeout = 60 * time.Second

// deadline checks are amortized over this many visited entries.
const deadlineCheckInterval = 256

// Sizer computes on-disk sizes for candidates with a bounded worker
// pool. Each directory is independently bounded by Timeout; a timeout
// marks that one entry as errored without aborting siblings.
type Sizer struct {
	Timeout time.Duration
	Workers int
}

// NewSizer returns a sizer with the default timeout and one worker per
// CPU.
func NewSizer() *Sizer {
	return &Sizer{Timeout: DefaultSizeTimeout, Workers: runtime.NumCPU()}
}

func (z *Sizer) workers() int {
	if z.Workers > 0 {
		return z.Workers
	}
	return runtime.NumCPU()
}

func (z *Sizer) timeout() time.Duration {
	if z.Timeout > 0 {
		return z.Timeout
	}
	return DefaultSizeTimeout
}

// Run sizes every candidate and returns only after all have completed
// or timed out. Timed-out entries keep SizeCalculated false and
// contribute one error each.
func (z *Sizer) Run(ctx context.Context, candidates []*Candidate) []error {
	stream := z.Stream(ctx, candidates)
	for range stream.Results {
	}
	return stream.Wait()
}

// Stream sizes candidates in parallel and delivers each one as it
// completes, in completion order. The result channel is pre-sized to
// the batch, so workers never block on a slow or departed consumer and
// a caller that stops reading leaks nothing; the channel is closed
// after the last worker finishes.
func (z *Sizer) Stream(ctx context.Context, candidates []*Candidate) *Stream {
	out := make(chan *Candidate, len(candidates))
	s := &Stream{
		Total:   len(candidates),
		Results: out,
		done:    make(chan struct{}),
	}

	go func() {
		defer close(s.done)
		defer close(out)

		g, ctx := errgroup.WithContext(ctx)
		g.SetLimit(z.workers())

		var mu sync.Mutex
		for _, cand := range candidates {
			g.Go(func() error {
				size, err := dirSize(ctx, cand.CleanablePath, z.timeout())
				if err != nil {
					logrus.WithField("path", cand.CleanablePath).WithError(err).Debug("size computation failed")
					mu.Lock()
					s.errs = append(s.errs, err)
					mu.Unlock()
				} else {
					cand.setSize(size)
				}
				out <- cand
				return nil
			})
		}
		_ = g.Wait()
	}()

	return s
}

// Stream is the streaming-mode handoff: one producer side fed by many
// workers, one consumer side. Delivery order is completion order;
// callers needing size-sorted presentation must buffer and re-sort.
type Stream struct {
	// Total is the number of candidates that will be delivered.
	Total int
	// Results yields each candidate as its sizing finishes and is
	// closed after the last one.
	Results <-chan *Candidate

	done chan struct{}
	errs []error
}

// Wait blocks until all sizing workers have finished and returns the
// per-directory errors accumulated along the way.
func (s *Stream) Wait() []error {
	<-s.done
	return append([]error(nil), s.errs...)
}

// dirSize walks dir without following symlinks and sums regular file
// sizes. The deadline is checked every few hundred entries so a
// pathologically large directory cannot stall the batch; unreadable
// entries are skipped.
func dirSize(ctx context.Context, dir string, timeout time.Duration) (int64, error) {
	start := time.Now()
	deadline := start.Add(timeout)

	var total int64
	var visited int

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// An unreadable root is an error; unreadable entries below
			// it just undercount.
			if path == dir {
				return &TraversalError{Path: dir, Err: err}
			}
			return nil
		}
		visited++
		if visited%deadlineCheckInterval == 0 {
			if time.Now().After(deadline) {
				return &SizeTimeoutError{Path: dir, Timeout: timeout}
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return nil
			}
			total += info.Size()
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if time.Now().After(deadline) {
		return 0, &SizeTimeoutError{Path: dir, Timeout: timeout}
	}
	return total, nil
}
