package scan

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gobwas/glob"
	"github.com/sirupsen/logrus"

	"devclean/internal/catalog"
	"devclean/internal/detect"
)

// vcsDirs are pruned unconditionally. Their contents are never
// candidates and never descended into, regardless of configuration.
var vcsDirs = map[string]bool{
	".git": true,
	".svn": true,
	".hg":  true,
}

// walker performs one bounded-parallelism traversal over a set of
// roots. Directories are visited at most once; unreadable ones are
// recorded and skipped.
type walker struct {
	det  *detect.Detector
	cat  *catalog.Catalog
	opts Options

	includes     []compiledGlob
	excludes     []compiledGlob
	excludeNames map[string]bool

	sem chan struct{}
	wg  sync.WaitGroup

	mu         sync.Mutex
	candidates []*Candidate
	errs       []error
	seen       map[string]bool
}

type compiledGlob struct {
	pattern string
	matcher glob.Glob
}

func newWalker(det *detect.Detector, cat *catalog.Catalog, opts Options) (*walker, error) {
	w := &walker{
		det:          det,
		cat:          cat,
		opts:         opts,
		excludeNames: make(map[string]bool),
		sem:          make(chan struct{}, opts.concurrency()),
		seen:         make(map[string]bool),
	}
	for _, name := range opts.ExcludeDirs {
		w.excludeNames[name] = true
	}
	var err error
	if w.includes, err = compileGlobs(opts.IncludeGlobs); err != nil {
		return nil, err
	}
	if w.excludes, err = compileGlobs(opts.ExcludeGlobs); err != nil {
		return nil, err
	}
	return w, nil
}

func compileGlobs(patterns []string) ([]compiledGlob, error) {
	out := make([]compiledGlob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(filepath.ToSlash(p), '/')
		if err != nil {
			return nil, err
		}
		out = append(out, compiledGlob{pattern: p, matcher: g})
	}
	return out, nil
}

// run walks every root to completion and returns the raw, undeduplicated
// candidate set together with the non-fatal traversal errors.
func (w *walker) run(ctx context.Context, roots []string) ([]*Candidate, []error) {
	for _, root := range roots {
		w.walkDir(ctx, root, root, 0, nil)
	}
	w.wg.Wait()
	return w.candidates, w.errs
}

// walkDir visits one directory. depth is the segment distance from the
// scan root: the root itself is 0 and is always visited, its children
// are 1. Subdirectories recurse in parallel when a worker slot is free
// and inline otherwise, so the walk can never deadlock on its own pool.
func (w *walker) walkDir(ctx context.Context, root, dir string, depth int, ignores []compiledGlob) {
	if ctx.Err() != nil {
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		w.addError(&TraversalError{Path: dir, Err: err})
		return
	}

	if w.opts.RespectIgnore {
		ignores = appendIgnores(ignores, dir)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			// ReadDir does not follow symlinks, so a link to a
			// directory fails IsDir and is skipped here.
			continue
		}
		name := entry.Name()
		path := filepath.Join(dir, name)

		childDepth := depth + 1
		if w.opts.MaxDepth > 0 && childDepth > w.opts.MaxDepth {
			continue
		}
		if vcsDirs[name] || w.excludeNames[name] {
			continue
		}
		rel := relSlash(root, path)
		if matchAny(w.excludes, name, rel) {
			continue
		}
		if w.opts.RespectIgnore && matchAny(ignores, name, name) {
			continue
		}

		if g, ok := matchWhich(w.includes, name, rel); ok {
			w.addInclude(root, path, g.pattern)
			continue
		}

		if m := w.det.Examine(path, root); m != nil {
			w.addMatch(m, path)
			continue
		}

		select {
		case w.sem <- struct{}{}:
			w.wg.Add(1)
			go func() {
				defer w.wg.Done()
				defer func() { <-w.sem }()
				w.walkDir(ctx, root, path, childDepth, ignores)
			}()
		default:
			w.walkDir(ctx, root, path, childDepth, ignores)
		}
	}
}

// appendIgnores extends the inherited ignore stack with patterns from
// dir's own .gitignore. The three-index slice keeps siblings from
// sharing an append target.
func appendIgnores(ignores []compiledGlob, dir string) []compiledGlob {
	patterns, err := catalog.GitignorePatterns(dir)
	if err != nil || len(patterns) == 0 {
		return ignores
	}
	out := ignores[:len(ignores):len(ignores)]
	for _, p := range patterns {
		g, err := glob.Compile(filepath.ToSlash(p), '/')
		if err != nil {
			continue
		}
		out = append(out, compiledGlob{pattern: p, matcher: g})
	}
	return out
}

func matchAny(globs []compiledGlob, basename, rel string) bool {
	_, ok := matchWhich(globs, basename, rel)
	return ok
}

func matchWhich(globs []compiledGlob, basename, rel string) (compiledGlob, bool) {
	for _, g := range globs {
		if g.matcher.Match(basename) || g.matcher.Match(rel) {
			return g, true
		}
	}
	return compiledGlob{}, false
}

// addMatch turns a detector match into a candidate.
func (w *walker) addMatch(m *detect.Match, dir string) {
	rel := relSlash(m.Root, dir)
	category, risk, confidence := Classify(w.cat, m.Source, filepath.Base(dir), rel)
	w.add(&Candidate{
		Root:          m.Root,
		ProjectType:   m.Type,
		CleanablePath: dir,
		LastModified:  modTime(dir),
		InUse:         w.det.InUse(m.Root, m.Type),
		MatchedRule: MatchedRule{
			Source:  m.Source,
			Pattern: m.Pattern,
			Name:    m.RuleName,
		},
		Category:   category,
		RiskLevel:  risk,
		Confidence: confidence,
	})
}

// addInclude records a directory forced in by a command-line include
// glob. No project root is implied, so the scan root stands in and the
// type stays unknown.
func (w *walker) addInclude(root, dir, pattern string) {
	rel := relSlash(root, dir)
	category, risk, confidence := Classify(w.cat, catalog.SourceCustom, filepath.Base(dir), rel)
	w.add(&Candidate{
		Root:          root,
		ProjectType:   catalog.TypeUnknown,
		CleanablePath: dir,
		LastModified:  modTime(dir),
		MatchedRule: MatchedRule{
			Source:  catalog.SourceCustom,
			Pattern: pattern,
			Name:    "cli-include",
		},
		Category:   category,
		RiskLevel:  risk,
		Confidence: confidence,
	})
}

func (w *walker) add(c *Candidate) {
	key := canonicalKey(c.CleanablePath)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.seen[key] {
		return
	}
	w.seen[key] = true
	w.candidates = append(w.candidates, c)
	logrus.WithFields(logrus.Fields{
		"path":   c.CleanablePath,
		"source": c.MatchedRule.Source.String(),
	}).Debug("candidate found")
}

func (w *walker) addError(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.errs = append(w.errs, err)
}

func relSlash(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// modTime reads a directory's modification time. An unreadable entry
// defaults to now: an unknown age must not look ancient to the age
// filter or the deletion ranking.
func modTime(dir string) time.Time {
	info, err := os.Stat(dir)
	if err != nil {
		return time.Now()
	}
	return info.ModTime()
}
