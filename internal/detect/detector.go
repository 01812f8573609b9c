// Package detect locates project roots by marker files and decides
// which directories beneath them are cleanable.
package detect

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"
	"github.com/sirupsen/logrus"

	"devclean/internal/catalog"
	"devclean/internal/config"
	"devclean/internal/policy"
)

// Match describes a cleanable directory and the rule that produced it.
type Match struct {
	Root     string
	Type     catalog.ProjectType
	Source   catalog.RuleSource
	Pattern  string
	RuleName string // set for custom rules
}

type matcherKey struct {
	root string
	typ  catalog.ProjectType
}

type compiledRule struct {
	source  catalog.RuleSource
	pattern string
	matcher glob.Glob
	relPath bool // pattern addresses a root-relative path, not a basename
}

type ruleMatchers struct {
	rules []compiledRule
}

func (m *ruleMatchers) match(basename, relPath string) (compiledRule, bool) {
	for _, r := range m.rules {
		text := basename
		if r.relPath {
			text = relPath
		}
		if r.matcher.Match(text) {
			return r, true
		}
	}
	return compiledRule{}, false
}

type compiledCustom struct {
	config.CustomPattern
	rule compiledRule
}

// Detector resolves directories against the pattern catalog, user
// custom patterns, and per-root .gitignore discoveries. Matchers are
// compiled once per (project root, type) pair and cached; the detector
// is safe for concurrent use.
type Detector struct {
	catalog *catalog.Catalog
	custom  []compiledCustom
	keep    *policy.KeepPolicy

	mu       sync.Mutex
	matchers map[matcherKey]*ruleMatchers
	types    map[string]catalog.ProjectType

	warnMu   sync.Mutex
	warnings []string
}

// New builds a detector. Custom patterns must already be validated by
// config.Validate; patterns that still fail to compile are dropped.
func New(cat *catalog.Catalog, custom []config.CustomPattern, keep *policy.KeepPolicy) *Detector {
	d := &Detector{
		catalog:  cat,
		keep:     keep,
		matchers: make(map[matcherKey]*ruleMatchers),
		types:    make(map[string]catalog.ProjectType),
	}
	for _, p := range custom {
		rule, err := compileRule(catalog.SourceCustom, p.Directory)
		if err != nil {
			logrus.WithField("pattern", p.Name).Debug("skipping uncompilable custom pattern")
			continue
		}
		d.custom = append(d.custom, compiledCustom{CustomPattern: p, rule: rule})
	}
	return d
}

// Warnings returns non-fatal problems hit while reading .gitignore files.
func (d *Detector) Warnings() []string {
	d.warnMu.Lock()
	defer d.warnMu.Unlock()
	return append([]string(nil), d.warnings...)
}

func (d *Detector) addWarning(msg string) {
	d.warnMu.Lock()
	defer d.warnMu.Unlock()
	if len(d.warnings) < 500 {
		d.warnings = append(d.warnings, msg)
	}
}

// Examine decides whether dir is a cleanable directory. It walks
// ancestors from dir's parent up to stopRoot looking for a project root
// whose rules match dir, trying sources in precedence order at each
// level. Protected targets return nil: protection applies at detection,
// not post-hoc. Returns nil when dir is not a candidate.
func (d *Detector) Examine(dir, stopRoot string) *Match {
	basename := filepath.Base(dir)

	for ancestor := filepath.Dir(dir); within(stopRoot, ancestor); {
		rel, err := filepath.Rel(ancestor, dir)
		if err != nil {
			break
		}
		relSlash := filepath.ToSlash(rel)

		// Custom patterns outrank builtin and gitignore rules.
		for _, p := range d.custom {
			if !d.customRootMatches(ancestor, p.CustomPattern) {
				continue
			}
			if !matchRule(p.rule, basename, relSlash) {
				continue
			}
			if d.keep != nil && d.keep.Protected(ancestor, dir) {
				return nil
			}
			return &Match{
				Root:     ancestor,
				Type:     catalog.TypeUnknown,
				Source:   catalog.SourceCustom,
				Pattern:  p.Directory,
				RuleName: p.Name,
			}
		}

		if typ, ok := d.detectType(ancestor); ok {
			matchers := d.matchersFor(ancestor, typ)
			if rule, ok := matchers.match(basename, relSlash); ok {
				if d.keep != nil && d.keep.Protected(ancestor, dir) {
					return nil
				}
				return &Match{
					Root:    ancestor,
					Type:    typ,
					Source:  rule.source,
					Pattern: rule.pattern,
				}
			}
		}

		parent := filepath.Dir(ancestor)
		if parent == ancestor {
			break
		}
		ancestor = parent
	}

	return d.examineHeuristic(dir, stopRoot)
}

// examineHeuristic recognizes out-of-source CMake build directories by
// structural convention: CMakeCache.txt present without CMakeLists.txt,
// beneath an ancestor that holds the CMakeLists.txt.
func (d *Detector) examineHeuristic(dir, stopRoot string) *Match {
	if !isCMakeBuildDir(dir) {
		return nil
	}
	for ancestor := filepath.Dir(dir); within(stopRoot, ancestor); {
		if fileExists(filepath.Join(ancestor, "CMakeLists.txt")) {
			if d.keep != nil && d.keep.Protected(ancestor, dir) {
				return nil
			}
			return &Match{
				Root:    ancestor,
				Type:    catalog.TypeCpp,
				Source:  catalog.SourceHeuristic,
				Pattern: "cmake-out-of-source-build",
			}
		}
		parent := filepath.Dir(ancestor)
		if parent == ancestor {
			break
		}
		ancestor = parent
	}
	return nil
}

// InUse reports whether a recognized lock file under root was modified
// within the catalog's recency window. Advisory only.
func (d *Detector) InUse(root string, typ catalog.ProjectType) bool {
	now := time.Now()
	for _, lock := range d.catalog.LockFiles(typ) {
		info, err := os.Stat(filepath.Join(root, lock))
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) < d.catalog.InUseWindow {
			return true
		}
	}
	return false
}

// detectType finds the project type of dir by its marker files, using
// the catalog's ordered rule table. Results are cached per directory.
func (d *Detector) detectType(dir string) (catalog.ProjectType, bool) {
	d.mu.Lock()
	if typ, ok := d.types[dir]; ok {
		d.mu.Unlock()
		return typ, typ != catalog.TypeUnknown
	}
	d.mu.Unlock()

	typ := catalog.TypeUnknown
	for _, rule := range d.catalog.MarkerRules() {
		if markerPresent(dir, rule.Markers) {
			typ = rule.Type
			break
		}
	}

	d.mu.Lock()
	d.types[dir] = typ
	d.mu.Unlock()
	return typ, typ != catalog.TypeUnknown
}

// matchersFor returns the compiled rule set for a project root,
// building it outside the lock so .gitignore reads do not serialize
// other workers.
func (d *Detector) matchersFor(root string, typ catalog.ProjectType) *ruleMatchers {
	key := matcherKey{root: root, typ: typ}

	d.mu.Lock()
	if m, ok := d.matchers[key]; ok {
		d.mu.Unlock()
		return m
	}
	d.mu.Unlock()

	built := d.buildMatchers(root, typ)

	d.mu.Lock()
	defer d.mu.Unlock()
	if m, ok := d.matchers[key]; ok {
		return m
	}
	d.matchers[key] = built
	return built
}

func (d *Detector) buildMatchers(root string, typ catalog.ProjectType) *ruleMatchers {
	m := &ruleMatchers{}
	seen := make(map[string]bool)

	for _, pattern := range d.catalog.CleanableDirs(typ) {
		rule, err := compileRule(catalog.SourceBuiltin, pattern)
		if err != nil {
			continue
		}
		seen[pattern] = true
		m.rules = append(m.rules, rule)
	}

	// Pattern discovery always inspects .gitignore, independent of the
	// traversal-level respect-ignore flag.
	gitignore, err := catalog.GitignorePatterns(root)
	if err != nil {
		d.addWarning("cannot parse .gitignore in " + root + ": " + err.Error())
	}
	for _, pattern := range gitignore {
		if seen[pattern] {
			continue
		}
		rule, err := compileRule(catalog.SourceGitignore, pattern)
		if err != nil {
			continue
		}
		seen[pattern] = true
		m.rules = append(m.rules, rule)
	}
	return m
}

func (d *Detector) customRootMatches(root string, p config.CustomPattern) bool {
	if len(p.MarkerFiles) == 0 {
		return false
	}
	switch p.Mode() {
	case config.AllOf:
		for _, marker := range p.MarkerFiles {
			if !markerPresent(root, []string{marker}) {
				return false
			}
		}
		return true
	default:
		return markerPresent(root, p.MarkerFiles)
	}
}

func compileRule(source catalog.RuleSource, pattern string) (compiledRule, error) {
	slash := filepath.ToSlash(pattern)
	g, err := glob.Compile(slash, '/')
	if err != nil {
		return compiledRule{}, err
	}
	return compiledRule{
		source:  source,
		pattern: pattern,
		matcher: g,
		relPath: strings.Contains(slash, "/"),
	}, nil
}

func matchRule(r compiledRule, basename, relSlash string) bool {
	if r.relPath {
		return r.matcher.Match(relSlash)
	}
	return r.matcher.Match(basename)
}

func markerPresent(dir string, markers []string) bool {
	for _, marker := range markers {
		if strings.ContainsAny(marker, "*?[") {
			matches, err := filepath.Glob(filepath.Join(dir, marker))
			if err == nil && len(matches) > 0 {
				return true
			}
			continue
		}
		if fileExists(filepath.Join(dir, marker)) {
			return true
		}
	}
	return false
}

func isCMakeBuildDir(dir string) bool {
	return fileExists(filepath.Join(dir, "CMakeCache.txt")) &&
		!fileExists(filepath.Join(dir, "CMakeLists.txt"))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// within reports whether path equals root or lies beneath it.
func within(root, path string) bool {
	root = filepath.Clean(root)
	path = filepath.Clean(path)
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}
