// Package policy implements keep/protect rules: directories the scanner
// must never report as cleanable, decided at detection time.
package policy

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	homedir "github.com/mitchellh/go-homedir"

	"devclean/internal/config"
)

// KeepMarker is the per-project opt-out file. A project root containing
// it is never scanned for cleanable directories.
const KeepMarker = ".dev-cleaner-keep"

// KeepPatternsFile holds per-project protection patterns, one per line,
// gitignore-style comments allowed.
const KeepPatternsFile = ".dev-cleaner-keep-patterns"

// Decision reports whether a target is protected and why.
type Decision struct {
	Protected bool
	Reason    string
}

// KeepPolicy evaluates protection for (project root, cleanable path)
// pairs. Construct once per scan from the loaded config.
type KeepPolicy struct {
	keepPaths []string
	keepGlobs []compiledGlob
	keepRoots []compiledGlob
}

type compiledGlob struct {
	pattern string
	matcher glob.Glob
}

// FromConfig builds the policy. Config globs are validated by
// config.Validate before this runs; globs that still fail to compile
// are skipped.
func FromConfig(cfg config.Config) *KeepPolicy {
	p := &KeepPolicy{}
	for _, raw := range cfg.KeepPaths {
		if expanded, err := config.ExpandPath(raw); err == nil {
			p.keepPaths = append(p.keepPaths, expanded)
		}
	}
	p.keepGlobs = compileGlobs(cfg.KeepGlobs)
	p.keepRoots = compileGlobs(cfg.KeepProjectRoots)
	return p
}

func compileGlobs(patterns []string) []compiledGlob {
	var out []compiledGlob
	for _, raw := range patterns {
		expanded, err := homedir.Expand(raw)
		if err != nil {
			expanded = raw
		}
		g, err := glob.Compile(filepath.ToSlash(expanded), '/')
		if err != nil {
			continue
		}
		out = append(out, compiledGlob{pattern: raw, matcher: g})
	}
	return out
}

// Evaluate decides whether the cleanable path under root is protected.
func (p *KeepPolicy) Evaluate(root, cleanablePath string) Decision {
	if fileExists(filepath.Join(root, KeepMarker)) {
		return Decision{Protected: true, Reason: "project_marker:" + KeepMarker}
	}

	matched, err := p.matchesPatternFile(root, cleanablePath)
	if err != nil {
		// A keep-patterns file we cannot parse fails protected: the
		// user asked for protection and we cannot tell how much.
		return Decision{Protected: true, Reason: fmt.Sprintf("project_marker:%s(parse_error:%v)", KeepPatternsFile, err)}
	}
	if matched {
		return Decision{Protected: true, Reason: "project_marker:" + KeepPatternsFile}
	}

	if p.matchRootGlobs(root) {
		return Decision{Protected: true, Reason: "config_keep_project_roots"}
	}
	if p.matchKeepPaths(cleanablePath) || p.matchKeepPaths(root) {
		return Decision{Protected: true, Reason: "config_keep_paths"}
	}
	if p.matchKeepGlobs(cleanablePath) || p.matchKeepGlobs(root) {
		return Decision{Protected: true, Reason: "config_keep_globs"}
	}
	return Decision{}
}

// Protected is a convenience wrapper around Evaluate.
func (p *KeepPolicy) Protected(root, cleanablePath string) bool {
	return p.Evaluate(root, cleanablePath).Protected
}

func (p *KeepPolicy) matchesPatternFile(root, target string) (bool, error) {
	path := filepath.Join(root, KeepPatternsFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		pattern := strings.TrimSpace(sc.Text())
		if pattern == "" || strings.HasPrefix(pattern, "#") {
			continue
		}
		ok, err := matchProjectPattern(root, target, pattern)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, sc.Err()
}

func matchProjectPattern(root, target, pattern string) (bool, error) {
	expanded, err := homedir.Expand(pattern)
	if err != nil {
		expanded = pattern
	}

	if filepath.IsAbs(expanded) {
		if hasGlobChars(expanded) {
			g, err := glob.Compile(filepath.ToSlash(expanded), '/')
			if err != nil {
				return false, err
			}
			return g.Match(filepath.ToSlash(target)), nil
		}
		return isSameOrChild(target, expanded), nil
	}

	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false, nil
	}
	relSlash := filepath.ToSlash(rel)

	if hasGlobChars(expanded) {
		g, err := glob.Compile(filepath.ToSlash(expanded), '/')
		if err != nil {
			return false, err
		}
		return g.Match(relSlash), nil
	}
	return isSameOrChild(target, filepath.Join(root, expanded)), nil
}

func (p *KeepPolicy) matchRootGlobs(root string) bool {
	slash := filepath.ToSlash(root)
	for _, g := range p.keepRoots {
		if g.matcher.Match(slash) {
			return true
		}
	}
	return false
}

func (p *KeepPolicy) matchKeepPaths(path string) bool {
	for _, keep := range p.keepPaths {
		if isSameOrChild(path, keep) || isSameOrChild(keep, path) {
			return true
		}
	}
	return false
}

func (p *KeepPolicy) matchKeepGlobs(path string) bool {
	slash := filepath.ToSlash(path)
	for _, g := range p.keepGlobs {
		if g.matcher.Match(slash) {
			return true
		}
	}
	return false
}

func hasGlobChars(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[")
}

func isSameOrChild(path, parent string) bool {
	path = filepath.Clean(path)
	parent = filepath.Clean(parent)
	if path == parent {
		return true
	}
	return strings.HasPrefix(path, parent+string(filepath.Separator))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
