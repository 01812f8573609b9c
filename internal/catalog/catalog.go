package catalog

import (
	"strings"
	"time"
)

// MarkerRule maps marker files to a project type. Rules are evaluated in
// order; the first rule with a present marker wins, so more specific
// ecosystems must come before generic ones (CMakeLists.txt/Makefile last).
type MarkerRule struct {
	Type    ProjectType
	Markers []string // any present marker identifies the type; "*" globs allowed
}

// Catalog holds the static classification tables for one scan. It is an
// immutable value constructed once per scan so tests can substitute
// alternate tables without touching process-wide state.
type Catalog struct {
	markerRules []MarkerRule
	cleanable   map[ProjectType][]string
	lockFiles   map[ProjectType][]string
	depsNames   map[string]bool
	cacheNames  map[string]bool
	buildNames  map[string]bool

	// InUseWindow is the recency window for the lock-file heuristic.
	InUseWindow time.Duration
}

// Default returns the builtin catalog.
func Default() *Catalog {
	return &Catalog{
		markerRules: []MarkerRule{
			{TypeNode, []string{"package.json", "package-lock.json"}},
			{TypeRust, []string{"Cargo.toml"}},
			{TypePython, []string{"requirements.txt", "setup.py", "pyproject.toml", "Pipfile"}},
			{TypeMaven, []string{"pom.xml"}},
			{TypeGradle, []string{"build.gradle", "build.gradle.kts"}},
			{TypeGo, []string{"go.mod"}},
			{TypeRuby, []string{"Gemfile"}},
			{TypeSwift, []string{"Package.swift"}},
			{TypePHP, []string{"composer.json"}},
			{TypeElixir, []string{"mix.exs"}},
			{TypeDotNet, []string{"*.csproj", "*.sln"}},
			{TypeCpp, []string{"CMakeLists.txt", "Makefile"}},
		},
		cleanable: map[ProjectType][]string{
			TypeNode:   {"node_modules", ".next", ".nuxt", "dist", "build", ".cache", ".turbo", ".parcel-cache"},
			TypeRust:   {"target"},
			TypePython: {".venv", "venv", "__pycache__", ".pytest_cache", ".mypy_cache", ".tox", "*.egg-info", ".eggs", "build", "dist"},
			TypeMaven:  {"target", "out"},
			TypeGradle: {"build", ".gradle", "out"},
			TypeGo:     {"vendor", "bin"},
			TypeCpp:    {"build", "cmake-build-debug", "cmake-build-release", "out"},
			TypeRuby:   {"vendor/bundle", ".bundle"},
			TypeSwift:  {".build", "DerivedData", ".swiftpm"},
			TypePHP:    {"vendor"},
			TypeElixir: {"_build", "deps"},
			TypeDotNet: {"bin", "obj"},
		},
		lockFiles: map[ProjectType][]string{
			TypeNode:   {"package-lock.json", "yarn.lock", "pnpm-lock.yaml"},
			TypeRust:   {"Cargo.lock"},
			TypePython: {"Pipfile.lock", "poetry.lock"},
			TypeGo:     {"go.sum"},
			TypeRuby:   {"Gemfile.lock"},
			TypePHP:    {"composer.lock"},
		},
		depsNames: map[string]bool{
			"node_modules": true,
			".venv":        true,
			"venv":         true,
			"vendor":       true,
			"deps":         true,
			".bundle":      true,
		},
		cacheNames: map[string]bool{
			"__pycache__":   true,
			".pytest_cache": true,
			".mypy_cache":   true,
			".tox":          true,
			".eggs":         true,
			".cache":        true,
			".turbo":        true,
			".parcel-cache": true,
			".gradle":       true,
		},
		buildNames: map[string]bool{
			"target":      true,
			"build":       true,
			"dist":        true,
			"out":         true,
			"_build":      true,
			"deriveddata": true,
			".build":      true,
			".swiftpm":    true,
			".next":       true,
			".nuxt":       true,
			"bin":         true,
			"obj":         true,
		},
		InUseWindow: 7 * 24 * time.Hour,
	}
}

// MarkerRules returns the ordered project type detection table.
func (c *Catalog) MarkerRules() []MarkerRule {
	return c.markerRules
}

// CleanableDirs returns the builtin cleanable patterns for a project type.
func (c *Catalog) CleanableDirs(t ProjectType) []string {
	return c.cleanable[t]
}

// LockFiles returns the lock files consulted by the in-use heuristic.
func (c *Catalog) LockFiles(t ProjectType) []string {
	return c.lockFiles[t]
}

// CategoryOf derives a category from the matched directory's basename and
// its path relative to the project root. Names with no table entry
// default to build.
func (c *Catalog) CategoryOf(basename, relPath string) Category {
	name := strings.ToLower(basename)
	rel := strings.ToLower(relPath)

	if c.depsNames[name] || rel == "vendor/bundle" || strings.HasPrefix(rel, "vendor/bundle/") {
		return CategoryDeps
	}
	if c.cacheNames[name] {
		return CategoryCache
	}
	if c.buildNames[name] || strings.HasPrefix(name, "cmake-build") || strings.HasSuffix(name, ".egg-info") {
		return CategoryBuild
	}
	return CategoryBuild
}

// DefaultRisk maps a category to its default risk level.
func (c *Catalog) DefaultRisk(cat Category) RiskLevel {
	switch cat {
	case CategoryCache:
		return RiskLow
	case CategoryDeps:
		return RiskHigh
	default:
		return RiskMedium
	}
}

// RiskFor resolves the risk level for a matched rule. Gitignore-derived
// matches are always high risk, overriding the category default.
func (c *Catalog) RiskFor(source RuleSource, cat Category) RiskLevel {
	if source == SourceGitignore {
		return RiskHigh
	}
	return c.DefaultRisk(cat)
}

// ConfidenceFor resolves classification confidence from the rule source.
func (c *Catalog) ConfidenceFor(source RuleSource) Confidence {
	switch source {
	case SourceBuiltin, SourceCustom:
		return ConfidenceHigh
	case SourceHeuristic:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
