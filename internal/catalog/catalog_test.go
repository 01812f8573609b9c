package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryOf(t *testing.T) {
	c := Default()

	assert.Equal(t, CategoryDeps, c.CategoryOf("node_modules", "node_modules"))
	assert.Equal(t, CategoryDeps, c.CategoryOf(".venv", ".venv"))
	assert.Equal(t, CategoryDeps, c.CategoryOf("bundle", "vendor/bundle"))

	assert.Equal(t, CategoryCache, c.CategoryOf("__pycache__", "src/__pycache__"))
	assert.Equal(t, CategoryCache, c.CategoryOf(".cache", ".cache"))
	assert.Equal(t, CategoryCache, c.CategoryOf(".turbo", ".turbo"))

	assert.Equal(t, CategoryBuild, c.CategoryOf("target", "target"))
	assert.Equal(t, CategoryBuild, c.CategoryOf("cmake-build-debug", "cmake-build-debug"))
	assert.Equal(t, CategoryBuild, c.CategoryOf("mypkg.egg-info", "mypkg.egg-info"))

	// Unknown names default to build.
	assert.Equal(t, CategoryBuild, c.CategoryOf("scratch", "scratch"))
}

func TestDefaultRisk(t *testing.T) {
	c := Default()
	assert.Equal(t, RiskLow, c.DefaultRisk(CategoryCache))
	assert.Equal(t, RiskMedium, c.DefaultRisk(CategoryBuild))
	assert.Equal(t, RiskHigh, c.DefaultRisk(CategoryDeps))
}

func TestRiskForGitignoreAlwaysHigh(t *testing.T) {
	c := Default()
	assert.Equal(t, RiskHigh, c.RiskFor(SourceGitignore, CategoryCache))
	assert.Equal(t, RiskHigh, c.RiskFor(SourceGitignore, CategoryBuild))
	assert.Equal(t, RiskHigh, c.RiskFor(SourceGitignore, CategoryDeps))

	assert.Equal(t, RiskLow, c.RiskFor(SourceBuiltin, CategoryCache))
	assert.Equal(t, RiskMedium, c.RiskFor(SourceCustom, CategoryBuild))
}

func TestConfidenceFor(t *testing.T) {
	c := Default()
	assert.Equal(t, ConfidenceHigh, c.ConfidenceFor(SourceBuiltin))
	assert.Equal(t, ConfidenceHigh, c.ConfidenceFor(SourceCustom))
	assert.Equal(t, ConfidenceMedium, c.ConfidenceFor(SourceHeuristic))
	assert.Equal(t, ConfidenceLow, c.ConfidenceFor(SourceGitignore))
}

func TestMarkerRuleOrder(t *testing.T) {
	rules := Default().MarkerRules()
	require.NotEmpty(t, rules)

	// Generic C++ markers (Makefile) must be tried last so a Rust or Go
	// project with a Makefile is not misidentified.
	assert.Equal(t, TypeCpp, rules[len(rules)-1].Type)

	pos := make(map[ProjectType]int)
	for i, r := range rules {
		pos[r.Type] = i
	}
	assert.Less(t, pos[TypeRust], pos[TypeCpp])
	assert.Less(t, pos[TypeGo], pos[TypeCpp])
	assert.Less(t, pos[TypeDotNet], pos[TypeCpp])
}

func TestRiskOrdering(t *testing.T) {
	assert.True(t, RiskLow < RiskMedium)
	assert.True(t, RiskMedium < RiskHigh)
}

func TestParseHelpers(t *testing.T) {
	cat, err := ParseCategory("deps")
	require.NoError(t, err)
	assert.Equal(t, CategoryDeps, cat)
	_, err = ParseCategory("bogus")
	assert.Error(t, err)

	risk, err := ParseRisk("medium")
	require.NoError(t, err)
	assert.Equal(t, RiskMedium, risk)
	_, err = ParseRisk("extreme")
	assert.Error(t, err)
}
