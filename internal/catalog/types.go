package catalog

import (
	"encoding/json"
	"fmt"
)

// ProjectType identifies a recognized project flavor.
type ProjectType string

const (
	TypeNode    ProjectType = "node"
	TypeRust    ProjectType = "rust"
	TypePython  ProjectType = "python"
	TypeMaven   ProjectType = "maven"
	TypeGradle  ProjectType = "gradle"
	TypeGo      ProjectType = "go"
	TypeCpp     ProjectType = "cpp"
	TypeRuby    ProjectType = "ruby"
	TypeSwift   ProjectType = "swift"
	TypePHP     ProjectType = "php"
	TypeElixir  ProjectType = "elixir"
	TypeDotNet  ProjectType = "dotnet"
	TypeUnknown ProjectType = "unknown"
)

// DisplayName returns the human-readable name for a project type.
func (t ProjectType) DisplayName() string {
	switch t {
	case TypeNode:
		return "Node.js"
	case TypeRust:
		return "Rust"
	case TypePython:
		return "Python"
	case TypeMaven:
		return "Maven"
	case TypeGradle:
		return "Gradle"
	case TypeGo:
		return "Go"
	case TypeCpp:
		return "C/C++"
	case TypeRuby:
		return "Ruby"
	case TypeSwift:
		return "Swift"
	case TypePHP:
		return "PHP"
	case TypeElixir:
		return "Elixir"
	case TypeDotNet:
		return ".NET"
	default:
		return "Unknown"
	}
}

// RuleSource identifies which mechanism produced a match. Declaration
// order is precedence order: when the same directory is matched by more
// than one source, the lowest value wins.
type RuleSource int

const (
	SourceCustom RuleSource = iota
	SourceBuiltin
	SourceGitignore
	SourceHeuristic
)

var ruleSourceNames = map[RuleSource]string{
	SourceCustom:    "custom",
	SourceBuiltin:   "builtin",
	SourceGitignore: "gitignore",
	SourceHeuristic: "heuristic",
}

func (s RuleSource) String() string {
	if name, ok := ruleSourceNames[s]; ok {
		return name
	}
	return fmt.Sprintf("rulesource(%d)", int(s))
}

func (s RuleSource) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *RuleSource) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for src, n := range ruleSourceNames {
		if n == name {
			*s = src
			return nil
		}
	}
	return fmt.Errorf("unknown rule source: %q", name)
}

// Category groups cleanable directories by what regenerates them.
type Category int

const (
	CategoryCache Category = iota
	CategoryBuild
	CategoryDeps
)

var categoryNames = map[Category]string{
	CategoryCache: "cache",
	CategoryBuild: "build",
	CategoryDeps:  "deps",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", int(c))
}

func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Category) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseCategory(name)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCategory parses a category name as used on the CLI and in config.
func ParseCategory(name string) (Category, error) {
	for cat, n := range categoryNames {
		if n == name {
			return cat, nil
		}
	}
	return 0, fmt.Errorf("unknown category: %q (expected cache, build, or deps)", name)
}

// RiskLevel orders candidates by how costly an accidental deletion is.
// Values are ordered so that direct comparison works for max-risk filters.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
)

var riskNames = map[RiskLevel]string{
	RiskLow:    "low",
	RiskMedium: "medium",
	RiskHigh:   "high",
}

func (r RiskLevel) String() string {
	if name, ok := riskNames[r]; ok {
		return name
	}
	return fmt.Sprintf("risk(%d)", int(r))
}

func (r RiskLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *RiskLevel) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	parsed, err := ParseRisk(name)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseRisk parses a risk level name.
func ParseRisk(name string) (RiskLevel, error) {
	for risk, n := range riskNames {
		if n == name {
			return risk, nil
		}
	}
	return 0, fmt.Errorf("unknown risk level: %q (expected low, medium, or high)", name)
}

// Confidence reports how certain a classification is.
type Confidence int

const (
	ConfidenceLow Confidence = iota
	ConfidenceMedium
	ConfidenceHigh
)

var confidenceNames = map[Confidence]string{
	ConfidenceLow:    "low",
	ConfidenceMedium: "medium",
	ConfidenceHigh:   "high",
}

func (c Confidence) String() string {
	if name, ok := confidenceNames[c]; ok {
		return name
	}
	return fmt.Sprintf("confidence(%d)", int(c))
}

func (c Confidence) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Confidence) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for conf, n := range confidenceNames {
		if n == name {
			*c = conf
			return nil
		}
	}
	return fmt.Errorf("unknown confidence: %q", name)
}
