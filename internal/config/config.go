package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
	homedir "github.com/mitchellh/go-homedir"
)

// MarkerMode controls how a custom pattern's marker files are evaluated.
type MarkerMode string

const (
	AnyOf MarkerMode = "any_of"
	AllOf MarkerMode = "all_of"
)

// CustomPattern is a user-defined cleanable directory rule. The rule
// matches when the marker files identify a project root and Directory
// matches a directory beneath it.
type CustomPattern struct {
	Name        string     `json:"name"`
	Directory   string     `json:"directory"`
	MarkerFiles []string   `json:"marker_files"`
	MarkerMode  MarkerMode `json:"marker_mode,omitempty"`
}

// Mode returns the effective marker mode, defaulting to any_of.
func (p CustomPattern) Mode() MarkerMode {
	if p.MarkerMode == AllOf {
		return AllOf
	}
	return AnyOf
}

// ScanProfile is a named bundle of scan parameters.
type ScanProfile struct {
	Paths      []string `json:"paths,omitempty"`
	Depth      *int     `json:"depth,omitempty"`
	MinSizeMB  *int64   `json:"min_size_mb,omitempty"`
	MaxAgeDays *int     `json:"max_age_days,omitempty"`
	Gitignore  *bool    `json:"gitignore,omitempty"`
	Category   string   `json:"category,omitempty"`
	MaxRisk    string   `json:"max_risk,omitempty"`
}

// AuditConfig controls the append-only operation log.
type AuditConfig struct {
	Enabled   *bool  `json:"enabled,omitempty"`
	Path      string `json:"path,omitempty"`
	MaxSizeMB int64  `json:"max_size_mb,omitempty"`
}

// IsEnabled reports whether audit logging is on (default true).
func (a AuditConfig) IsEnabled() bool {
	return a.Enabled == nil || *a.Enabled
}

// MaxSizeBytes returns the audit log size cap (default 5 MB).
func (a AuditConfig) MaxSizeBytes() int64 {
	if a.MaxSizeMB <= 0 {
		return 5 * 1024 * 1024
	}
	return a.MaxSizeMB * 1024 * 1024
}

// Config is the persisted tool configuration, read once per scan
// invocation and treated as immutable input.
type Config struct {
	ExcludeDirs      []string               `json:"exclude_dirs,omitempty"`
	CustomPatterns   []CustomPattern        `json:"custom_patterns,omitempty"`
	DefaultDepth     *int                   `json:"default_depth,omitempty"`
	MinSizeMB        *int64                 `json:"min_size_mb,omitempty"`
	MaxAgeDays       *int                   `json:"max_age_days,omitempty"`
	ScanProfiles     map[string]ScanProfile `json:"scan_profiles,omitempty"`
	KeepPaths        []string               `json:"keep_paths,omitempty"`
	KeepGlobs        []string               `json:"keep_globs,omitempty"`
	KeepProjectRoots []string               `json:"keep_project_roots,omitempty"`
	Audit            AuditConfig            `json:"audit,omitempty"`
}

// Default returns the configuration used when no config file exists.
func Default() Config {
	return Config{
		ExcludeDirs: []string{".git", ".svn", ".hg"},
	}
}

// DefaultPath returns the config file location under the user's home.
func DefaultPath() string {
	home, err := homedir.Dir()
	if err != nil {
		return ".devclean.json"
	}
	return filepath.Join(home, ".devclean", "config.json")
}

// LoadOrDefault loads the config from path, or returns the default
// config when the file does not exist.
func LoadOrDefault(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Load reads and parses a config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config as indented JSON, creating the parent
// directory if needed.
func (c Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory %s: %w", dir, err)
		}
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Validate checks custom patterns and keep globs before any traversal
// starts. A malformed rule fails the whole scan invocation: silently
// ignoring it would be unsafe.
func (c Config) Validate() error {
	for _, p := range c.CustomPatterns {
		if p.Name == "" {
			return fmt.Errorf("invalid config: custom pattern with empty name")
		}
		if p.Directory == "" {
			return fmt.Errorf("invalid config: custom pattern %q has no directory", p.Name)
		}
		if len(p.MarkerFiles) == 0 {
			return fmt.Errorf("invalid config: custom pattern %q has no marker files", p.Name)
		}
		if p.MarkerMode != "" && p.MarkerMode != AnyOf && p.MarkerMode != AllOf {
			return fmt.Errorf("invalid config: custom pattern %q has unknown marker mode %q", p.Name, p.MarkerMode)
		}
		if _, err := glob.Compile(p.Directory, '/'); err != nil {
			return fmt.Errorf("invalid config: custom pattern %q directory glob: %w", p.Name, err)
		}
	}
	for _, g := range append(append([]string{}, c.KeepGlobs...), c.KeepProjectRoots...) {
		if _, err := glob.Compile(g, '/'); err != nil {
			return fmt.Errorf("invalid config: keep glob %q: %w", g, err)
		}
	}
	return nil
}

// ExpandPath resolves ~ and environment-free relative paths to an
// absolute path.
func ExpandPath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", err
	}
	return filepath.Abs(expanded)
}
