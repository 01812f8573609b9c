package catalog

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// gitignoreDeny lists names that are never taken from a .gitignore even
// when they look directory-shaped: VCS-protected names and well-known
// non-directory or source-holding conventions.
var gitignoreDeny = map[string]bool{
	".git":      true,
	".svn":      true,
	".hg":       true,
	".env":      true,
	".envrc":    true,
	".DS_Store": true,
	"Thumbs.db": true,
	"src":       true,
	"lib":       true,
	"include":   true,
	"docs":      true,
	"assets":    true,
}

// GitignorePatterns extracts directory-shaped patterns from the project
// root's .gitignore. The extraction is deliberately conservative: it
// keeps only patterns that plausibly name regenerable directories and
// discards everything it cannot be sure about. A missing or unreadable
// .gitignore degrades to no patterns; the error is returned so callers
// can surface it as a warning.
func GitignorePatterns(projectRoot string) ([]string, error) {
	f, err := os.Open(filepath.Join(projectRoot, ".gitignore"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var patterns []string
	seen := make(map[string]bool)

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}

		pattern := strings.Trim(line, "/\\")
		if pattern == "" || gitignoreDeny[pattern] {
			continue
		}

		// A dot past position zero marks a file extension; hidden
		// directory names like .cache keep their leading dot.
		if strings.Contains(pattern[1:], ".") {
			continue
		}

		// Internal wildcards (logs/*.tmp, foo*bar) are file globs, not
		// directory names.
		if idx := strings.IndexAny(pattern, "*?["); idx > 0 && idx < len(pattern)-1 {
			continue
		}
		// All-wildcard patterns (*, **) match anything and name no
		// directory.
		if strings.Trim(pattern, "*?[]") == "" {
			continue
		}

		if !seen[pattern] {
			seen[pattern] = true
			patterns = append(patterns, pattern)
		}
	}
	if err := sc.Err(); err != nil {
		return patterns, err
	}
	return patterns, nil
}
