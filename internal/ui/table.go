package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"devclean/internal/core"
	"devclean/internal/scan"
)

// RenderTable renders a size-sorted candidate table. Shared by the live
// view's final frame and the static fallback.
func RenderTable(candidates []*scan.Candidate, colored bool) string {
	if len(candidates) == 0 {
		return "  Nothing to clean.\n"
	}

	var b strings.Builder
	var total int64

	fmt.Fprintf(&b, "  %-10s %-9s %-6s %5s  %-10s %s\n",
		"SIZE", "TYPE", "RISK", "AGE", "CATEGORY", "PATH")
	b.WriteString("  " + strings.Repeat("-", 72) + "\n")

	for _, c := range candidates {
		if size, ok := c.SizeBytes(); ok {
			total += size
		}
		risk := c.RiskLevel.String()
		if colored {
			risk = RiskStyle(risk).Render(risk)
		}
		path := c.CleanablePath
		if c.InUse {
			marker := " " + IconWarning + " in use"
			if colored {
				marker = lipgloss.NewStyle().Foreground(ColorWarning).Render(marker)
			}
			path += marker
		}
		fmt.Fprintf(&b, "  %-10s %-9s %-6s %4dd  %-10s %s\n",
			c.SizeHuman(), c.TypeDisplayName(), risk, c.AgeDays(), c.Category.String(), path)
	}

	b.WriteString("  " + strings.Repeat("-", 72) + "\n")
	line := fmt.Sprintf("  Total: %s across %d directories\n", core.FormatSize(total), len(candidates))
	if colored {
		line = TitleStyle().Render(strings.TrimRight(line, "\n")) + "\n"
	}
	b.WriteString(line)
	return b.String()
}

// RenderIssues renders non-fatal errors and warnings after the table.
func RenderIssues(errs []error, warnings []string, colored bool) string {
	if len(errs) == 0 && len(warnings) == 0 {
		return ""
	}
	style := lipgloss.NewStyle().Foreground(ColorMuted)
	var b strings.Builder
	for _, w := range warnings {
		line := "  " + IconWarning + " " + w
		if colored {
			line = style.Render(line)
		}
		b.WriteString(line + "\n")
	}
	for _, err := range errs {
		line := "  " + IconError + " " + err.Error()
		if colored {
			line = lipgloss.NewStyle().Foreground(ColorError).Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
