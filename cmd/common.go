package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"devclean/internal/catalog"
	"devclean/internal/config"
	"devclean/internal/core"
	"devclean/internal/scan"
)

// defaultMaxRisk caps what scans surface unless the user widens it.
// High-risk candidates exist but stay hidden until asked for.
const defaultMaxRisk = catalog.RiskMedium

// scanFlags is the flag set shared by every command that runs a scan.
type scanFlags struct {
	depth         int
	respectIgnore bool
	category      string
	maxRisk       string
	minSize       string
	olderThan     int
	include       []string
	exclude       []string
	profile       string
	unfiltered    bool
}

func addScanFlags(cmd *cobra.Command, f *scanFlags) {
	cmd.Flags().IntVar(&f.depth, "depth", 0, "Maximum traversal depth (0 = unlimited)")
	cmd.Flags().BoolVar(&f.respectIgnore, "respect-gitignore", false, "Skip gitignored directories during traversal")
	cmd.Flags().StringVar(&f.category, "category", "", "Only this category: cache, build, or deps")
	cmd.Flags().StringVar(&f.maxRisk, "max-risk", "", "Highest risk to surface: low, medium, or high (default medium)")
	cmd.Flags().StringVar(&f.minSize, "min-size", "", "Minimum size to report (e.g. 100MB)")
	cmd.Flags().IntVar(&f.olderThan, "older-than", 0, "Only directories unmodified for at least this many days")
	cmd.Flags().StringSliceVar(&f.include, "include", nil, "Extra directory globs to treat as cleanable")
	cmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "Directory globs to skip during traversal")
	cmd.Flags().StringVar(&f.profile, "profile", "", "Named scan profile from the config file")
	cmd.Flags().BoolVar(&f.unfiltered, "unfiltered", false, "Disable the default risk cap and config defaults")
}

// buildScanner resolves flags, profile, and config into a ready
// scanner. Precedence per setting: explicit flag, then profile, then
// config default.
func buildScanner(cmd *cobra.Command, f *scanFlags, cfg config.Config, args []string) (*scan.Scanner, []string, error) {
	var prof config.ScanProfile
	if f.profile != "" {
		p, ok := cfg.ScanProfiles[f.profile]
		if !ok {
			return nil, nil, fmt.Errorf("unknown scan profile %q", f.profile)
		}
		prof = p
	}

	rawRoots := args
	if len(rawRoots) == 0 && len(prof.Paths) > 0 {
		rawRoots = prof.Paths
	}
	if len(rawRoots) == 0 {
		rawRoots = []string{"."}
	}
	roots := make([]string, 0, len(rawRoots))
	for _, r := range rawRoots {
		expanded, err := config.ExpandPath(r)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid path %q: %w", r, err)
		}
		roots = append(roots, expanded)
	}

	opts := scan.Options{
		Roots:         roots,
		RespectIgnore: f.respectIgnore,
		ExcludeDirs:   cfg.ExcludeDirs,
		IncludeGlobs:  f.include,
		ExcludeGlobs:  f.exclude,
	}

	opts.MaxDepth = f.depth
	if !cmd.Flags().Changed("depth") {
		switch {
		case prof.Depth != nil:
			opts.MaxDepth = *prof.Depth
		case cfg.DefaultDepth != nil:
			opts.MaxDepth = *cfg.DefaultDepth
		}
	}
	if !cmd.Flags().Changed("respect-gitignore") && prof.Gitignore != nil {
		opts.RespectIgnore = *prof.Gitignore
	}

	filters, err := buildFilters(cmd, f, cfg, prof)
	if err != nil {
		return nil, nil, err
	}

	s, err := scan.New(cfg, opts, filters)
	if err != nil {
		return nil, nil, err
	}
	return s, roots, nil
}

func buildFilters(cmd *cobra.Command, f *scanFlags, cfg config.Config, prof config.ScanProfile) (scan.Filters, error) {
	var filters scan.Filters

	category := f.category
	if category == "" {
		category = prof.Category
	}
	if category != "" {
		c, err := catalog.ParseCategory(category)
		if err != nil {
			return filters, err
		}
		filters.Category = &c
	}

	maxRisk := f.maxRisk
	if maxRisk == "" {
		maxRisk = prof.MaxRisk
	}
	switch {
	case maxRisk != "":
		r, err := catalog.ParseRisk(maxRisk)
		if err != nil {
			return filters, err
		}
		filters.MaxRisk = &r
	case !f.unfiltered:
		r := defaultMaxRisk
		filters.MaxRisk = &r
	}

	switch {
	case f.minSize != "":
		bytes, err := core.ParseSize(f.minSize)
		if err != nil {
			return filters, fmt.Errorf("invalid --min-size: %w", err)
		}
		filters.MinSize = bytes
	case f.unfiltered:
	case prof.MinSizeMB != nil:
		filters.MinSize = *prof.MinSizeMB * 1024 * 1024
	case cfg.MinSizeMB != nil:
		filters.MinSize = *cfg.MinSizeMB * 1024 * 1024
	}

	filters.OlderThanDays = f.olderThan
	if !cmd.Flags().Changed("older-than") && !f.unfiltered {
		switch {
		case prof.MaxAgeDays != nil:
			filters.OlderThanDays = *prof.MaxAgeDays
		case cfg.MaxAgeDays != nil:
			filters.OlderThanDays = *cfg.MaxAgeDays
		}
	}

	return filters, nil
}
