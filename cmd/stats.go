package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"devclean/internal/core"
	"devclean/internal/stats"
	"devclean/internal/ui"
)

var (
	statsScanFlags scanFlags
	statsJSON      bool
	statsTop       int
)

var statsCmd = &cobra.Command{
	Use:   "stats [path...]",
	Short: "Summarize reclaimable space",
	Long: `Scan and report aggregate figures: totals per project type and
category, an age distribution, the largest targets, and how much
headroom the volume has left.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		scanner, roots, err := buildScanner(cmd, &statsScanFlags, cfg, args)
		if err != nil {
			return err
		}

		result, err := scanner.Scan(cmd.Context())
		if err != nil {
			return err
		}

		summary := stats.Build(result.Candidates, roots[0])

		if statsJSON {
			data, err := summary.JSON()
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		printStats(summary)
		fmt.Print(ui.RenderIssues(result.Errors, result.Warnings, false))
		return nil
	},
}

func init() {
	addScanFlags(statsCmd, &statsScanFlags)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Emit the summary as JSON")
	statsCmd.Flags().IntVar(&statsTop, "top", stats.TopN, "How many largest targets to list")
}

func printStats(s *stats.Summary) {
	fmt.Printf("  Reclaimable: %s across %d directories", s.TotalHuman(), s.TotalCount)
	if s.UnsizedCount > 0 {
		fmt.Printf(" (%d unsized)", s.UnsizedCount)
	}
	fmt.Println()
	if s.InUseCount > 0 {
		fmt.Printf("  In use: %d project(s)\n", s.InUseCount)
	}
	if s.Disk != nil {
		fmt.Printf("  Volume: %s free of %s\n",
			core.FormatSize(int64(s.Disk.Free)), core.FormatSize(int64(s.Disk.Total)))
	}

	if len(s.ByType) > 0 {
		fmt.Println("\n  By project type:")
		for _, t := range s.ByType {
			fmt.Printf("    %-10s %4d  %s\n", t.Type.DisplayName(), t.Count, core.FormatSize(t.Size))
		}
	}
	if len(s.ByCategory) > 0 {
		fmt.Println("\n  By category:")
		for _, c := range s.ByCategory {
			fmt.Printf("    %-10s %4d  %s\n", c.Category.String(), c.Count, core.FormatSize(c.Size))
		}
	}

	fmt.Println("\n  By age:")
	fmt.Printf("    %-14s %4d\n", "under 30 days", s.Ages.Fresh)
	fmt.Printf("    %-14s %4d\n", "30 to 90 days", s.Ages.Stale)
	fmt.Printf("    %-14s %4d\n", "over 90 days", s.Ages.Old)

	largest := s.Largest
	if statsTop > 0 && len(largest) > statsTop {
		largest = largest[:statsTop]
	}
	if len(largest) > 0 {
		fmt.Println("\n  Largest:")
		for _, c := range largest {
			fmt.Printf("    %-10s %s\n", c.SizeHuman(), c.CleanablePath)
		}
	}
}
