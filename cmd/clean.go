package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"devclean/internal/audit"
	"devclean/internal/core"
	"devclean/internal/sweep"
	"devclean/internal/ui"
)

var (
	cleanScanFlags    scanFlags
	cleanDryRun       bool
	cleanForce        bool
	cleanTrash        bool
	cleanIncludeInUse bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean [path...]",
	Short: "Delete cleanable directories",
	Long: `Scan, show what would be removed, and delete after confirmation.
With --trash, targets are moved into the trash area instead of being
removed, and can be brought back with restore.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		scanner, roots, err := buildScanner(cmd, &cleanScanFlags, cfg, args)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		result, err := scanner.Scan(ctx)
		if err != nil {
			return err
		}

		targets := result.Candidates
		if !cleanIncludeInUse {
			kept := targets[:0]
			skipped := 0
			for _, c := range targets {
				if c.InUse {
					skipped++
					continue
				}
				kept = append(kept, c)
			}
			targets = kept
			if skipped > 0 {
				fmt.Printf("  Skipping %d in-use project(s); pass --include-in-use to override.\n", skipped)
			}
		}

		if len(targets) == 0 {
			fmt.Println("  Nothing to clean.")
			return nil
		}

		fmt.Print(ui.RenderTable(targets, ui.IsInteractive()))
		fmt.Print(ui.RenderIssues(result.Errors, result.Warnings, ui.IsInteractive()))

		if cleanDryRun {
			fmt.Println("  Dry run: nothing was deleted.")
			return nil
		}
		if !cleanForce && !confirm(fmt.Sprintf("Delete %d directories?", len(targets))) {
			fmt.Println("  Aborted.")
			return nil
		}

		auditLog, err := audit.Open(cfg.Audit)
		if err != nil {
			return err
		}

		exec := &sweep.Executor{
			Scanner: scanner,
			Audit:   auditLog,
			OnItem:  printSweepItem,
		}
		mode := sweep.ModeDelete
		if cleanTrash {
			mode = sweep.ModeTrash
		}
		summary, err := exec.Run(ctx, "clean", roots, targets, sweep.Options{Mode: mode, DryRun: cleanDryRun})
		if err != nil {
			return err
		}

		printSweepSummary(summary)
		return nil
	},
}

func init() {
	addScanFlags(cleanCmd, &cleanScanFlags)
	cleanCmd.Flags().BoolVar(&cleanDryRun, "dry-run", false, "Preview without deleting")
	cleanCmd.Flags().BoolVar(&cleanForce, "force", false, "Skip the confirmation prompt")
	cleanCmd.Flags().BoolVar(&cleanTrash, "trash", false, "Move to trash instead of deleting")
	cleanCmd.Flags().BoolVar(&cleanIncludeInUse, "include-in-use", false, "Also clean apparently active projects")
}

func confirm(prompt string) bool {
	fmt.Printf("  %s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func printSweepItem(res sweep.ItemResult) {
	switch {
	case res.Err != nil:
		fmt.Printf("  %s %s: %v\n", ui.IconError, res.Candidate.CleanablePath, res.Err)
	case res.Action == audit.ActionSkipped:
		fmt.Printf("  - %s (%s)\n", res.Candidate.CleanablePath, res.Detail)
	default:
		fmt.Printf("  %s %s %s\n", ui.IconCheck, res.Candidate.CleanablePath, res.Candidate.SizeHuman())
	}
}

func printSweepSummary(s *sweep.Summary) {
	fmt.Printf("\n  Freed %s", core.FormatSize(s.FreedBytes))
	if s.Deleted > 0 {
		fmt.Printf("  deleted %d", s.Deleted)
	}
	if s.Trashed > 0 {
		fmt.Printf("  trashed %d", s.Trashed)
	}
	if s.Skipped > 0 {
		fmt.Printf("  skipped %d", s.Skipped)
	}
	if s.Failed > 0 {
		fmt.Printf("  failed %d", s.Failed)
	}
	fmt.Println()
	if s.BatchID != "" {
		fmt.Printf("  Restore with: devclean restore %s\n", s.BatchID)
	}
}
