package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"devclean/internal/audit"
	"devclean/internal/core"
	"devclean/internal/plan"
	"devclean/internal/sweep"
	"devclean/internal/ui"
)

var (
	planScanFlags scanFlags

	applyDryRun bool
	applyForce  bool
	applyTrash  bool
)

var planCmd = &cobra.Command{
	Use:   "plan <file> [path...]",
	Short: "Save a deletion plan for later",
	Long: `Scan and write the result to a plan file instead of acting on it.
Review or edit the file, then execute it with apply. Entries are
re-validated at apply time, so a stale plan skips what no longer
matches.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		planFile := args[0]
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		scanner, roots, err := buildScanner(cmd, &planScanFlags, cfg, args[1:])
		if err != nil {
			return err
		}

		result, err := scanner.Scan(cmd.Context())
		if err != nil {
			return err
		}
		if len(result.Candidates) == 0 {
			fmt.Println("  Nothing to clean; no plan written.")
			return nil
		}

		p := plan.New(roots, result.Candidates)
		if err := p.Save(planFile); err != nil {
			return err
		}

		fmt.Print(ui.RenderTable(result.Candidates, ui.IsInteractive()))
		fmt.Printf("  Plan %s written to %s (%d entries, %s).\n",
			p.ID, planFile, len(p.Entries), core.FormatSize(p.TotalSize()))
		fmt.Printf("  Execute with: devclean apply %s\n", planFile)
		return nil
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply <file>",
	Short: "Execute a saved deletion plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		p, err := plan.Load(args[0])
		if err != nil {
			return err
		}
		if len(p.Entries) == 0 {
			fmt.Println("  Plan is empty.")
			return nil
		}

		// Revalidation needs a scanner wired with the same config the
		// user runs with now, not the one the plan was made under.
		scanner, _, err := buildScanner(cmd, &scanFlags{unfiltered: true}, cfg, p.Roots)
		if err != nil {
			return err
		}

		fmt.Printf("  Plan %s from %s: %d entries, %s recorded.\n",
			p.ID, p.CreatedAt.Local().Format("2006-01-02 15:04"),
			len(p.Entries), core.FormatSize(p.TotalSize()))

		if !applyDryRun && !applyForce && !confirm("Apply this plan?") {
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
		if applyTrash {
			mode = sweep.ModeTrash
		}
		summary, err := exec.Run(cmd.Context(), "apply", p.Roots, p.Entries, sweep.Options{Mode: mode, DryRun: applyDryRun})
		if err != nil {
			return err
		}

		printSweepSummary(summary)
		return nil
	},
}

func init() {
	addScanFlags(planCmd, &planScanFlags)

	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "Preview without deleting")
	applyCmd.Flags().BoolVar(&applyForce, "force", false, "Skip the confirmation prompt")
	applyCmd.Flags().BoolVar(&applyTrash, "trash", false, "Move to trash instead of deleting")
}
