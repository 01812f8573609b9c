package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"devclean/internal/audit"
	"devclean/internal/core"
	"devclean/internal/recommend"
	"devclean/internal/sweep"
	"devclean/internal/ui"
)

var (
	recScanFlags    scanFlags
	recFree         string
	recIncludeInUse bool
	recDelete       bool
	recTrash        bool
	recForce        bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend --free <size> [path...]",
	Short: "Pick what to delete to free a target amount",
	Long: `Select the cheapest set of candidates that frees the requested
space: lowest risk first, then largest, then oldest. Prints the
selection; add --delete or --trash to act on it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := core.ParseSize(recFree)
		if err != nil {
			return fmt.Errorf("invalid --free: %w", err)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		scanner, roots, err := buildScanner(cmd, &recScanFlags, cfg, args)
		if err != nil {
			return err
		}

		result, err := scanner.Scan(cmd.Context())
		if err != nil {
			return err
		}

		rec := recommend.Build(result.Candidates, recommend.Options{
			TargetBytes:  target,
			IncludeInUse: recIncludeInUse,
		})
		if len(rec.Selected) == 0 {
			fmt.Println("  Nothing suitable to free that much.")
			return nil
		}

		fmt.Print(ui.RenderTable(rec.Selected, ui.IsInteractive()))
		if rec.Shortfall > 0 {
			fmt.Printf("  Falls short of the target by %s.\n", core.FormatSize(rec.Shortfall))
		}

		if !recDelete && !recTrash {
			fmt.Println("  Re-run with --delete or --trash to act on this selection.")
			return nil
		}
		if !recForce && !confirm(fmt.Sprintf("Remove %d directories to free %s?", len(rec.Selected), core.FormatSize(rec.Total))) {
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
		if recTrash {
			mode = sweep.ModeTrash
		}
		summary, err := exec.Run(cmd.Context(), "recommend", roots, rec.Selected, sweep.Options{Mode: mode})
		if err != nil {
			return err
		}
		printSweepSummary(summary)
		return nil
	},
}

func init() {
	addScanFlags(recommendCmd, &recScanFlags)
	recommendCmd.Flags().StringVar(&recFree, "free", "", "Space to free, e.g. 5GB")
	recommendCmd.Flags().BoolVar(&recIncludeInUse, "include-in-use", false, "Allow apparently active projects into the selection")
	recommendCmd.Flags().BoolVar(&recDelete, "delete", false, "Delete the selection")
	recommendCmd.Flags().BoolVar(&recTrash, "trash", false, "Move the selection to trash")
	recommendCmd.Flags().BoolVar(&recForce, "force", false, "Skip the confirmation prompt")
	_ = recommendCmd.MarkFlagRequired("free")
}
