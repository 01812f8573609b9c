package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"devclean/internal/scan"
	"devclean/internal/ui"
)

var (
	scanScanFlags scanFlags
	scanJSON      bool
	scanNoStream  bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [path...]",
	Short: "Find cleanable directories",
	Long: `Scan one or more directory trees for regenerable build artifacts,
dependency stores, and caches. Reports what was found with size,
category, and deletion risk. Never deletes anything.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		scanner, _, err := buildScanner(cmd, &scanScanFlags, cfg, args)
		if err != nil {
			return err
		}

		ctx := cmd.Context()

		if scanJSON || scanNoStream || !ui.IsInteractive() {
			return runScanStatic(ctx, scanner)
		}
		return runScanStreaming(ctx, scanner)
	},
}

func init() {
	addScanFlags(scanCmd, &scanScanFlags)
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Emit results as JSON")
	scanCmd.Flags().BoolVar(&scanNoStream, "no-stream", false, "Wait for all sizes before printing")
}

func runScanStatic(ctx context.Context, scanner *scan.Scanner) error {
	result, err := scanner.Scan(ctx)
	if err != nil {
		return err
	}

	if scanJSON {
		out := struct {
			Candidates []*scan.Candidate `json:"candidates"`
			TotalSize  int64             `json:"total_size"`
			Errors     []string          `json:"errors,omitempty"`
			Warnings   []string          `json:"warnings,omitempty"`
		}{
			Candidates: result.Candidates,
			TotalSize:  result.TotalSize(),
			Warnings:   result.Warnings,
		}
		for _, e := range result.Errors {
			out.Errors = append(out.Errors, e.Error())
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Print(ui.RenderTable(result.Candidates, false))
	fmt.Print(ui.RenderIssues(result.Errors, result.Warnings, false))
	return nil
}

func runScanStreaming(ctx context.Context, scanner *scan.Scanner) error {
	stream, errs, err := scanner.ScanStream(ctx)
	if err != nil {
		return err
	}

	candidates, aborted, err := ui.RunStream(stream)
	if err != nil {
		return err
	}
	if aborted {
		fmt.Println("  Scan aborted.")
		return nil
	}

	errs = append(errs, stream.Wait()...)
	candidates = scanner.ApplyPostFilters(candidates)

	fmt.Print(ui.RenderTable(candidates, true))
	fmt.Print(ui.RenderIssues(errs, scanner.Warnings(), true))
	return nil
}
