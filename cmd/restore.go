package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"devclean/internal/trash"
)

var restoreList bool

var restoreCmd = &cobra.Command{
	Use:   "restore [batch-id]",
	Short: "Bring back a trashed cleanup batch",
	Long: `Move the directories of a trash batch back to where they came
from. Without an argument the most recent batch is restored; --list
shows what is available.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bin, err := trash.Open("")
		if err != nil {
			return err
		}

		if restoreList {
			return listBatches(bin)
		}

		var batchID string
		if len(args) == 1 {
			batchID = args[0]
		} else {
			batches, err := bin.Batches()
			if err != nil {
				return err
			}
			if len(batches) == 0 {
				fmt.Println("  Trash is empty.")
				return nil
			}
			batchID = batches[0]
		}

		restored, errs := bin.Restore(batchID)
		for _, e := range restored {
			fmt.Printf("  restored %s\n", e.OriginalPath)
		}
		for _, err := range errs {
			fmt.Printf("  ! %v\n", err)
		}
		if len(restored) == 0 && len(errs) == 0 {
			fmt.Printf("  Nothing to restore in batch %s.\n", batchID)
			return nil
		}
		fmt.Printf("  Restored %d directories from batch %s.\n", len(restored), batchID)
		return nil
	},
}

func init() {
	restoreCmd.Flags().BoolVar(&restoreList, "list", false, "List restorable batches")
}

func listBatches(bin *trash.Bin) error {
	batches, err := bin.Batches()
	if err != nil {
		return err
	}
	if len(batches) == 0 {
		fmt.Println("  Trash is empty.")
		return nil
	}
	entries, err := bin.Entries()
	if err != nil {
		return err
	}
	for _, id := range batches {
		count := 0
		var when string
		for _, e := range entries {
			if e.BatchID == id && !e.Restored {
				count++
				when = e.TrashedAt.Local().Format("2006-01-02 15:04")
			}
		}
		fmt.Printf("  %s  %s  %d entries\n", id, when, count)
	}
	return nil
}
