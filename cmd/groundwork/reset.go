package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard staged data and run state (development only)",
	Long: `Reset clears all staged data and run-state bookkeeping and removes the
completion marker, so the wizard can be walked again from the start.

The development override is required: pass --dev or set dev_override in
the configuration. Permanent storage is not touched.`,
	RunE: runReset,
}

func runReset(_ *cobra.Command, _ []string) error {
	eng, err := buildEngine()
	if err != nil {
		printError(err)
		return err
	}

	if !eng.run.DevOverride {
		err := fmt.Errorf("reset requires the development override (--dev)")
		printError(err)
		return err
	}

	if err := eng.run.Staging.ClearAll(); err != nil {
		printError(fmt.Errorf("clear staged data: %w", err))
		return err
	}
	if err := eng.run.Run.Reset(); err != nil {
		printError(fmt.Errorf("clear run state: %w", err))
		return err
	}
	if marker := eng.cfg.Paths.CompletionMarker; marker != "" {
		if err := os.Remove(marker); err != nil && !os.IsNotExist(err) {
			printError(fmt.Errorf("remove completion marker: %w", err))
			return err
		}
	}

	fmt.Printf("%s Staged data, run state, and completion marker cleared.\n",
		styleSuccess.Render("✓"))
	return nil
}
