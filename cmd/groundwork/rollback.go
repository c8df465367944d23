package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Revert the most recently applied schema migration",
	Long: `Rollback reverts the most recently applied schema migration in
permanent storage. Staged data is never touched: rollback is
operator-triggered recovery after a failed commit, not part of the
automatic retry path.`,
	RunE: runRollback,
}

func runRollback(cmd *cobra.Command, _ []string) error {
	eng, err := buildEngine()
	if err != nil {
		printError(err)
		return err
	}

	reverted, err := eng.manager.Rollback(cmd.Context())
	if err != nil {
		printError(err)
		return err
	}

	if !reverted {
		fmt.Println(styleMuted.Render("No applied migration to roll back."))
		return nil
	}
	fmt.Printf("%s Rolled back the most recent migration.\n", styleSuccess.Render("✓"))
	return nil
}
