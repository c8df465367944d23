package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "List the active step sequence in execution order",
	Long: `Steps prints the active step sequence for the current staged data:
every registered step whose display predicate holds, ordered by
position with registration order breaking ties. Completed steps are
marked.`,
	RunE: runSteps,
}

func runSteps(_ *cobra.Command, _ []string) error {
	eng, err := buildEngine()
	if err != nil {
		printError(err)
		return err
	}

	fmt.Println(styleTitle.Render("Active Steps"))
	fmt.Println()

	snapshot := eng.run.Staging.Snapshot()
	for _, s := range eng.registry.ActiveSequence(snapshot) {
		line := stepLine(s)
		if eng.run.Run.IsCompleted(s.ID()) {
			fmt.Printf("%s %s\n", styleSuccess.Render("✓"), styleMuted.Render(line))
			continue
		}
		fmt.Printf("  %s\n", line)
	}

	if eng.run.Run.Finalized() {
		fmt.Println()
		fmt.Println(styleMuted.Render("Run is finalized."))
	}
	return nil
}
