package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var requirementsCmd = &cobra.Command{
	Use:   "requirements",
	Short: "Check the host against the declared installation requirements",
	Long: `Requirements evaluates the runtime version, capability, and filesystem
permission requirements declared in the configuration and prints a
check-by-check report. The same checks run inside the wizard's
requirements step; this command lets operators verify the host before
starting a run.`,
	RunE: runRequirements,
}

func runRequirements(_ *cobra.Command, _ []string) error {
	eng, err := buildEngine()
	if err != nil {
		printError(err)
		return err
	}

	report := eng.checker.Check(eng.requirements)

	fmt.Println(styleTitle.Render("Requirement Checks"))
	fmt.Println()

	for _, check := range report.Checks() {
		mark := styleSuccess.Render("✓")
		if !check.Satisfied {
			mark = styleError.Render("✗")
		}
		fmt.Printf("%s [%s] %s\n", mark, check.Kind, check.Name)
		if check.Detail != "" {
			fmt.Println(styleMuted.Render("    " + check.Detail))
		}
	}

	fmt.Println()
	if !report.Passed() {
		fmt.Fprintln(os.Stderr, styleError.Render(report.Summary()))
		return fmt.Errorf("requirements not satisfied")
	}
	fmt.Println(styleSuccess.Render(report.Summary()))
	return nil
}
