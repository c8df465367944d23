package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/groundwork/internal/domain/step"
)

var (
	// Global flags
	cfgFile  string
	verbose  bool
	jsonLogs bool
	devMode  bool
)

var rootCmd = &cobra.Command{
	Use:   "groundwork",
	Short: "A staged first-run setup wizard",
	Long: `Groundwork walks a freshly deployed application through its first-run
setup before permanent storage exists.

Steps collect and validate configuration into a durable staging area;
the commit phase migrates the schema and reconciles all staged data
into permanent storage exactly once.`,
	SilenceErrors: true, // We handle error formatting ourselves
	SilenceUsage:  true, // Don't show usage on error
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: groundwork.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "emit logs as JSON")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "development override: permit re-entering a finalized run")

	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(requirementsCmd)
	rootCmd.AddCommand(stepsCmd)
	rootCmd.AddCommand(rollbackCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// formatError returns a user-friendly error message.
// With verbose=false: shows only the message and suggestion.
// With verbose=true: also shows the underlying technical error.
func formatError(err error) string {
	var stepErr *step.StepError
	if errors.As(err, &stepErr) {
		msg := stepErr.Error()
		if stepErr.Suggestion != "" {
			msg += fmt.Sprintf("\n\nSuggestion: %s", stepErr.Suggestion)
		}
		if verbose && stepErr.Underlying != nil {
			msg += fmt.Sprintf("\n\nTechnical details: %v", stepErr.Underlying)
		}
		return msg
	}
	return err.Error()
}

// printError prints an error message to stderr with proper formatting.
func printError(err error) {
	printErrorTo(os.Stderr, err)
}

// printErrorTo prints an error message to the given writer.
func printErrorTo(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %s\n", formatError(err))
}
