package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/groundwork/internal/domain/install"
	"github.com/felixgeelhaar/groundwork/internal/domain/step"
	"github.com/felixgeelhaar/groundwork/internal/domain/wizard"
)

var (
	answersFile string
	runSeed     bool
	createLink  bool
	freshSchema bool
	skipSecret  bool
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Run the setup wizard and commit staged data to permanent storage",
	Long: `Install walks every active step in order, validating and staging the
answers provided in the answers file, then runs the commit phase:
schema migration, staged writes, optional seeding, and finalization.

A failed commit preserves all staged data; fix the cause and run
install again. Validation failures report every failing field at once.`,
	Example: `  groundwork install --answers answers.toml
  groundwork install --answers answers.toml --seed --link
  groundwork install --answers answers.toml --fresh --dev`,
	RunE: runInstall,
}

func init() {
	installCmd.Flags().StringVar(&answersFile, "answers", "", "TOML file with one section of form data per step id")
	installCmd.Flags().BoolVar(&runSeed, "seed", false, "run the seeder after staged writes")
	installCmd.Flags().BoolVar(&createLink, "link", false, "create the public storage link")
	installCmd.Flags().BoolVar(&freshSchema, "fresh", false, "drop and recreate the schema before migrating")
	installCmd.Flags().BoolVar(&skipSecret, "skip-secret", false, "do not rotate the application secret")
}

func runInstall(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	eng, err := buildEngine()
	if err != nil {
		printError(err)
		return err
	}

	if install.MarkerExists(eng.cfg.Paths.CompletionMarker) && !eng.run.DevOverride {
		err := fmt.Errorf("%w: completion marker exists at %s (use --dev to override)",
			wizard.ErrAlreadyFinalized, eng.cfg.Paths.CompletionMarker)
		printError(err)
		return err
	}

	answers, err := loadAnswers(answersFile)
	if err != nil {
		printError(err)
		return err
	}

	wiz, err := wizard.NewWizard(eng.registry, eng.run)
	if err != nil {
		printError(err)
		return err
	}

	fmt.Println(styleTitle.Render("Groundwork Setup"))
	fmt.Println()

	for {
		current, ok := wiz.Current()
		if !ok {
			break
		}

		lifecycle, err := wiz.Mount(ctx)
		if err != nil {
			printError(err)
			return err
		}

		// Previously staged data pre-fills the form; answers override it.
		form := lifecycle.Form()
		for field, value := range answers[current.ID().String()] {
			form[field] = value
		}

		result, err := lifecycle.Submit(ctx, form)
		if err != nil {
			printError(err)
			return err
		}
		if !result.Valid() {
			printValidationResult(current.ID(), result)
			return fmt.Errorf("step %q rejected the submitted data", current.ID())
		}

		fmt.Printf("%s %s\n", styleSuccess.Render("✓"), stepTitle(current.ID()))
		for _, skipped := range result.SkippedRules() {
			fmt.Println(styleMuted.Render(fmt.Sprintf(
				"  deferred until storage exists: %s on %s", skipped.Rule, skipped.Field)))
		}
	}

	if !skipSecret {
		if _, err := eng.manager.GenerateSecret(); err != nil {
			printError(err)
			return err
		}
		fmt.Printf("%s Application secret written to %s\n",
			styleSuccess.Render("✓"), eng.cfg.Paths.EnvFile)
	}

	fmt.Println()
	fmt.Println(styleTitle.Render("Committing"))

	result, err := eng.manager.Execute(ctx, install.Options{
		RunSchemaMigration: true,
		RunSeed:            runSeed,
		CreateStorageLink:  createLink,
		ResetSchema:        freshSchema,
	})
	if err != nil {
		printError(err)
		return err
	}

	if !result.Success() {
		fmt.Fprintf(os.Stderr, "%s %s\n", styleError.Render("✗"), result.Message())
		if result.Output() != "" {
			fmt.Fprintln(os.Stderr, styleMuted.Render("  "+result.Output()))
		}
		fmt.Fprintln(os.Stderr, styleWarning.Render(
			"Staged data was preserved; fix the cause and run install again."))
		return fmt.Errorf("installation failed: %s", result.Message())
	}

	fmt.Printf("%s %s\n", styleSuccess.Render("✓"), result.Message())
	fmt.Println(styleMuted.Render("  committed: " + strings.Join(result.CommittedStepStrings(), ", ")))
	return nil
}

// loadAnswers reads the answers file: one TOML table per step id, each
// holding that step's form fields.
func loadAnswers(path string) (map[string]step.FormData, error) {
	if path == "" {
		return map[string]step.FormData{}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read answers file: %w", err)
	}

	var decoded map[string]map[string]interface{}
	if err := toml.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("parse answers file: %w", err)
	}

	answers := make(map[string]step.FormData, len(decoded))
	for id, fields := range decoded {
		answers[id] = step.FormData(fields)
	}
	return answers, nil
}

// printValidationResult prints every field error of a rejected submission.
func printValidationResult(id step.ID, result *step.ValidationResult) {
	fmt.Fprintf(os.Stderr, "%s %s\n", styleError.Render("✗"), stepTitle(id))

	for _, field := range result.Fields() {
		for _, message := range result.FieldErrors(field) {
			fmt.Fprintln(os.Stderr, styleError.Render(fmt.Sprintf("  %s: %s", field, message)))
		}
	}
}
