package main

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/felixgeelhaar/groundwork/internal/adapters/envfile"
	"github.com/felixgeelhaar/groundwork/internal/adapters/logging"
	"github.com/felixgeelhaar/groundwork/internal/adapters/session"
	"github.com/felixgeelhaar/groundwork/internal/adapters/storage"
	"github.com/felixgeelhaar/groundwork/internal/domain/config"
	"github.com/felixgeelhaar/groundwork/internal/domain/install"
	"github.com/felixgeelhaar/groundwork/internal/domain/requirement"
	"github.com/felixgeelhaar/groundwork/internal/domain/schema"
	"github.com/felixgeelhaar/groundwork/internal/domain/step"
	"github.com/felixgeelhaar/groundwork/internal/domain/wizard"
	"github.com/felixgeelhaar/groundwork/internal/ports"
	"github.com/felixgeelhaar/groundwork/internal/steps"
)

// engine wires the full install stack for one CLI invocation.
type engine struct {
	cfg          *config.Config
	logger       ports.Logger
	registry     *step.Registry
	run          *wizard.RunContext
	manager      *install.Manager
	checker      *requirement.Checker
	requirements requirement.Requirements
	introspector *schema.Introspector
	env          *envfile.File
}

// buildEngine loads configuration and assembles every collaborator.
func buildEngine() (*engine, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	level := ports.LevelInfo
	if verbose {
		level = ports.LevelDebug
	}
	logger := logging.NewConsoleLogger(
		logging.WithLevel(level),
		logging.WithJSONFormat(jsonLogs),
	)

	store, err := session.OpenFileStore(cfg.Paths.SessionFile)
	if err != nil {
		return nil, err
	}

	run := wizard.NewRunContext(store, logger)
	run.ExecuteTimeout = cfg.ExecuteTimeout()
	run.DevOverride = cfg.DevOverride || devMode

	introspector := schema.NewIntrospector()
	if _, statErr := os.Stat(cfg.Paths.SchemaDir); statErr == nil {
		if err := introspector.LoadDir(cfg.Paths.SchemaDir); err != nil {
			return nil, err
		}
	}

	env, err := envfile.Open(cfg.Paths.EnvFile)
	if err != nil {
		return nil, err
	}

	facts := requirement.NewSystemFacts(cfg.Runtime.Version, cfg.Runtime.Capabilities)
	checker := requirement.NewChecker(facts)
	requirements := requirement.Requirements{
		MinRuntimeVersion: cfg.Requirements.MinRuntimeVersion,
		Capabilities:      cfg.Requirements.Capabilities,
		Paths:             cfg.Requirements.Paths,
	}

	// A non-empty steps list in the configuration restricts which
	// built-ins are registered; plugins always register themselves.
	allowed := make(map[string]struct{}, len(cfg.Steps))
	for _, id := range cfg.Steps {
		allowed[id] = struct{}{}
	}

	registry := step.NewRegistry()
	for _, s := range steps.Builtins(checker, requirements) {
		if len(allowed) > 0 {
			if _, ok := allowed[s.ID().String()]; !ok {
				continue
			}
		}
		if err := registry.Register(s); err != nil {
			return nil, err
		}
	}
	if err := registry.Validate(); err != nil {
		return nil, err
	}

	permanent := storage.NewMemoryStore(introspector.Tables()...)
	manager := install.NewManager(registry, run, permanent,
		install.WithSecretWriter(env),
		install.WithCompletionMarker(cfg.Paths.CompletionMarker),
		install.WithSettingsTable(cfg.Storage.SettingsTable),
	)

	return &engine{
		cfg:          cfg,
		logger:       logger,
		registry:     registry,
		run:          run,
		manager:      manager,
		checker:      checker,
		requirements: requirements,
		introspector: introspector,
		env:          env,
	}, nil
}

var titleCaser = cases.Title(language.English)

// stepTitle renders a step id as a human-readable title,
// e.g. "acme:billing-plan" becomes "Acme Billing Plan".
func stepTitle(id step.ID) string {
	name := id.String()
	name = strings.NewReplacer(":", " ", "-", " ", "_", " ").Replace(name)
	return titleCaser.String(name)
}

// stepLine renders one step for listings.
func stepLine(s step.Step) string {
	return fmt.Sprintf("%3d  %s (%s)", s.Position(), stepTitle(s.ID()), s.ID())
}
