// Package config assembles the typed configuration for an install run from
// layered sources: built-in defaults, then an optional config file, then
// environment variables. It is loaded once at startup and passed down
// explicitly.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// envPrefix namespaces the environment-variable layer,
// e.g. GROUNDWORK_DEV_OVERRIDE=1.
const envPrefix = "GROUNDWORK"

// Config is the full configuration surface for one install run.
// Read once at startup; read-only for the run's lifetime.
type Config struct {
	// DevOverride permits re-entering an already-finalized run.
	// Non-production use only.
	DevOverride bool `mapstructure:"dev_override"`

	// ExecuteTimeoutSeconds bounds each step's execute hook.
	ExecuteTimeoutSeconds int `mapstructure:"execute_timeout_seconds"`

	// Steps optionally restricts which registered steps run, by id.
	// Empty means all registered steps.
	Steps []string `mapstructure:"steps"`

	Runtime      RuntimeConfig      `mapstructure:"runtime"`
	Requirements RequirementsConfig `mapstructure:"requirements"`
	Paths        PathsConfig        `mapstructure:"paths"`
	Storage      StorageConfig      `mapstructure:"storage"`
}

// RuntimeConfig declares what the host deployment provides.
type RuntimeConfig struct {
	// Version is the semantic version of the host runtime.
	Version string `mapstructure:"version"`

	// Capabilities are the capability names present on this host.
	Capabilities []string `mapstructure:"capabilities"`
}

// RequirementsConfig declares what the installation requires.
type RequirementsConfig struct {
	MinRuntimeVersion string            `mapstructure:"min_runtime_version"`
	Capabilities      []string          `mapstructure:"capabilities"`
	Paths             map[string]string `mapstructure:"paths"`
}

// PathsConfig locates the files an install run reads and writes.
type PathsConfig struct {
	SchemaDir        string `mapstructure:"schema_dir"`
	SessionFile      string `mapstructure:"session_file"`
	EnvFile          string `mapstructure:"env_file"`
	CompletionMarker string `mapstructure:"completion_marker"`
}

// StorageConfig tunes the permanent-storage side of the commit phase.
type StorageConfig struct {
	// SettingsTable receives staged documents of steps without a custom
	// commit.
	SettingsTable string `mapstructure:"settings_table"`
}

// ExecuteTimeout returns the execute-hook timeout as a duration.
func (c *Config) ExecuteTimeout() time.Duration {
	return time.Duration(c.ExecuteTimeoutSeconds) * time.Second
}

// Load assembles the configuration. With path == "" a groundwork.toml in
// the working directory is used when present; an explicitly named file
// must exist.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("dev_override", false)
	v.SetDefault("execute_timeout_seconds", 30)
	v.SetDefault("paths.schema_dir", "schema")
	v.SetDefault("paths.session_file", ".groundwork/session.toml")
	v.SetDefault("paths.env_file", ".env")
	v.SetDefault("paths.completion_marker", ".groundwork/installed")
	v.SetDefault("storage.settings_table", "settings")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("groundwork")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}
