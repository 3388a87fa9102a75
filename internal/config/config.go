// Package config loads OpenFounder settings from the home config file and
// OPENFOUNDER_* environment variables.
package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"

	"openfounder/internal/models"
)

// EnvPrefix is prepended to every environment override, e.g.
// OPENFOUNDER_PROVIDER_MODEL for provider.model.
const EnvPrefix = "OPENFOUNDER"

// Config is the full settings tree.
type Config struct {
	LogLevel string         `mapstructure:"log_level"`
	Provider ProviderConfig `mapstructure:"provider"`
	Runner   RunnerConfig   `mapstructure:"runner"`
	Notify   NotifyConfig   `mapstructure:"notify"`
}

// ProviderConfig selects the planner model.
type ProviderConfig struct {
	Name string `mapstructure:"name"`
	// Model is the planner model id.
	Model string `mapstructure:"model"`
	// APIKey may be left empty to use the provider's own environment variable.
	APIKey    string `mapstructure:"api_key"`
	BaseURL   string `mapstructure:"base_url"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

// RunnerConfig controls the external workflow runner.
type RunnerConfig struct {
	// Command is a shell-style command line; workflow arguments are appended.
	Command string `mapstructure:"command"`
	// WorkflowsDir is where compiled workflows are written. Empty means
	// <home>/workflows.
	WorkflowsDir   string        `mapstructure:"workflows_dir"`
	InstallTimeout time.Duration `mapstructure:"install_timeout"`
	RunTimeout     time.Duration `mapstructure:"run_timeout"`
}

type NotifyConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Provider: ProviderConfig{
			Name:      "anthropic",
			Model:     models.PlannerModel,
			MaxTokens: 16384,
		},
		Runner: RunnerConfig{
			Command:        "antfarm",
			InstallTimeout: 60 * time.Second,
			RunTimeout:     30 * time.Second,
		},
		Notify: NotifyConfig{
			Enabled: true,
		},
	}
}

func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("log_level", defaults.LogLevel)

	v.SetDefault("provider.name", defaults.Provider.Name)
	v.SetDefault("provider.model", defaults.Provider.Model)
	v.SetDefault("provider.api_key", defaults.Provider.APIKey)
	v.SetDefault("provider.base_url", defaults.Provider.BaseURL)
	v.SetDefault("provider.max_tokens", defaults.Provider.MaxTokens)

	v.SetDefault("runner.command", defaults.Runner.Command)
	v.SetDefault("runner.workflows_dir", defaults.Runner.WorkflowsDir)
	v.SetDefault("runner.install_timeout", defaults.Runner.InstallTimeout)
	v.SetDefault("runner.run_timeout", defaults.Runner.RunTimeout)

	v.SetDefault("notify.enabled", defaults.Notify.Enabled)
}

// Load reads path (YAML) over the defaults and applies environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, errs
	}
	return &cfg, nil
}

// ValidationError is one invalid setting.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors collects every invalid setting.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d config errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidLogLevels returns the accepted log_level values.
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidProviders returns the accepted provider.name values.
func ValidProviders() []string {
	return []string{"anthropic", "openai", "openrouter"}
}

// Validate checks every setting and returns all problems found.
func (c *Config) Validate() ValidationErrors {
	var errs ValidationErrors
	if !slices.Contains(ValidLogLevels(), strings.ToLower(c.LogLevel)) {
		errs = append(errs, ValidationError{"log_level", c.LogLevel, fmt.Sprintf("must be one of %s", strings.Join(ValidLogLevels(), ", "))})
	}
	if !slices.Contains(ValidProviders(), c.Provider.Name) {
		errs = append(errs, ValidationError{"provider.name", c.Provider.Name, fmt.Sprintf("must be one of %s", strings.Join(ValidProviders(), ", "))})
	}
	if c.Provider.MaxTokens <= 0 {
		errs = append(errs, ValidationError{"provider.max_tokens", c.Provider.MaxTokens, "must be positive"})
	}
	if strings.TrimSpace(c.Runner.Command) == "" {
		errs = append(errs, ValidationError{"runner.command", c.Runner.Command, "must not be empty"})
	}
	if c.Runner.InstallTimeout <= 0 {
		errs = append(errs, ValidationError{"runner.install_timeout", c.Runner.InstallTimeout, "must be positive"})
	}
	if c.Runner.RunTimeout <= 0 {
		errs = append(errs, ValidationError{"runner.run_timeout", c.Runner.RunTimeout, "must be positive"})
	}
	return errs
}
