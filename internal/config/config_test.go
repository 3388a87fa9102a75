package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Default()
	if *cfg != *want {
		t.Errorf("expected defaults %+v, got %+v", want, cfg)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `log_level: debug
provider:
  name: openai
  model: gpt-4.1
runner:
  command: node /opt/antfarm/dist/cli/cli.js
  install_timeout: 2m
notify:
  enabled: false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.Provider.Name != "openai" || cfg.Provider.Model != "gpt-4.1" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Runner.Command != "node /opt/antfarm/dist/cli/cli.js" {
		t.Errorf("unexpected runner command %q", cfg.Runner.Command)
	}
	if cfg.Runner.InstallTimeout != 2*time.Minute {
		t.Errorf("expected install timeout 2m, got %v", cfg.Runner.InstallTimeout)
	}
	if cfg.Runner.RunTimeout != 30*time.Second {
		t.Errorf("expected default run timeout, got %v", cfg.Runner.RunTimeout)
	}
	if cfg.Notify.Enabled {
		t.Error("expected notify disabled")
	}
	if cfg.Provider.MaxTokens != 16384 {
		t.Errorf("expected default max tokens, got %d", cfg.Provider.MaxTokens)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("OPENFOUNDER_PROVIDER_MODEL", "claude-opus-4-6")
	t.Setenv("OPENFOUNDER_RUNNER_WORKFLOWS_DIR", "/srv/workflows")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Provider.Model != "claude-opus-4-6" {
		t.Errorf("expected env model, got %q", cfg.Provider.Model)
	}
	if cfg.Runner.WorkflowsDir != "/srv/workflows" {
		t.Errorf("expected env workflows dir, got %q", cfg.Runner.WorkflowsDir)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := "log_level: loud\nprovider:\n  name: carrier-pigeon\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := Load(path)
	var errs ValidationErrors
	if !errors.As(err, &errs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(errs), errs)
	}
	if errs[0].Field != "log_level" || errs[1].Field != "provider.name" {
		t.Errorf("unexpected fields %s, %s", errs[0].Field, errs[1].Field)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("provider: [unclosed\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
