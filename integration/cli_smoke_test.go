package integration_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"openfounder/integration/harness"
)

func fixturePlan(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(harness.RepoRoot(t), "integration", "fixtures", "plans", name)
}

func quietEnv() map[string]string {
	return map[string]string{
		"OPENFOUNDER_NOTIFY_ENABLED": "false",
	}
}

func TestCLIHelpAndVersion(t *testing.T) {
	binPath := harness.BuildBinary(t)
	runDir := t.TempDir()

	stdout, stderr, code := harness.Run(t, binPath, runDir, []string{"--help"})
	if code != 0 {
		t.Fatalf("openfounder --help exit code %d\nstderr:\n%s", code, stderr)
	}
	for _, cmd := range []string{"seed", "validate", "compile", "install", "ventures"} {
		if !strings.Contains(stdout, cmd) {
			t.Errorf("expected help to list %q, got:\n%s", cmd, stdout)
		}
	}
	if !strings.Contains(stdout, "business brief") {
		t.Errorf("expected help to describe the business brief, got:\n%s", stdout)
	}

	stdout, stderr, code = harness.Run(t, binPath, runDir, []string{"version"})
	if code != 0 {
		t.Fatalf("openfounder version exit code %d\nstderr:\n%s", code, stderr)
	}
	if !strings.HasPrefix(stdout, "openfounder ") {
		t.Errorf("unexpected version output %q", stdout)
	}
}

func TestValidateSmoke(t *testing.T) {
	binPath := harness.BuildBinary(t)
	home := t.TempDir()
	runDir := t.TempDir()

	args := []string{"validate", "--home", home, fixturePlan(t, "valid.json")}
	stdout, stderr, code := harness.RunWithEnv(t, binPath, runDir, args, quietEnv())
	if code != 0 {
		t.Fatalf("openfounder validate exit code %d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
	}
	if !strings.Contains(stdout, "Plan is valid: price-watch (3 agents, 3 steps)") {
		t.Errorf("unexpected validate output:\n%s", stdout)
	}

	args = []string{"validate", "--home", home, fixturePlan(t, "invalid.json")}
	stdout, stderr, code = harness.RunWithEnv(t, binPath, runDir, args, quietEnv())
	if code != 1 {
		t.Fatalf("expected exit code 1 for invalid plan, got %d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
	}
	for _, want := range []string{
		"Plan is invalid",
		`ventureId "Price_Watch" must not contain underscores`,
		`invalid role "designer"`,
		"missing or empty SOUL.md",
		`unknown agent "ghost"`,
		"{{task}}",
	} {
		if !strings.Contains(stderr, want) {
			t.Errorf("expected stderr to contain %q, got:\n%s", want, stderr)
		}
	}
	if strings.Contains(stderr, "error:") {
		t.Errorf("expected issues to be printed once without an error prefix, got:\n%s", stderr)
	}

	requireAuditEvents(t, home, []string{
		"validate_started",
		"validate_finished",
	})
}

func TestCompileSmoke(t *testing.T) {
	binPath := harness.BuildBinary(t)
	home := t.TempDir()
	runDir := t.TempDir()
	outDir := filepath.Join(runDir, "out")

	args := []string{"compile", "--home", home, "--out", "out", fixturePlan(t, "valid.json")}
	stdout, stderr, code := harness.RunWithEnv(t, binPath, runDir, args, quietEnv())
	if code != 0 {
		t.Fatalf("openfounder compile exit code %d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
	}
	if !strings.Contains(stdout, "updated") {
		t.Errorf("expected first compile to report an update, got:\n%s", stdout)
	}

	workflowPath := filepath.Join(outDir, "price-watch", "workflow.yml")
	data, err := os.ReadFile(workflowPath)
	if err != nil {
		t.Fatalf("workflow not written at %s: %v", workflowPath, err)
	}
	if !strings.HasPrefix(string(data), "id: price-watch") {
		t.Errorf("unexpected workflow.yml:\n%s", data)
	}
	for _, agent := range []string{"planner", "developer", "verifier"} {
		for _, doc := range []string{"AGENTS.md", "SOUL.md", "IDENTITY.md"} {
			path := filepath.Join(outDir, "price-watch", "agents", agent, doc)
			if _, err := os.Stat(path); err != nil {
				t.Errorf("missing agent doc %s: %v", path, err)
			}
		}
	}

	stdout, stderr, code = harness.RunWithEnv(t, binPath, runDir, args, quietEnv())
	if code != 0 {
		t.Fatalf("second compile exit code %d\nstderr:\n%s", code, stderr)
	}
	if !strings.Contains(stdout, "unchanged") {
		t.Errorf("expected recompiling the same plan to be unchanged, got:\n%s", stdout)
	}

	args = []string{"compile", "--home", home, "--stdout", fixturePlan(t, "valid.json")}
	stdout, stderr, code = harness.RunWithEnv(t, binPath, runDir, args, quietEnv())
	if code != 0 {
		t.Fatalf("compile --stdout exit code %d\nstderr:\n%s", code, stderr)
	}
	if !strings.HasPrefix(stdout, "id: price-watch") {
		t.Errorf("unexpected compile --stdout output:\n%s", stdout)
	}

	requireAuditEvents(t, home, []string{
		"compile_started",
		"compile_finished",
	})
}

func TestInstallWithMockRunnerSmoke(t *testing.T) {
	binPath := harness.BuildBinary(t)
	home := t.TempDir()
	runDir := t.TempDir()

	stdout, stderr, code := harness.RunWithEnv(t, binPath, runDir, []string{"ventures", "--home", home}, quietEnv())
	if code != 0 {
		t.Fatalf("openfounder ventures exit code %d\nstderr:\n%s", code, stderr)
	}
	if !strings.Contains(stdout, "No ventures yet") {
		t.Errorf("expected empty venture list, got:\n%s", stdout)
	}

	harness.CopyDir(t, filepath.Join(harness.RepoRoot(t), "integration", "fixtures", "plans"), filepath.Join(runDir, "plans"))

	args := []string{"install", "--home", home, "--mock-runner", filepath.Join("plans", "valid.json")}
	stdout, stderr, code = harness.RunWithEnv(t, binPath, runDir, args, quietEnv())
	if code != 0 {
		t.Fatalf("openfounder install exit code %d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
	}
	if !strings.Contains(stdout, `Venture "price-watch" is live.`) {
		t.Errorf("expected live message, got:\n%s", stdout)
	}

	for _, path := range []string{
		filepath.Join(home, "workflows", "price-watch", "workflow.yml"),
		filepath.Join(home, "ventures", "price-watch", "brief.md"),
	} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected %s to exist: %v", path, err)
		}
	}

	stdout, stderr, code = harness.RunWithEnv(t, binPath, runDir, []string{"ventures", "--home", home}, quietEnv())
	if code != 0 {
		t.Fatalf("openfounder ventures exit code %d\nstderr:\n%s", code, stderr)
	}
	if !strings.Contains(stdout, "price-watch") || !strings.Contains(stdout, "running") || !strings.Contains(stdout, "(#1)") {
		t.Errorf("expected running venture in list, got:\n%s", stdout)
	}

	requireAuditEvents(t, home, []string{
		"install_started",
		"pipeline_started",
		"workflow_written",
		"workflow_installed",
		"venture_live",
		"install_finished",
		"ventures_finished",
	})
}

func TestInstallRunnerFailureStopsVenture(t *testing.T) {
	binPath := harness.BuildBinary(t)
	home := t.TempDir()
	runDir := t.TempDir()

	env := quietEnv()
	env["OPENFOUNDER_RUNNER_COMMAND"] = "false"

	args := []string{"install", "--home", home, fixturePlan(t, "valid.json")}
	stdout, stderr, code := harness.RunWithEnv(t, binPath, runDir, args, env)
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
	}
	if !strings.Contains(stderr, "seed install") {
		t.Errorf("expected install stage error, got:\n%s", stderr)
	}

	stdout, _, _ = harness.RunWithEnv(t, binPath, runDir, []string{"ventures", "--home", home}, quietEnv())
	if !strings.Contains(stdout, "stopped") {
		t.Errorf("expected stopped venture, got:\n%s", stdout)
	}

	requireAuditEvents(t, home, []string{
		"pipeline_failed",
		"install_finished",
	})
}
