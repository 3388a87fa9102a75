package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenCreatesLayout(t *testing.T) {
	root := filepath.Join(t.TempDir(), "home")
	ws, err := Open(root)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	for _, dir := range []string{ws.Root, ws.VenturesDir, ws.WorkflowsDir, ws.AuditDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s, err=%v", dir, err)
		}
	}
	if ws.ConfigPath != filepath.Join(root, "config.yml") {
		t.Errorf("unexpected config path %s", ws.ConfigPath)
	}
	if ws.StateDBPath != filepath.Join(root, "ventures.sqlite") {
		t.Errorf("unexpected state db path %s", ws.StateDBPath)
	}
}

func TestOpenRejectsFileRoot(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := Open(file); err == nil {
		t.Fatal("expected error for non-directory root")
	}
	if _, err := Open("~bob/home"); err == nil {
		t.Fatal("expected error for ~user root")
	}
}

func TestResolvePath(t *testing.T) {
	root := t.TempDir()
	ws, err := Open(root)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	got, err := ws.ResolvePath("workflows/custom")
	if err != nil {
		t.Fatalf("resolve relative: %v", err)
	}
	if got != filepath.Join(root, "workflows", "custom") {
		t.Errorf("unexpected relative resolution %s", got)
	}

	got, err = ws.ResolvePath("/opt/antfarm/workflows/")
	if err != nil {
		t.Fatalf("resolve absolute: %v", err)
	}
	if got != "/opt/antfarm/workflows" {
		t.Errorf("unexpected absolute resolution %s", got)
	}

	if got, _ := ws.ResolvePath("  "); got != "" {
		t.Errorf("expected empty path to stay empty, got %s", got)
	}
	if _, err := ws.ResolvePath("~bob/x"); err == nil {
		t.Error("expected error for ~user expansion")
	}
}

func TestSetWorkflowsDir(t *testing.T) {
	ws, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	before := ws.WorkflowsDir
	if err := ws.SetWorkflowsDir(""); err != nil || ws.WorkflowsDir != before {
		t.Fatalf("expected empty override to keep default, got %s err=%v", ws.WorkflowsDir, err)
	}
	if err := ws.SetWorkflowsDir("/srv/antfarm/workflows"); err != nil {
		t.Fatalf("set workflows dir: %v", err)
	}
	if ws.WorkflowsDir != "/srv/antfarm/workflows" {
		t.Fatalf("unexpected workflows dir %s", ws.WorkflowsDir)
	}
}
