package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultRoot is the home directory used when none is configured.
const DefaultRoot = "~/.openfounder"

// Workspace defines the paths under the OpenFounder home directory.
type Workspace struct {
	Root         string
	ConfigPath   string
	VenturesDir  string
	WorkflowsDir string
	AuditDir     string
	AuditDBPath  string
	StateDBPath  string
}

// Open resolves the home root and creates it along with the standard
// directories when missing. An empty root means DefaultRoot.
func Open(root string) (*Workspace, error) {
	if strings.TrimSpace(root) == "" {
		root = DefaultRoot
	}
	abs, err := resolveRoot(root)
	if err != nil {
		return nil, err
	}
	ws := newWorkspace(abs)
	if err := ws.EnsureDirs(); err != nil {
		return nil, err
	}
	return ws, nil
}

// EnsureDirs creates the standard directories for ventures, workflows and audit data.
func (w *Workspace) EnsureDirs() error {
	if w == nil {
		return fmt.Errorf("workspace is nil")
	}
	for _, dir := range []string{w.Root, w.VenturesDir, w.WorkflowsDir, w.AuditDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensure %s: %w", dir, err)
		}
	}
	return nil
}

// SetWorkflowsDir points compiled workflow output at dir, resolved against the root.
func (w *Workspace) SetWorkflowsDir(dir string) error {
	resolved, err := w.ResolvePath(dir)
	if err != nil {
		return err
	}
	if resolved != "" {
		w.WorkflowsDir = resolved
	}
	return nil
}

// ResolvePath returns an absolute path, resolving relative paths from the home root.
func (w *Workspace) ResolvePath(path string) (string, error) {
	if w == nil {
		return "", fmt.Errorf("workspace is nil")
	}
	if strings.TrimSpace(path) == "" {
		return "", nil
	}
	expanded, err := expandHome(path)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(expanded) {
		return filepath.Clean(expanded), nil
	}
	return filepath.Abs(filepath.Join(w.Root, expanded))
}

func newWorkspace(root string) *Workspace {
	return &Workspace{
		Root:         root,
		ConfigPath:   filepath.Join(root, "config.yml"),
		VenturesDir:  filepath.Join(root, "ventures"),
		WorkflowsDir: filepath.Join(root, "workflows"),
		AuditDir:     filepath.Join(root, "audit"),
		AuditDBPath:  filepath.Join(root, "audit", "audit.sqlite"),
		StateDBPath:  filepath.Join(root, "ventures.sqlite"),
	}
}

func resolveRoot(root string) (string, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return "", fmt.Errorf("home root is required")
	}
	expanded, err := expandHome(root)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}
	return abs, nil
}

func expandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:]), nil
	}
	return "", fmt.Errorf("unsupported home expansion: %s", path)
}
