package compiler

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// WriteResult describes what WriteBundle did on disk.
type WriteResult struct {
	Dir     string
	Files   []string
	Diff    string
	Changed bool
	Hash    string
}

// WriteBundle writes b under root as <root>/<ventureId>/... . When a workflow
// document already exists, the returned Diff holds a unified diff from the
// old document to the new one. Agent directories that are no longer part of
// the plan are removed.
func WriteBundle(root string, b *Bundle) (*WriteResult, error) {
	if b == nil || b.VentureID == "" {
		return nil, fmt.Errorf("bundle has no venture id")
	}
	files, err := b.Files()
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(root, b.VentureID)
	before, err := HashTree(dir)
	if err != nil {
		return nil, err
	}

	workflowPath := filepath.Join(root, filepath.FromSlash(b.WorkflowPath()))
	oldWorkflow, readErr := os.ReadFile(workflowPath)
	if readErr != nil && !os.IsNotExist(readErr) {
		return nil, fmt.Errorf("read existing workflow: %w", readErr)
	}

	result := &WriteResult{Dir: dir}
	for _, doc := range files {
		dst := filepath.Join(root, filepath.FromSlash(doc.Path))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return nil, fmt.Errorf("ensure %s: %w", filepath.Dir(dst), err)
		}
		if err := os.WriteFile(dst, doc.Content, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", doc.Path, err)
		}
		result.Files = append(result.Files, dst)
	}

	if err := pruneAgentDirs(dir, b); err != nil {
		return nil, err
	}

	if readErr == nil {
		diff, err := renderDiff(oldWorkflow, files[0].Content, b.WorkflowPath())
		if err != nil {
			return nil, err
		}
		result.Diff = diff
	}

	after, err := HashTree(dir)
	if err != nil {
		return nil, err
	}
	result.Hash = after
	result.Changed = before != after
	return result, nil
}

func pruneAgentDirs(dir string, b *Bundle) error {
	keep := make(map[string]struct{}, len(b.Workflow.Agents))
	for _, a := range b.Workflow.Agents {
		keep[a.ID] = struct{}{}
	}
	agentsDir := filepath.Join(dir, "agents")
	entries, err := os.ReadDir(agentsDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read agents dir: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, ok := keep[entry.Name()]; ok {
			continue
		}
		if err := os.RemoveAll(filepath.Join(agentsDir, entry.Name())); err != nil {
			return fmt.Errorf("remove stale agent %s: %w", entry.Name(), err)
		}
	}
	return nil
}

func renderDiff(oldData, newData []byte, name string) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(oldData)),
		B:        difflib.SplitLines(string(newData)),
		FromFile: filepath.Join("installed", name),
		ToFile:   filepath.Join("compiled", name),
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("diff %s: %w", name, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	return text, nil
}

// HashTree returns a digest over the relative paths and contents of every
// file under dir, or "" when dir does not exist.
func HashTree(dir string) (string, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("stat dir: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", dir)
	}

	var files []string
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("walk dir: %w", err)
	}
	sort.Strings(files)

	h := sha256.New()
	for _, rel := range files {
		f, err := os.Open(filepath.Join(dir, filepath.FromSlash(rel)))
		if err != nil {
			return "", fmt.Errorf("open %s: %w", rel, err)
		}
		fh := sha256.New()
		if _, err := io.Copy(fh, f); err != nil {
			_ = f.Close()
			return "", fmt.Errorf("hash %s: %w", rel, err)
		}
		_ = f.Close()

		_, _ = h.Write([]byte(rel))
		_, _ = h.Write(fh.Sum(nil))
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
