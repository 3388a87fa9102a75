// Package compiler turns a validated plan into the runner's workflow document
// and the per-agent workspace files that go with it.
//
// Compile does no validation of its own. Callers must run plan.Validate first;
// compiling an invalid plan is a programming error.
package compiler

import (
	"bytes"
	"fmt"
	"path"

	"gopkg.in/yaml.v3"

	"openfounder/internal/models"
	"openfounder/internal/plan"
)

// WorkflowFile is the document name the runner looks for in a workflow dir.
const WorkflowFile = "workflow.yml"

// Document is one file of a compiled bundle. Path is slash-separated and
// relative to the runner's workflows directory.
type Document struct {
	Path    string
	Content []byte
}

// Bundle is the compiled output for one plan.
type Bundle struct {
	VentureID string
	Workflow  Workflow
	Documents []Document
}

// AgentDir returns the workspace directory of an agent, relative to the
// workflow directory.
func AgentDir(agentID string) string {
	return path.Join("agents", agentID)
}

// Compile maps p onto the workflow schema and collects the agent documents.
// Identical plans produce identical bundles.
func Compile(p plan.Plan) *Bundle {
	wf := Workflow{
		ID:          p.VentureID,
		Name:        p.WorkflowName,
		Description: p.Description,
		Polling: Polling{
			Model:          models.PollingModel,
			TimeoutSeconds: models.PollingTimeoutSeconds,
		},
		Agents: make([]Agent, 0, len(p.Agents)),
		Steps:  make([]Step, 0, len(p.Steps)),
	}
	if len(p.Context) > 0 {
		wf.Context = make(map[string]any, len(p.Context))
		for k, v := range p.Context {
			wf.Context[k] = v
		}
	}

	b := &Bundle{VentureID: p.VentureID}
	for _, a := range p.Agents {
		wf.Agents = append(wf.Agents, compileAgent(a))
		dir := path.Join(p.VentureID, AgentDir(a.ID))
		for _, name := range []string{plan.DocAgents, plan.DocSoul, plan.DocIdentity} {
			b.Documents = append(b.Documents, Document{
				Path:    path.Join(dir, name),
				Content: []byte(a.Files.Get(name)),
			})
		}
	}
	for _, s := range p.Steps {
		wf.Steps = append(wf.Steps, compileStep(s))
	}
	b.Workflow = wf
	return b
}

func compileAgent(a plan.Agent) Agent {
	dir := AgentDir(a.ID)
	return Agent{
		ID:           a.ID,
		Name:         a.Name,
		Role:         string(a.Role),
		Description:  a.Description,
		Model:        a.Model,
		PollingModel: a.PollingModel,
		Workspace: Workspace{
			BaseDir: dir,
			Files: WorkspaceFiles{
				Agents:   path.Join(dir, plan.DocAgents),
				Soul:     path.Join(dir, plan.DocSoul),
				Identity: path.Join(dir, plan.DocIdentity),
			},
		},
	}
}

func compileStep(s plan.Step) Step {
	out := Step{
		ID:      s.ID,
		Agent:   s.Agent,
		Input:   s.Input,
		Expects: s.Expects,
	}
	if s.IsLoop() && s.Loop != nil {
		out.Type = string(plan.StepLoop)
		out.Loop = &Loop{
			Over:         s.Loop.Over,
			Completion:   s.Loop.Completion,
			FreshSession: s.Loop.FreshSession,
			VerifyEach:   s.Loop.VerifyEach,
			VerifyStep:   s.Loop.VerifyStep,
		}
	}
	if s.MaxRetries != nil {
		out.MaxRetries = copyInt(s.MaxRetries)
	}
	if s.OnFail != nil {
		out.OnFail = &OnFail{
			RetryStep:  s.OnFail.RetryStep,
			MaxRetries: copyInt(s.OnFail.MaxRetries),
			EscalateTo: s.OnFail.EscalateTo,
		}
		if s.OnFail.OnExhausted != nil {
			out.OnFail.OnExhausted = &OnExhausted{EscalateTo: s.OnFail.OnExhausted.EscalateTo}
		}
		if len(s.OnFail.Extra) > 0 {
			out.OnFail.Extra = make(map[string]any, len(s.OnFail.Extra))
			for k, v := range s.OnFail.Extra {
				out.OnFail.Extra[k] = v
			}
		}
	}
	return out
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

// WorkflowPath returns the bundle's workflow document path.
func (b *Bundle) WorkflowPath() string {
	return path.Join(b.VentureID, WorkflowFile)
}

// Files returns the rendered workflow document followed by the agent documents.
func (b *Bundle) Files() ([]Document, error) {
	data, err := Render(b.Workflow)
	if err != nil {
		return nil, err
	}
	files := make([]Document, 0, len(b.Documents)+1)
	files = append(files, Document{Path: b.WorkflowPath(), Content: data})
	files = append(files, b.Documents...)
	return files, nil
}

// Render serializes a workflow document as YAML.
func Render(wf Workflow) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(wf); err != nil {
		return nil, fmt.Errorf("encode workflow: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode workflow: %w", err)
	}
	return buf.Bytes(), nil
}
