// Package seed turns a business brief into a running venture: it asks the
// planner for a team plan, validates and compiles it, then installs the
// workflow and starts the first run.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"openfounder/internal/compiler"
	"openfounder/internal/logging"
	"openfounder/internal/notify"
	"openfounder/internal/plan"
	"openfounder/internal/runner"
	"openfounder/internal/venture"
)

// Pipeline stages, as reported in StageError and audit payloads.
const (
	StageGenerate = "generate"
	StageValidate = "validate"
	StageSave     = "save"
	StageCompile  = "compile"
	StageInstall  = "install"
	StageRun      = "run"
	StageFinalize = "finalize"
)

// Generator produces an unvalidated plan for a brief.
type Generator interface {
	Generate(ctx context.Context, brief string) (plan.Plan, error)
}

// Store persists venture metadata.
type Store interface {
	Save(ventureID, brief, workflowID, seedID string) (*venture.Record, error)
	UpdateStatus(ventureID string, status venture.Status) error
	RecordRun(ventureID, runID string, runNumber int) error
}

// Recorder writes audit events.
type Recorder interface {
	Record(eventType string, payload any) error
}

// Notifier shows desktop notifications.
type Notifier interface {
	Send(title, message string) error
}

// Options wires the pipeline's collaborators. Generator is only needed by
// Seed; Runner, Store and WorkflowsDir are always required.
type Options struct {
	Generator    Generator
	Runner       runner.Runner
	Store        Store
	WorkflowsDir string

	Audit    Recorder
	Notifier Notifier
	Reporter Reporter
	Logger   *slog.Logger
	// InstallOutput receives the runner's install output.
	InstallOutput io.Writer
}

// Result describes a venture that went live.
type Result struct {
	SeedID      string
	VentureID   string
	WorkflowID  string
	WorkflowDir string
	RunID       string
	RunNumber   int
	Task        string
}

// StageError reports the pipeline stage that failed.
type StageError struct {
	Stage     string
	VentureID string
	Err       error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("seed %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Seeder runs the seed pipeline.
type Seeder struct {
	opts Options
}

// New validates opts and returns a Seeder.
func New(opts Options) (*Seeder, error) {
	if opts.Runner == nil {
		return nil, errors.New("runner is required")
	}
	if opts.Store == nil {
		return nil, errors.New("venture store is required")
	}
	if strings.TrimSpace(opts.WorkflowsDir) == "" {
		return nil, errors.New("workflows dir is required")
	}
	if opts.Reporter == nil {
		opts.Reporter = nopReporter{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.InstallOutput == nil {
		opts.InstallOutput = io.Discard
	}
	return &Seeder{opts: opts}, nil
}

// Seed asks the planner for a plan and launches it.
func (s *Seeder) Seed(ctx context.Context, brief string) (*Result, error) {
	if s.opts.Generator == nil {
		return nil, errors.New("planner is required to seed from a brief")
	}
	seedID := uuid.NewString()
	log := s.opts.Logger.With("seed_id", seedID)
	s.record("pipeline_started", map[string]any{"seed_id": seedID, "brief_chars": len(brief)})

	s.opts.Reporter.Stage("Analyzing business brief...")
	p, err := s.opts.Generator.Generate(ctx, brief)
	if err != nil {
		return nil, s.fail(seedID, "", StageGenerate, err)
	}
	log.Debug("plan generated", "venture", p.VentureID, "agents", len(p.Agents), "steps", len(p.Steps))
	s.record("plan_generated", map[string]any{"seed_id": seedID, "venture_id": p.VentureID})

	s.opts.Reporter.Detail("Venture", p.VentureID)
	s.opts.Reporter.Detail("Workflow", p.WorkflowName)
	s.opts.Reporter.Detail("Agents", strings.Join(p.AgentNames(), ", "))
	s.opts.Reporter.Detail("Steps", fmt.Sprintf("%d", len(p.Steps)))

	return s.launch(ctx, seedID, p, brief)
}

// Launch validates an existing plan and runs every stage after generation.
// The brief is stored with the venture.
func (s *Seeder) Launch(ctx context.Context, p plan.Plan, brief string) (*Result, error) {
	seedID := uuid.NewString()
	s.record("pipeline_started", map[string]any{"seed_id": seedID, "venture_id": p.VentureID, "from_plan": true})
	return s.launch(ctx, seedID, p, brief)
}

func (s *Seeder) launch(ctx context.Context, seedID string, p plan.Plan, brief string) (*Result, error) {
	log := s.opts.Logger.With("seed_id", seedID, "venture", p.VentureID)

	s.opts.Reporter.Stage("Validating plan...")
	if err := plan.Validate(p); err != nil {
		return nil, s.fail(seedID, p.VentureID, StageValidate, err)
	}
	for _, w := range plan.Warnings(p) {
		s.opts.Reporter.Warn(w.Message)
		log.Warn("plan warning", "field", w.Field, "message", w.Message)
	}
	s.opts.Reporter.Detail("Result", "plan is valid")

	s.opts.Reporter.Stage("Saving venture metadata...")
	if _, err := s.opts.Store.Save(p.VentureID, brief, p.VentureID, seedID); err != nil {
		return nil, s.fail(seedID, p.VentureID, StageSave, err)
	}

	s.opts.Reporter.Stage("Writing workflow files...")
	written, err := compiler.WriteBundle(s.opts.WorkflowsDir, compiler.Compile(p))
	if err != nil {
		return nil, s.abort(seedID, p.VentureID, StageCompile, err)
	}
	if written.Diff != "" {
		log.Debug("workflow replaced", "diff", written.Diff)
	}
	s.record("workflow_written", map[string]any{
		"seed_id":    seedID,
		"venture_id": p.VentureID,
		"dir":        written.Dir,
		"files":      len(written.Files),
		"hash":       written.Hash,
		"changed":    written.Changed,
	})
	s.opts.Reporter.Detail("Written to", written.Dir)

	s.opts.Reporter.Stage("Installing workflow...")
	if err := s.opts.Runner.Install(ctx, p.VentureID, s.opts.InstallOutput); err != nil {
		return nil, s.abort(seedID, p.VentureID, StageInstall, err)
	}
	s.record("workflow_installed", map[string]any{"seed_id": seedID, "venture_id": p.VentureID, "runner": s.opts.Runner.Name()})

	s.opts.Reporter.Stage("Starting first sprint...")
	output, err := s.opts.Runner.Run(ctx, p.VentureID, p.FirstTask)
	if err != nil {
		return nil, s.abort(seedID, p.VentureID, StageRun, err)
	}
	info := runner.ParseRunOutput(output)
	log.Debug("run started", "run_id", info.RunID, "run_number", info.RunNumber)

	if err := s.opts.Store.UpdateStatus(p.VentureID, venture.StatusRunning); err != nil {
		return nil, s.fail(seedID, p.VentureID, StageFinalize, err)
	}
	if err := s.opts.Store.RecordRun(p.VentureID, info.RunID, info.RunNumber); err != nil {
		return nil, s.fail(seedID, p.VentureID, StageFinalize, err)
	}

	result := &Result{
		SeedID:      seedID,
		VentureID:   p.VentureID,
		WorkflowID:  p.VentureID,
		WorkflowDir: written.Dir,
		RunID:       info.RunID,
		RunNumber:   info.RunNumber,
		Task:        p.FirstTask,
	}
	s.record("venture_live", map[string]any{
		"seed_id":    seedID,
		"venture_id": result.VentureID,
		"run_id":     result.RunID,
		"run_number": result.RunNumber,
	})
	s.notify(notify.FormatVentureLive(result.VentureID, result.RunID, result.RunNumber))

	s.opts.Reporter.Success(fmt.Sprintf("Venture %q is live.", result.VentureID))
	s.opts.Reporter.Detail("Task", result.Task)
	s.opts.Reporter.Detail("Run", fmt.Sprintf("%s (#%d)", result.RunID, result.RunNumber))
	return result, nil
}

// abort stops a venture that was already saved before failing.
func (s *Seeder) abort(seedID, ventureID, stage string, err error) error {
	if statusErr := s.opts.Store.UpdateStatus(ventureID, venture.StatusStopped); statusErr != nil {
		s.opts.Logger.Warn("mark venture stopped", "venture", ventureID, "error", statusErr)
	}
	return s.fail(seedID, ventureID, stage, err)
}

func (s *Seeder) fail(seedID, ventureID, stage string, err error) error {
	payload := map[string]any{
		"seed_id":    seedID,
		"venture_id": ventureID,
		"stage":      stage,
		"error":      err.Error(),
	}
	var cmdErr *runner.CommandError
	if errors.As(err, &cmdErr) {
		payload["command"] = cmdErr.CommandLine()
		payload["exit_code"] = cmdErr.ExitCode
	}
	s.record("pipeline_failed", payload)
	s.notify(notify.FormatSeedFailed(ventureID, stage, err))
	return &StageError{Stage: stage, VentureID: ventureID, Err: err}
}

func (s *Seeder) record(eventType string, payload map[string]any) {
	if s.opts.Audit == nil {
		return
	}
	if err := s.opts.Audit.Record(eventType, payload); err != nil {
		s.opts.Logger.Warn("audit log failed", "event", eventType, "error", err)
	}
}

func (s *Seeder) notify(title, message string) {
	if s.opts.Notifier == nil {
		return
	}
	if err := s.opts.Notifier.Send(title, message); err != nil {
		s.opts.Logger.Warn("notification failed", "error", err)
	}
}
