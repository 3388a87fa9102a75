package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kballard/go-shellquote"
)

const (
	DefaultCommand        = "antfarm"
	DefaultInstallTimeout = 60 * time.Second
	DefaultRunTimeout     = 30 * time.Second
)

// CommandRunner shells out to the runner CLI.
type CommandRunner struct {
	Command        []string
	Dir            string
	Env            map[string]string
	InstallTimeout time.Duration
	RunTimeout     time.Duration
}

// NewCommandRunner parses a shell-style command line such as
// "node /opt/antfarm/dist/cli/cli.js".
func NewCommandRunner(command string) (*CommandRunner, error) {
	if strings.TrimSpace(command) == "" {
		command = DefaultCommand
	}
	args, err := shellquote.Split(command)
	if err != nil {
		return nil, fmt.Errorf("parse runner command: %w", err)
	}
	if len(args) == 0 {
		return nil, errors.New("runner command is empty")
	}
	return &CommandRunner{
		Command:        args,
		InstallTimeout: DefaultInstallTimeout,
		RunTimeout:     DefaultRunTimeout,
	}, nil
}

func (r *CommandRunner) Name() string {
	return "command"
}

func (r *CommandRunner) Install(ctx context.Context, workflowID string, out io.Writer) error {
	if workflowID == "" {
		return errors.New("workflow id is required")
	}
	if out == nil {
		out = io.Discard
	}
	var captured bytes.Buffer
	return r.exec(ctx, r.InstallTimeout, io.MultiWriter(out, &captured), &captured, "workflow", "install", workflowID)
}

func (r *CommandRunner) Run(ctx context.Context, workflowID, task string) (string, error) {
	if workflowID == "" {
		return "", errors.New("workflow id is required")
	}
	var captured bytes.Buffer
	err := r.exec(ctx, r.RunTimeout, &captured, &captured, "workflow", "run", workflowID, task)
	return captured.String(), err
}

func (r *CommandRunner) exec(ctx context.Context, timeout time.Duration, out io.Writer, captured *bytes.Buffer, args ...string) error {
	if len(r.Command) == 0 {
		return errors.New("runner command is empty")
	}
	argv := append(append([]string{}, r.Command[1:]...), args...)

	runCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, r.Command[0], argv...)
	cmd.Dir = r.Dir
	cmd.Stdout = out
	cmd.Stderr = out
	cmd.Env = mergeEnv(os.Environ(), r.Env)
	cmd.WaitDelay = 2 * time.Second

	if err := cmd.Run(); err != nil {
		return &CommandError{
			Args:     append([]string{r.Command[0]}, argv...),
			ExitCode: exitCode(runCtx, err),
			Output:   captured.String(),
			Err:      err,
		}
	}
	return nil
}

// CommandError reports a failed runner invocation.
type CommandError struct {
	Args     []string
	ExitCode int
	Output   string
	Err      error
}

// maxOutputInError bounds how much runner output is repeated in messages.
const maxOutputInError = 2000

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s: exit %d", shellquote.Join(e.Args...), e.ExitCode)
	out := strings.TrimSpace(e.Output)
	if len(out) > maxOutputInError {
		cut := len(out) - maxOutputInError
		for cut < len(out) && !utf8.RuneStart(out[cut]) {
			cut++
		}
		out = "..." + out[cut:]
	}
	if out != "" {
		msg += "\n" + out
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// CommandLine returns the shell-quoted command that failed.
func (e *CommandError) CommandLine() string {
	return shellquote.Join(e.Args...)
}

func mergeEnv(base []string, overrides map[string]string) []string {
	if len(overrides) == 0 {
		return base
	}
	merged := make([]string, 0, len(base)+len(overrides))
	for _, entry := range base {
		key, _, _ := strings.Cut(entry, "=")
		if _, ok := overrides[key]; ok {
			continue
		}
		merged = append(merged, entry)
	}
	for key, value := range overrides {
		merged = append(merged, fmt.Sprintf("%s=%s", key, value))
	}
	return merged
}

func exitCode(ctx context.Context, err error) int {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return 124
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}
