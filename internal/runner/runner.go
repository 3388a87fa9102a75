// Package runner drives the external workflow runner that installs and
// starts compiled workflows.
package runner

import (
	"context"
	"io"
	"regexp"
	"strconv"
)

// Runner installs a compiled workflow and starts runs of it.
type Runner interface {
	Name() string
	// Install registers the workflow with the runner. Output is streamed to out.
	Install(ctx context.Context, workflowID string, out io.Writer) error
	// Run starts a run with the given task and returns the runner's output.
	Run(ctx context.Context, workflowID, task string) (string, error)
}

// UnknownRunID is reported when run output carries no run id.
const UnknownRunID = "unknown"

// RunInfo is what can be recovered from a run command's output.
type RunInfo struct {
	RunID     string
	RunNumber int
}

var (
	runIDPattern     = regexp.MustCompile(`(?i)run[:\s]+([a-f0-9-]+)`)
	runNumberPattern = regexp.MustCompile(`#(\d+)`)
)

// ParseRunOutput extracts the run id and sequence number. Missing values fall
// back to UnknownRunID and 1.
func ParseRunOutput(output string) RunInfo {
	info := RunInfo{RunID: UnknownRunID, RunNumber: 1}
	if m := runIDPattern.FindStringSubmatch(output); m != nil {
		info.RunID = m[1]
	}
	if m := runNumberPattern.FindStringSubmatch(output); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			info.RunNumber = n
		}
	}
	return info
}
