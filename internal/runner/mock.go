package runner

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
)

// MockRunner is a deterministic, offline runner. It records every call and
// prints output in the same shape as the real runner.
type MockRunner struct {
	InstallErr error
	RunErr     error
	// Output overrides the generated run output when non-empty.
	Output string

	mu       sync.Mutex
	installs []string
	runs     []RunCall
}

// RunCall is one recorded Run invocation.
type RunCall struct {
	WorkflowID string
	Task       string
}

func (m *MockRunner) Name() string {
	return "mock"
}

func (m *MockRunner) Install(ctx context.Context, workflowID string, out io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.installs = append(m.installs, workflowID)
	m.mu.Unlock()
	if m.InstallErr != nil {
		return m.InstallErr
	}
	if out != nil {
		fmt.Fprintf(out, "mock runner: installed workflow %s\n", workflowID)
	}
	return nil
}

func (m *MockRunner) Run(ctx context.Context, workflowID, task string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	m.runs = append(m.runs, RunCall{WorkflowID: workflowID, Task: task})
	n := 0
	for _, r := range m.runs {
		if r.WorkflowID == workflowID {
			n++
		}
	}
	m.mu.Unlock()
	if m.RunErr != nil {
		return "", m.RunErr
	}
	if m.Output != "" {
		return m.Output, nil
	}
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s#%d", workflowID, n)))
	return fmt.Sprintf("Started run: %s (#%d)\n", id, n), nil
}

// Installs returns the workflow ids passed to Install, in call order.
func (m *MockRunner) Installs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.installs...)
}

// Runs returns the recorded Run calls, in call order.
func (m *MockRunner) Runs() []RunCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RunCall(nil), m.runs...)
}
