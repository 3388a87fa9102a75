package compiler

// Workflow is the runner's declarative workflow document. Optional fields use
// omitempty so absent values never appear as null or false.
type Workflow struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Polling     Polling           `yaml:"polling"`
	Agents      []Agent           `yaml:"agents"`
	Steps       []Step            `yaml:"steps"`
	Context     map[string]any    `yaml:"context,omitempty"`
}

type Polling struct {
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

type Agent struct {
	ID           string    `yaml:"id"`
	Name         string    `yaml:"name"`
	Role         string    `yaml:"role"`
	Description  string    `yaml:"description"`
	Model        string    `yaml:"model,omitempty"`
	PollingModel string    `yaml:"pollingModel,omitempty"`
	Workspace    Workspace `yaml:"workspace"`
}

// Workspace is always generated from the agent id.
type Workspace struct {
	BaseDir string         `yaml:"baseDir"`
	Files   WorkspaceFiles `yaml:"files"`
}

type WorkspaceFiles struct {
	Agents   string `yaml:"AGENTS.md"`
	Soul     string `yaml:"SOUL.md"`
	Identity string `yaml:"IDENTITY.md"`
}

type Step struct {
	ID         string  `yaml:"id"`
	Agent      string  `yaml:"agent"`
	Input      string  `yaml:"input"`
	Expects    string  `yaml:"expects"`
	Type       string  `yaml:"type,omitempty"`
	Loop       *Loop   `yaml:"loop,omitempty"`
	MaxRetries *int    `yaml:"max_retries,omitempty"`
	OnFail     *OnFail `yaml:"on_fail,omitempty"`
}

type Loop struct {
	Over         string `yaml:"over"`
	Completion   string `yaml:"completion"`
	FreshSession bool   `yaml:"fresh_session,omitempty"`
	VerifyEach   bool   `yaml:"verify_each,omitempty"`
	VerifyStep   string `yaml:"verify_step,omitempty"`
}

type OnFail struct {
	RetryStep   string         `yaml:"retry_step,omitempty"`
	MaxRetries  *int           `yaml:"max_retries,omitempty"`
	EscalateTo  string         `yaml:"escalate_to,omitempty"`
	OnExhausted *OnExhausted   `yaml:"on_exhausted,omitempty"`
	Extra       map[string]any `yaml:",inline"`
}

type OnExhausted struct {
	EscalateTo string `yaml:"escalate_to"`
}
