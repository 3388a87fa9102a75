package plan

// Role is the capability class of an agent. It controls which tools the
// agent may use once the workflow runs.
type Role string

const (
	RoleAnalysis     Role = "analysis"
	RoleCoding       Role = "coding"
	RoleVerification Role = "verification"
	RoleTesting      Role = "testing"
	RolePR           Role = "pr"
	RoleScanning     Role = "scanning"
)

// roles is the closed set of valid roles, in the order they are listed to users.
var roles = []Role{
	RoleAnalysis,
	RoleCoding,
	RoleVerification,
	RoleTesting,
	RolePR,
	RoleScanning,
}

// Roles returns the valid roles in display order.
func Roles() []Role {
	return append([]Role(nil), roles...)
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range roles {
		if r == known {
			return true
		}
	}
	return false
}

// StepType selects how many times a step executes.
type StepType string

const (
	StepSingle StepType = "single"
	StepLoop   StepType = "loop"
)

const (
	// LoopOverStories is the only supported loop source.
	LoopOverStories = "stories"
	// LoopCompletionAllDone is the only supported loop completion policy.
	LoopCompletionAllDone = "all_done"
	// TaskPlaceholder must appear in the first step's input.
	TaskPlaceholder = "{{task}}"
)

// Agent document names. Every agent carries all three.
const (
	DocAgents   = "AGENTS.md"
	DocIdentity = "IDENTITY.md"
	DocSoul     = "SOUL.md"
)

// Plan is a team plan as produced by the planner.
type Plan struct {
	VentureID    string            `json:"ventureId"`
	WorkflowName string            `json:"workflowName"`
	Description  string            `json:"description"`
	Agents       []Agent           `json:"agents"`
	Steps        []Step            `json:"steps"`
	Context      map[string]any    `json:"context,omitempty"`
	FirstTask    string            `json:"firstTask"`
}

type Agent struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Role         Role        `json:"role"`
	Description  string      `json:"description"`
	Model        string      `json:"model,omitempty"`
	PollingModel string      `json:"pollingModel,omitempty"`
	Files        *AgentFiles `json:"files,omitempty"`
}

// AgentFiles holds the markdown documents written into an agent's workspace.
type AgentFiles struct {
	Agents   string `json:"AGENTS.md"`
	Identity string `json:"IDENTITY.md"`
	Soul     string `json:"SOUL.md"`
}

// Get returns the document content by file name.
func (f *AgentFiles) Get(name string) string {
	if f == nil {
		return ""
	}
	switch name {
	case DocAgents:
		return f.Agents
	case DocIdentity:
		return f.Identity
	case DocSoul:
		return f.Soul
	default:
		return ""
	}
}

type Step struct {
	ID         string      `json:"id"`
	Agent      string      `json:"agent"`
	Type       StepType    `json:"type,omitempty"`
	Loop       *LoopConfig `json:"loop,omitempty"`
	Input      string      `json:"input"`
	Expects    string      `json:"expects"`
	MaxRetries *int        `json:"max_retries,omitempty"`
	OnFail     *OnFail     `json:"on_fail,omitempty"`
}

// IsLoop reports whether the step iterates over stories.
func (s Step) IsLoop() bool {
	return s.Type == StepLoop
}

type LoopConfig struct {
	Over         string `json:"over"`
	Completion   string `json:"completion"`
	FreshSession bool   `json:"fresh_session,omitempty"`
	VerifyEach   bool   `json:"verify_each,omitempty"`
	VerifyStep   string `json:"verify_step,omitempty"`
}

// OnFail describes recovery once a step's expectation is not met.
type OnFail struct {
	RetryStep   string       `json:"retry_step,omitempty"`
	MaxRetries  *int         `json:"max_retries,omitempty"`
	EscalateTo  string       `json:"escalate_to,omitempty"`
	OnExhausted *OnExhausted `json:"on_exhausted,omitempty"`
	// Extra holds keys the runner understands but this model does not. They
	// are copied into the workflow unchanged.
	Extra map[string]any `json:"-"`
}

type OnExhausted struct {
	EscalateTo string `json:"escalate_to"`
}
