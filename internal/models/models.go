package models

import (
	"openfounder/internal/plan"
)

const (
	// PollingModel is the cheap model the runner uses to check for pending work.
	PollingModel = "default"
	// PollingTimeoutSeconds bounds each polling check.
	PollingTimeoutSeconds = 120
	// PlannerModel designs the team at seed time.
	PlannerModel = "claude-sonnet-4-6"
)

// Spec is a recommended model and what it is good at.
type Spec struct {
	ID        string
	Strengths string
}

var forRole = map[plan.Role]Spec{
	plan.RoleAnalysis: {
		ID:        "claude-sonnet-4-6",
		Strengths: "Reasoning, planning and structured output. Architecture decisions, code review, strategy.",
	},
	plan.RoleCoding: {
		ID:        "claude-sonnet-4-6",
		Strengths: "Fast, accurate code generation across large codebases and multi-file edits.",
	},
	plan.RoleVerification: {
		ID:        "claude-sonnet-4-6",
		Strengths: "Careful verification and bug detection; reads test output well.",
	},
	plan.RoleTesting: {
		ID:        "claude-sonnet-4-6",
		Strengths: "Test generation and QA with a good eye for edge cases.",
	},
	plan.RolePR: {
		ID:        "claude-sonnet-4-6",
		Strengths: "Clean PR descriptions, commit messages and changelogs.",
	},
	plan.RoleScanning: {
		ID:        "claude-sonnet-4-6",
		Strengths: "Web research, security scanning and competitive analysis.",
	},
}

// ForRole returns the recommended model for role.
func ForRole(role plan.Role) (Spec, bool) {
	spec, ok := forRole[role]
	return spec, ok
}
