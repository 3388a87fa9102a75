package plan

import (
	"strings"
	"testing"
)

func TestCheckIdentifier(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		underscore bool
		grammar    bool
	}{
		{name: "valid", id: "growth-lead"},
		{name: "digits", id: "agent-2"},
		{name: "underscore only", id: "growth_lead", underscore: true},
		{name: "underscore and upper", id: "Growth_Lead", underscore: true, grammar: true},
		{name: "upper", id: "Growth", grammar: true},
		{name: "space", id: "growth lead", grammar: true},
		{name: "dot", id: "growth.lead", grammar: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := CheckIdentifier("Agent", tt.id)
			var gotUnderscore, gotGrammar bool
			for _, issue := range issues {
				switch {
				case strings.HasSuffix(issue, "must not contain underscores"):
					gotUnderscore = true
				case strings.HasSuffix(issue, "must be lowercase alphanumeric with hyphens only"):
					gotGrammar = true
				default:
					t.Fatalf("unexpected issue %q", issue)
				}
			}
			if gotUnderscore != tt.underscore {
				t.Fatalf("underscore issue: expected %v, got %v (%v)", tt.underscore, gotUnderscore, issues)
			}
			if gotGrammar != tt.grammar {
				t.Fatalf("grammar issue: expected %v, got %v (%v)", tt.grammar, gotGrammar, issues)
			}
		})
	}
}

func TestCheckIdentifierMessage(t *testing.T) {
	issues := CheckIdentifier("Agent", "dev_ops")
	if len(issues) != 1 || issues[0] != `Agent "dev_ops" must not contain underscores` {
		t.Fatalf("unexpected issues %v", issues)
	}
}

func TestRoleMembership(t *testing.T) {
	for _, r := range Roles() {
		if !r.Valid() {
			t.Fatalf("expected role %q to be valid", r)
		}
	}
	for _, r := range []Role{"", "admin", "Coding"} {
		if r.Valid() {
			t.Fatalf("expected role %q to be invalid", r)
		}
	}
}

func TestBuildRegistry(t *testing.T) {
	p := validPlan()
	p.Agents = append(p.Agents, Agent{ID: "planner"}, Agent{})
	p.Steps = append(p.Steps, Step{ID: "plan"}, Step{ID: "ship"})

	reg, dupAgents, dupSteps := BuildRegistry(p)
	wantAgent := Duplicate{ID: "planner", Index: len(p.Agents) - 2}
	if len(dupAgents) != 1 || dupAgents[0] != wantAgent {
		t.Fatalf("expected duplicate agent %+v, got %v", wantAgent, dupAgents)
	}
	wantStep := Duplicate{ID: "plan", Index: len(p.Steps) - 2}
	if len(dupSteps) != 1 || dupSteps[0] != wantStep {
		t.Fatalf("expected duplicate step %+v, got %v", wantStep, dupSteps)
	}
	if !reg.HasAgent("verifier") || reg.HasAgent("") {
		t.Fatalf("unexpected agent registry contents")
	}
	if !reg.HasStep("ship") || reg.HasStep("deploy") {
		t.Fatalf("unexpected step registry contents")
	}
}
