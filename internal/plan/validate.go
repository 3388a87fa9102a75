package plan

import (
	"fmt"
	"strings"
)

// Validate checks p against the runner's constraints. It returns nil when the
// plan is well formed, or a ValidationErrors value holding every issue found.
// The plan is never modified.
func Validate(p Plan) error {
	if issues := Check(p); len(issues) > 0 {
		return issues
	}
	return nil
}

// Check runs every validation rule over p and returns the issues in
// discovery order: ventureId, agents, steps, then plan-level checks.
func Check(p Plan) ValidationErrors {
	c := &collector{}

	if p.VentureID == "" {
		c.add("ventureId", "Missing ventureId")
	} else {
		c.addAll("ventureId", CheckIdentifier("ventureId", p.VentureID))
	}

	// Every id is registered up front, so references to records declared
	// later still resolve.
	reg, dupAgents, dupSteps := BuildRegistry(p)
	agentDup := duplicateAt(dupAgents)
	stepDup := duplicateAt(dupSteps)

	if len(p.Agents) == 0 {
		c.add("agents", "No agents defined")
	}
	for idx, agent := range p.Agents {
		checkAgent(c, reg, agent, agentDup[idx], fmt.Sprintf("agents[%d]", idx))
	}

	if len(p.Steps) == 0 {
		c.add("steps", "No steps defined")
	}
	for idx, step := range p.Steps {
		checkStep(c, reg, step, stepDup[idx], fmt.Sprintf("steps[%d]", idx))
	}

	if len(p.Steps) > 0 && p.Steps[0].Input != "" && !strings.Contains(p.Steps[0].Input, TaskPlaceholder) {
		c.add("steps[0].input", "First step input must include {{task}} template variable")
	}

	if strings.TrimSpace(p.FirstTask) == "" {
		c.add("firstTask", "Missing firstTask")
	}

	return c.issues
}

func checkAgent(c *collector, reg *Registry, agent Agent, duplicate bool, path string) {
	if agent.ID == "" {
		c.add(path+".id", "Agent missing id")
		return
	}

	c.addAll(path+".id", CheckIdentifier("Agent", agent.ID))
	if duplicate {
		c.add(path+".id", fmt.Sprintf("Duplicate agent id %q", agent.ID))
	}

	if !agent.Role.Valid() {
		c.add(path+".role", fmt.Sprintf("Agent %q has invalid role %q. Valid: %s", agent.ID, agent.Role, joinRoles()))
	}

	if agent.Files == nil {
		c.add(path+".files", fmt.Sprintf("Agent %q missing files", agent.ID))
		return
	}
	for _, name := range []string{DocAgents, DocIdentity, DocSoul} {
		if strings.TrimSpace(agent.Files.Get(name)) == "" {
			c.add(path+".files."+name, fmt.Sprintf("Agent %q missing or empty %s", agent.ID, name))
		}
	}
}

func checkStep(c *collector, reg *Registry, step Step, duplicate bool, path string) {
	if step.ID == "" {
		c.add(path+".id", "Step missing id")
		return
	}

	c.addAll(path+".id", CheckIdentifier("Step", step.ID))
	if duplicate {
		c.add(path+".id", fmt.Sprintf("Duplicate step id %q", step.ID))
	}

	if step.Agent == "" {
		c.add(path+".agent", fmt.Sprintf("Step %q missing agent", step.ID))
	} else if !reg.HasAgent(step.Agent) {
		c.add(path+".agent", fmt.Sprintf("Step %q references unknown agent %q", step.ID, step.Agent))
	}

	if strings.TrimSpace(step.Input) == "" {
		c.add(path+".input", fmt.Sprintf("Step %q missing input", step.ID))
	}
	if strings.TrimSpace(step.Expects) == "" {
		c.add(path+".expects", fmt.Sprintf("Step %q missing expects", step.ID))
	}

	switch step.Type {
	case "", StepSingle:
	case StepLoop:
		checkLoop(c, reg, step, path)
	default:
		c.add(path+".type", fmt.Sprintf("Step %q has invalid type %q. Valid: %s, %s", step.ID, step.Type, StepSingle, StepLoop))
	}

	if step.MaxRetries != nil && *step.MaxRetries < 0 {
		c.add(path+".max_retries", fmt.Sprintf("Step %q max_retries must not be negative, got %d", step.ID, *step.MaxRetries))
	}

	if step.OnFail != nil {
		if step.OnFail.RetryStep != "" && !reg.HasStep(step.OnFail.RetryStep) {
			c.add(path+".on_fail.retry_step", fmt.Sprintf("Step %q on_fail.retry_step references unknown step %q", step.ID, step.OnFail.RetryStep))
		}
		if step.OnFail.MaxRetries != nil && *step.OnFail.MaxRetries < 0 {
			c.add(path+".on_fail.max_retries", fmt.Sprintf("Step %q on_fail.max_retries must not be negative, got %d", step.ID, *step.OnFail.MaxRetries))
		}
	}
}

func checkLoop(c *collector, reg *Registry, step Step, path string) {
	loop := step.Loop
	if loop == nil {
		c.add(path+".loop", fmt.Sprintf("Step %q has type=loop but no loop config", step.ID))
		return
	}
	if loop.Over != LoopOverStories {
		c.add(path+".loop.over", fmt.Sprintf("Step %q loop.over must be %q", step.ID, LoopOverStories))
	}
	if loop.Completion != LoopCompletionAllDone {
		c.add(path+".loop.completion", fmt.Sprintf("Step %q loop.completion must be %q", step.ID, LoopCompletionAllDone))
	}
	if loop.VerifyEach && loop.VerifyStep != "" && !reg.HasStep(loop.VerifyStep) {
		c.add(path+".loop.verify_step", fmt.Sprintf("Step %q loop.verify_step references unknown step %q", step.ID, loop.VerifyStep))
	}
}

func joinRoles() string {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r))
	}
	return strings.Join(names, ", ")
}
