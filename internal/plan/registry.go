package plan

// Registry holds the agent and step ids seen so far in a plan.
type Registry struct {
	agents map[string]struct{}
	steps  map[string]struct{}
}

func newRegistry() *Registry {
	return &Registry{
		agents: make(map[string]struct{}),
		steps:  make(map[string]struct{}),
	}
}

// Duplicate is a repeated id and the index of the record that repeated it.
type Duplicate struct {
	ID    string
	Index int
}

// BuildRegistry collects the agent and step ids of p. Records without an id
// are skipped; every occurrence after the first is returned as a duplicate,
// in declaration order.
func BuildRegistry(p Plan) (reg *Registry, dupAgents []Duplicate, dupSteps []Duplicate) {
	reg = newRegistry()
	for idx, agent := range p.Agents {
		if agent.ID == "" {
			continue
		}
		if !reg.addAgent(agent.ID) {
			dupAgents = append(dupAgents, Duplicate{ID: agent.ID, Index: idx})
		}
	}
	for idx, step := range p.Steps {
		if step.ID == "" {
			continue
		}
		if !reg.addStep(step.ID) {
			dupSteps = append(dupSteps, Duplicate{ID: step.ID, Index: idx})
		}
	}
	return reg, dupAgents, dupSteps
}

// HasAgent reports whether an agent with id has been registered.
func (r *Registry) HasAgent(id string) bool {
	_, ok := r.agents[id]
	return ok
}

// HasStep reports whether a step with id has been registered.
func (r *Registry) HasStep(id string) bool {
	_, ok := r.steps[id]
	return ok
}

// addAgent returns false when id was already registered.
func (r *Registry) addAgent(id string) bool {
	if _, exists := r.agents[id]; exists {
		return false
	}
	r.agents[id] = struct{}{}
	return true
}

func (r *Registry) addStep(id string) bool {
	if _, exists := r.steps[id]; exists {
		return false
	}
	r.steps[id] = struct{}{}
	return true
}

func duplicateAt(dups []Duplicate) map[int]bool {
	at := make(map[int]bool, len(dups))
	for _, d := range dups {
		at[d.Index] = true
	}
	return at
}
