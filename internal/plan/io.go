package plan

import (
	"encoding/json"
	"fmt"
	"os"
)

// Load reads a plan JSON document from disk. It does not validate the plan.
func Load(path string) (Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Plan{}, fmt.Errorf("read plan: %w", err)
	}
	return Decode(data)
}

// Decode parses a plan JSON document.
func Decode(data []byte) (Plan, error) {
	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return Plan{}, fmt.Errorf("parse plan json: %w", err)
	}
	return p, nil
}

// AgentIDs returns the agent ids in declaration order.
func (p Plan) AgentIDs() []string {
	ids := make([]string, 0, len(p.Agents))
	for _, a := range p.Agents {
		ids = append(ids, a.ID)
	}
	return ids
}

// AgentNames returns the agent display names in declaration order.
func (p Plan) AgentNames() []string {
	names := make([]string, 0, len(p.Agents))
	for _, a := range p.Agents {
		names = append(names, a.Name)
	}
	return names
}

var onFailKeys = []string{"retry_step", "max_retries", "escalate_to", "on_exhausted"}

// UnmarshalJSON decodes the modelled keys and keeps the rest in Extra.
func (o *OnFail) UnmarshalJSON(data []byte) error {
	type modelled OnFail
	var m modelled
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, key := range onFailKeys {
		delete(all, key)
	}
	*o = OnFail(m)
	if len(all) > 0 {
		o.Extra = all
	}
	return nil
}
