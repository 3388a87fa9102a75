package plan

import (
	"fmt"
	"sort"
	"strings"
)

// Warnings returns non-fatal diagnostics for p. They never make a plan
// invalid: retry cycles are allowed because the runner's retry limits and
// human escalation end them.
func Warnings(p Plan) []Issue {
	var warnings []Issue
	warnings = append(warnings, retryCycles(p.Steps)...)

	for idx, step := range p.Steps {
		if step.Loop != nil && !step.IsLoop() {
			warnings = append(warnings, Issue{
				Field:   fmt.Sprintf("steps[%d].loop", idx),
				Message: fmt.Sprintf("Step %q has a loop config but type is not loop; it will be dropped", step.ID),
			})
		}
	}
	return warnings
}

// retryCycles follows on_fail.retry_step edges and reports each distinct cycle
// once, starting from the earliest declared step in it.
func retryCycles(steps []Step) []Issue {
	next := make(map[string]string, len(steps))
	index := make(map[string]int, len(steps))
	for idx, step := range steps {
		if step.ID == "" {
			continue
		}
		if _, seen := index[step.ID]; seen {
			continue
		}
		index[step.ID] = idx
		if step.OnFail != nil && step.OnFail.RetryStep != "" {
			next[step.ID] = step.OnFail.RetryStep
		}
	}

	var issues []Issue
	reported := make(map[string]struct{})
	for _, step := range steps {
		start := step.ID
		if _, ok := next[start]; !ok {
			continue
		}

		path := []string{start}
		onPath := map[string]bool{start: true}
		cur := start
		for {
			target, ok := next[cur]
			if !ok {
				break
			}
			if _, known := index[target]; !known {
				break
			}
			if target == start {
				key := cycleKey(path)
				if _, done := reported[key]; !done {
					reported[key] = struct{}{}
					issues = append(issues, Issue{
						Field:   fmt.Sprintf("steps[%d].on_fail.retry_step", index[start]),
						Message: fmt.Sprintf("Steps form an on_fail.retry_step cycle: %s -> %s", strings.Join(path, " -> "), start),
					})
				}
				break
			}
			if onPath[target] {
				// The cycle does not pass through start; it is reported from its own members.
				break
			}
			onPath[target] = true
			path = append(path, target)
			cur = target
		}
	}
	return issues
}

func cycleKey(ids []string) string {
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	return strings.Join(sorted, "\x00")
}
