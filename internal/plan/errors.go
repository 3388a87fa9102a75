package plan

import (
	"strings"
)

// Issue is a single problem found while checking a plan. Field locates the
// offending value (for example "steps[2].on_fail.retry_step"); Message names
// the entity and what is wrong with it.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (i Issue) Error() string {
	return i.Message
}

// ValidationErrors aggregates every issue found in one validation pass, in
// discovery order.
type ValidationErrors []Issue

func (errs ValidationErrors) Error() string {
	var b strings.Builder
	b.WriteString("plan validation failed:")
	for _, issue := range errs {
		b.WriteString("\n  - ")
		b.WriteString(issue.Message)
	}
	return b.String()
}

// Messages returns the issue messages in order, one per line of output.
func (errs ValidationErrors) Messages() []string {
	out := make([]string, 0, len(errs))
	for _, issue := range errs {
		out = append(out, issue.Message)
	}
	return out
}

type collector struct {
	issues ValidationErrors
}

func (c *collector) add(field, message string) {
	c.issues = append(c.issues, Issue{Field: field, Message: message})
}

func (c *collector) addAll(field string, messages []string) {
	for _, msg := range messages {
		c.add(field, msg)
	}
}
