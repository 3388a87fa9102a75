package ceo

import (
	"fmt"
	"regexp"
	"strings"

	"openfounder/internal/plan"
)

// maxRawInError bounds how much of a bad response is echoed back.
const maxRawInError = 500

var fencedJSON = regexp.MustCompile("(?s)```json\\s*\\n(.*?)\\n```")

// ShapeError reports a planner response that could not be turned into a plan
// at all. It is fatal; validation never runs on such a response.
type ShapeError struct {
	Reason string
	Raw    string
}

func (e *ShapeError) Error() string {
	if e.Raw == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s\n\nResponse:\n%s", e.Reason, e.Raw)
}

// ParseResponse extracts the plan from the planner's reply. A fenced json
// block wins; otherwise the whole reply must be JSON. The top-level required
// fields must be present.
func ParseResponse(text string) (plan.Plan, error) {
	payload := strings.TrimSpace(text)
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		payload = m[1]
	}

	p, err := plan.Decode([]byte(payload))
	if err != nil {
		return plan.Plan{}, &ShapeError{
			Reason: fmt.Sprintf("planner response is not valid JSON: %v", err),
			Raw:    truncate(text, maxRawInError),
		}
	}

	var missing []string
	if p.VentureID == "" {
		missing = append(missing, "ventureId")
	}
	if len(p.Agents) == 0 {
		missing = append(missing, "agents")
	}
	if len(p.Steps) == 0 {
		missing = append(missing, "steps")
	}
	if p.FirstTask == "" {
		missing = append(missing, "firstTask")
	}
	if len(missing) > 0 {
		return plan.Plan{}, &ShapeError{
			Reason: fmt.Sprintf("planner response missing required fields: %s", strings.Join(missing, ", ")),
			Raw:    truncate(text, maxRawInError),
		}
	}
	return p, nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
