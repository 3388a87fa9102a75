package plan

import (
	"fmt"
	"regexp"
	"strings"
)

var identPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// CheckIdentifier returns the naming problems with id, or nil when it is
// valid. label prefixes each message ("Agent", "Step", "ventureId").
//
// Underscores are reported on their own: the runner joins workflow and agent
// ids with "_" internally, so that message carries different guidance than a
// plain grammar violation. The grammar message is only added when something
// other than an underscore is also wrong.
func CheckIdentifier(label, id string) []string {
	var issues []string
	if strings.Contains(id, "_") {
		issues = append(issues, fmt.Sprintf("%s %q must not contain underscores", label, id))
	}
	if !identPattern.MatchString(strings.ReplaceAll(id, "_", "")) {
		issues = append(issues, fmt.Sprintf("%s %q must be lowercase alphanumeric with hyphens only", label, id))
	}
	return issues
}
