package integration_test

import (
	"path/filepath"
	"testing"

	"openfounder/internal/audit"
)

// auditEvents reads the audit log of an openfounder home in write order.
func auditEvents(t *testing.T, home string) []audit.Event {
	t.Helper()
	events, err := audit.NewLogger(filepath.Join(home, "audit", "audit.sqlite"), "").Events()
	if err != nil {
		t.Fatalf("read audit events: %v", err)
	}
	return events
}

// requireAuditEvents fails unless every type in want appears in the home's
// audit log, in the given relative order.
func requireAuditEvents(t *testing.T, home string, want []string) {
	t.Helper()
	events := auditEvents(t, home)
	next := 0
	for _, ev := range events {
		if next < len(want) && ev.Type == want[next] {
			next++
		}
	}
	if next < len(want) {
		types := make([]string, 0, len(events))
		for _, ev := range events {
			types = append(types, ev.Type)
		}
		t.Fatalf("missing audit event %s (in order %v), got %v", want[next], want, types)
	}
}
