package ooo

import (
	"strings"

	"github.com/theakshaypant/oooasis/internal/core"
)

// Fingerprint builds the exact summary text that marks a person's OOO event:
// the username and the trimmed pattern, joined by a single space.
func Fingerprint(username, pattern string) string {
	return username + " " + strings.TrimSpace(pattern)
}

// matchesExactly is the strict policy used for duplicate detection and delete
// targeting: the summary must equal the fingerprint, case-sensitively.
func matchesExactly(e core.OOOEvent, fingerprint string) bool {
	return e.Summary == fingerprint
}

// containsFingerprint is the permissive policy used only for the today-check:
// the fingerprint may appear anywhere in the summary. The asymmetry with
// matchesExactly is deliberate; do not unify the two.
func containsFingerprint(e core.OOOEvent, fingerprint string) bool {
	return strings.Contains(e.Summary, fingerprint)
}
