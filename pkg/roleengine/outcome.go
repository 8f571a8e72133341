package roleengine

import (
	"strings"

	"github.com/taskforge/taskforge/pkg/config"
)

// detectOutcome inspects the first non-empty line of text for a
// role-specific marker (§4.5's outcome table) and returns the outcome
// plus the body that becomes the task's proposal/feedback/export text.
//
// Per Open Question (b), marker matching is a case-insensitive prefix
// match on the first non-empty line, not substring match anywhere in the
// text — this is the deterministic reading this spec requires.
func detectOutcome(role config.AgentRole, text string) (config.Outcome, string) {
	firstLine := firstNonEmptyLine(text)

	switch role {
	case config.RoleProposer:
		if body, ok := trimMarker(firstLine, text, "proposal:"); ok {
			return config.OutcomeProposalGenerated, body
		}
		return config.OutcomeRevisionRequested, text

	case config.RoleReviewer:
		if hasMarker(firstLine, "approved") {
			return config.OutcomeApproved, text
		}
		if body, ok := trimMarker(firstLine, text, "revise:"); ok {
			return config.OutcomeRevisionRequested, body
		}
		return config.OutcomeRevisionRequested, text

	case config.RoleValidator:
		if hasMarker(firstLine, "validated") {
			return config.OutcomeValidated, text
		}
		if body, ok := trimMarker(firstLine, text, "not valid:"); ok {
			return config.OutcomeRevisionRequested, body
		}
		return config.OutcomeRevisionRequested, text

	case config.RoleFormatter:
		return config.OutcomeExported, text

	default:
		return config.OutcomeError, text
	}
}

func firstNonEmptyLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func hasMarker(firstLine, marker string) bool {
	return strings.HasPrefix(strings.ToLower(firstLine), marker)
}

// trimMarker reports whether firstLine carries marker as a
// case-insensitive prefix, and if so returns the full text with that
// marker (in its original casing, wherever it starts in text) stripped
// and trimmed.
func trimMarker(firstLine, text, marker string) (string, bool) {
	if !hasMarker(firstLine, marker) {
		return "", false
	}
	idx := strings.Index(strings.ToLower(text), marker)
	if idx < 0 {
		return strings.TrimSpace(text), true
	}
	return strings.TrimSpace(text[idx+len(marker):]), true
}
