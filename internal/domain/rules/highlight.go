package rules

import (
	"strings"

	"github.com/maniyoussef/ticketflow/internal/domain/enums"
)

// Keywords that mark a generic status-change message as resolution
// related. The list mirrors the wording the backends actually emit
// (French and English); matching is case-insensitive substring.
var resolutionKeywords = []string{
	"résolu",
	"resolu",
	"resolved",
	"non résolu",
	"unresolved",
	"clôturé",
	"cloture",
	"closed",
}

// IsHighlight reports whether a notification should be surfaced as
// important: resolution outcomes always, status changes only when the
// message text carries a resolution keyword. The text scan is a known
// fragile heuristic kept for parity with observed behavior.
func IsHighlight(category enums.NotificationCategory, message string) bool {
	switch category {
	case enums.NotificationResolved, enums.NotificationUnresolved:
		return true
	case enums.NotificationStatusChanged:
		lowered := strings.ToLower(message)
		for _, kw := range resolutionKeywords {
			if strings.Contains(lowered, kw) {
				return true
			}
		}
	}
	return false
}
