package hubspot

import "strings"

// CRM call outcome values
const (
	OutcomeCompleted = "COMPLETED"
	OutcomeNoAnswer  = "NO_ANSWER"
	OutcomeBusy      = "BUSY"
	OutcomeFailed    = "FAILED"
	OutcomeCanceled  = "CANCELED"
	OutcomeUnknown   = "UNKNOWN"
)

var statusOutcomes = map[string]string{
	"completed": OutcomeCompleted,
	"no-answer": OutcomeNoAnswer,
	"busy":      OutcomeBusy,
	"failed":    OutcomeFailed,
	"canceled":  OutcomeCanceled,
}

// MapOutcome maps a platform call status string to a CRM outcome.
// Unrecognized statuses map to UNKNOWN, never an error.
func MapOutcome(status string) string {
	if outcome, ok := statusOutcomes[strings.ToLower(strings.TrimSpace(status))]; ok {
		return outcome
	}
	return OutcomeUnknown
}
