package hubspot

import "testing"

func TestMapOutcome(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{"completed", OutcomeCompleted},
		{"no-answer", OutcomeNoAnswer},
		{"busy", OutcomeBusy},
		{"failed", OutcomeFailed},
		{"canceled", OutcomeCanceled},
		{"COMPLETED", OutcomeCompleted},
		{" completed ", OutcomeCompleted},
		{"ringing", OutcomeUnknown},
		{"", OutcomeUnknown},
		{"no_answer", OutcomeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			if got := MapOutcome(tt.status); got != tt.want {
				t.Errorf("MapOutcome(%q) = %q, want %q", tt.status, got, tt.want)
			}
		})
	}
}
