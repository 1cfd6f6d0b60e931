package routing

import (
	"github.com/troikatech/call-bridge/internal/correlate"
	"github.com/troikatech/call-bridge/internal/twiml"
)

const (
	statusCallbackPath    = "/call-status"
	recordingCallbackPath = "/recording-callback"

	// Two-party recording, started when the callee answers
	recordMode = "record-from-answer-dual"
)

// BuildParams carries the request-independent inputs of the builder
type BuildParams struct {
	// BaseURL is the public https origin callbacks are addressed to
	BaseURL string
	// Language/Message spoken when no route exists
	Language string
	Message  string
}

// BuildResponse turns a resolved call context into the call-control
// document the platform executes next. Pure function: no I/O, no side
// effects, so it is testable without a live platform.
func BuildResponse(cc CallContext, p BuildParams) *twiml.Response {
	switch cc.Direction {
	case OutboundFromAgent:
		corr := correlate.Context{
			ContactID:     cc.ContactID,
			OwnerID:       cc.OwnerID,
			CustomerPhone: cc.CustomerNumber,
		}
		return &twiml.Response{
			Dial: &twiml.Dial{
				CallerID:                     cc.CallerNumber,
				Record:                       recordMode,
				StatusCallback:               corr.Encode(p.BaseURL + statusCallbackPath),
				StatusCallbackEvent:          "completed",
				StatusCallbackMethod:         "POST",
				RecordingStatusCallback:      corr.Encode(p.BaseURL + recordingCallbackPath),
				RecordingStatusCallbackEvent: "completed",
				Number:                       cc.TargetNumber,
			},
		}

	case Inbound:
		// For inbound calls the customer is the caller, not the
		// dialed party.
		corr := correlate.Context{
			ContactID:     cc.ContactID,
			OwnerID:       cc.OwnerID,
			CustomerPhone: cc.CustomerNumber,
			IsIncoming:    true,
		}
		return &twiml.Response{
			Dial: &twiml.Dial{
				Record:                       recordMode,
				StatusCallback:               corr.Encode(p.BaseURL + statusCallbackPath),
				StatusCallbackEvent:          "completed",
				StatusCallbackMethod:         "POST",
				RecordingStatusCallback:      corr.Encode(p.BaseURL + recordingCallbackPath),
				RecordingStatusCallbackEvent: "completed",
				Client:                       cc.TargetNumber,
			},
		}

	default:
		return &twiml.Response{
			Say: &twiml.Say{
				Language: p.Language,
				Text:     p.Message,
			},
			Hangup: &twiml.Hangup{},
		}
	}
}
