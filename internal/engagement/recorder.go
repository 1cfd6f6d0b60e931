package engagement

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/troikatech/call-bridge/internal/correlate"
	"github.com/troikatech/call-bridge/pkg/hubspot"
	"github.com/troikatech/call-bridge/pkg/logger"
)

// dedupTTL bounds how long a call sid blocks repeat writes. Platform
// redeliveries arrive within minutes; 24h leaves a wide margin.
const dedupTTL = 24 * time.Hour

// CompletedCall is the terminal-state callback payload the recorder
// consumes, already flattened out of the platform's form encoding.
type CompletedCall struct {
	CallSid      string
	Direction    string
	From         string
	To           string
	Status       string
	Duration     string // seconds, as sent by the platform
	RecordingURL string
}

// Recorder correlates a finished call with a CRM contact and logs it as
// a call engagement. All failures are absorbed and logged: the telephony
// platform retries on non-2xx, and a retried callback would only repeat
// the same failure while delaying the rest of the queue.
type Recorder struct {
	crm   *hubspot.Client
	dedup DedupStore
	log   *zap.Logger
}

func NewRecorder(crm *hubspot.Client, dedup DedupStore, log *zap.Logger) *Recorder {
	return &Recorder{crm: crm, dedup: dedup, log: log}
}

// Record logs one completed call to the CRM, at most once per call sid.
func (r *Recorder) Record(ctx context.Context, call CompletedCall, corr correlate.Context) {
	if r.crm == nil || !r.crm.IsConfigured() {
		return
	}
	if call.CallSid == "" {
		r.log.Warn("callback without call sid, skipping engagement")
		return
	}

	ok, err := r.dedup.MarkOnce(ctx, call.CallSid, dedupTTL)
	if err != nil {
		// Store outage: proceed with the write rather than silently
		// dropping the engagement. A rare duplicate beats a lost call log.
		r.log.Warn("dedup store unavailable, writing anyway",
			zap.String("callSid", call.CallSid), zap.Error(err))
	} else if !ok {
		r.log.Debug("engagement already recorded", zap.String("callSid", call.CallSid))
		return
	}

	inbound := corr.IsIncoming || strings.Contains(strings.ToLower(call.Direction), "inbound")

	contactID := corr.ContactID
	if contactID == "" && inbound {
		// No click-to-call context on an inbound leg: the caller's number
		// is the only correlation handle we have.
		customer := corr.CustomerPhone
		if customer == "" {
			customer = call.From
		}
		contactID, err = r.crm.SearchContactByPhone(ctx, customer)
		if err != nil {
			r.log.Warn("contact search failed",
				zap.String("callSid", call.CallSid),
				logger.MaskPhone("customerPhone", customer),
				zap.Error(err))
		}
	}

	direction := "OUTBOUND"
	if inbound {
		direction = "INBOUND"
	}

	engagementID, err := r.crm.CreateCallEngagement(ctx, hubspot.Engagement{
		ContactID:      contactID,
		OwnerID:        corr.OwnerID,
		Direction:      direction,
		FromNumber:     call.From,
		ToNumber:       call.To,
		DurationMs:     durationMillis(call.Duration),
		Outcome:        hubspot.MapOutcome(call.Status),
		RecordingURL:   call.RecordingURL,
		ExternalCallID: call.CallSid,
	})
	if err != nil {
		r.log.Warn("engagement create failed",
			zap.String("callSid", call.CallSid),
			zap.String("contactId", contactID),
			zap.Error(err))
		return
	}

	r.log.Info("call engagement recorded",
		zap.String("callSid", call.CallSid),
		zap.String("engagementId", engagementID),
		zap.String("contactId", contactID),
		zap.String("direction", direction))
}

func durationMillis(seconds string) int64 {
	s, err := strconv.ParseInt(strings.TrimSpace(seconds), 10, 64)
	if err != nil || s < 0 {
		return 0
	}
	return s * 1000
}
