package routing

import "strings"

// ClientPrefix marks a From value as a browser softphone identity
const ClientPrefix = "client:"

// Direction classifies a call-control webhook
type Direction int

const (
	// Inbound is an external caller dialing one of our numbers
	Inbound Direction = iota
	// OutboundFromAgent is a call a browser agent initiated
	OutboundFromAgent
	// Unroutable means no agent/number match exists for this call
	Unroutable
)

func (d Direction) String() string {
	switch d {
	case Inbound:
		return "inbound"
	case OutboundFromAgent:
		return "outbound-from-agent"
	default:
		return "unroutable"
	}
}

// WebhookInput is the raw material for classification: the platform's
// From/To fields plus any out-of-band correlation signal attached by
// whoever initiated the leg (a CRM contact id from click-to-call, or a
// customer phone carried on a bridge leg's TwiML URL).
type WebhookInput struct {
	From        string
	To          string
	ContactID   string
	OwnerID     string
	ClientPhone string
}

// CallContext is the resolved view of one call-control webhook. It is
// derived entirely from the webhook payload and the immutable directory,
// lives for the duration of one request, and is never persisted.
type CallContext struct {
	Direction      Direction
	AgentIdentity  string
	CallerNumber   string
	TargetNumber   string
	CustomerNumber string
	ContactID      string
	OwnerID        string
}

// Resolve classifies a call-control webhook and resolves the acting
// agent. A call is agent-outbound when From carries the client prefix
// OR any correlation signal is present: a relayed leg may arrive with a
// plain number in From, so correlation data alone is sufficient
// evidence of agent initiation. Explicit correlation signals win over
// number-based inference.
func Resolve(in WebhookInput, dir *Directory) CallContext {
	agentInitiated := strings.HasPrefix(in.From, ClientPrefix) ||
		in.ContactID != "" ||
		in.ClientPhone != ""

	if agentInitiated {
		return resolveOutbound(in, dir)
	}
	return resolveInbound(in, dir)
}

func resolveOutbound(in WebhookInput, dir *Directory) CallContext {
	var identity string
	if strings.HasPrefix(in.From, ClientPrefix) {
		identity = strings.ToLower(strings.TrimPrefix(in.From, ClientPrefix))
	} else {
		// The platform already swapped legs: From is no longer the
		// client identity, but To is the agent's own caller number.
		identity, _ = dir.IdentityFor(in.To)
	}

	callerNumber, _ := dir.NumberFor(identity)
	if identity == "" || callerNumber == "" {
		// Outbound intent without a configured caller number is a
		// routing failure, not a crash: the builder degrades to a
		// spoken apology.
		return CallContext{
			Direction: Unroutable,
			ContactID: in.ContactID,
			OwnerID:   in.OwnerID,
		}
	}

	customer := in.To
	if in.ClientPhone != "" {
		customer = in.ClientPhone
	}

	return CallContext{
		Direction:      OutboundFromAgent,
		AgentIdentity:  identity,
		CallerNumber:   callerNumber,
		TargetNumber:   customer,
		CustomerNumber: customer,
		ContactID:      in.ContactID,
		OwnerID:        in.OwnerID,
	}
}

func resolveInbound(in WebhookInput, dir *Directory) CallContext {
	identity, ok := dir.IdentityFor(in.To)
	if !ok {
		return CallContext{
			Direction: Unroutable,
			ContactID: in.ContactID,
			OwnerID:   in.OwnerID,
		}
	}

	callerNumber, _ := dir.NumberFor(identity)

	return CallContext{
		Direction:      Inbound,
		AgentIdentity:  identity,
		CallerNumber:   callerNumber,
		TargetNumber:   identity,
		CustomerNumber: in.From,
		ContactID:      in.ContactID,
		OwnerID:        in.OwnerID,
	}
}
