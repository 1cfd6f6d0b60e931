// Package correlate carries call context across independent webhook
// deliveries. The platform's initial call-control request and the later
// status/recording callbacks are unrelated HTTP requests with no shared
// session; the only channel between them is the callback URL the platform
// was told to invoke, so context rides on its query string.
package correlate

import (
	"net/url"
	"strings"
)

const (
	paramContactID     = "contactId"
	paramOwnerID       = "ownerId"
	paramCustomerPhone = "customerPhone"
	paramIsIncoming    = "isIncoming"
)

// Context is the subset of call context that survives the round trip
// through the telephony platform. Every field is optional.
type Context struct {
	ContactID     string
	OwnerID       string
	CustomerPhone string
	IsIncoming    bool
}

// IsZero reports whether no field carries a value
func (c Context) IsZero() bool {
	return c.ContactID == "" && c.OwnerID == "" && c.CustomerPhone == "" && !c.IsIncoming
}

// Encode appends the context to a callback URL's query string.
// Empty fields are omitted entirely.
func (c Context) Encode(callbackURL string) string {
	u, err := url.Parse(callbackURL)
	if err != nil {
		return callbackURL
	}

	q := u.Query()
	if c.ContactID != "" {
		q.Set(paramContactID, c.ContactID)
	}
	if c.OwnerID != "" {
		q.Set(paramOwnerID, c.OwnerID)
	}
	if c.CustomerPhone != "" {
		q.Set(paramCustomerPhone, c.CustomerPhone)
	}
	if c.IsIncoming {
		q.Set(paramIsIncoming, "true")
	}
	u.RawQuery = q.Encode()

	return u.String()
}

// Decode recovers a context from callback query parameters. Missing keys
// are treated as unknown, and the literal string "undefined" is
// equivalent to absent (the platform echoes it for unset template values).
func Decode(q url.Values) Context {
	return Context{
		ContactID:     cleanValue(q.Get(paramContactID)),
		OwnerID:       cleanValue(q.Get(paramOwnerID)),
		CustomerPhone: cleanValue(q.Get(paramCustomerPhone)),
		IsIncoming:    strings.EqualFold(cleanValue(q.Get(paramIsIncoming)), "true"),
	}
}

func cleanValue(v string) string {
	if v == "undefined" || v == "null" {
		return ""
	}
	return v
}
