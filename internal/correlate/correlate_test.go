package correlate

import (
	"net/url"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		ctx  Context
	}{
		{
			name: "all fields",
			ctx: Context{
				ContactID:     "c-42",
				OwnerID:       "o-7",
				CustomerPhone: "+15145550123",
				IsIncoming:    true,
			},
		},
		{
			name: "contact only",
			ctx:  Context{ContactID: "c-42"},
		},
		{
			name: "empty",
			ctx:  Context{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded := tt.ctx.Encode("https://bridge.example.com/call-status")
			u, err := url.Parse(encoded)
			if err != nil {
				t.Fatalf("Encode() produced invalid URL: %v", err)
			}
			got := Decode(u.Query())
			if got != tt.ctx {
				t.Errorf("Decode(Encode()) = %+v, want %+v", got, tt.ctx)
			}
		})
	}
}

func TestEncodeOmitsEmptyFields(t *testing.T) {
	encoded := Context{ContactID: "c-42"}.Encode("https://bridge.example.com/call-status")
	u, err := url.Parse(encoded)
	if err != nil {
		t.Fatalf("Encode() produced invalid URL: %v", err)
	}
	q := u.Query()
	if q.Has("ownerId") || q.Has("customerPhone") || q.Has("isIncoming") {
		t.Errorf("Encode() emitted empty fields: %v", q)
	}
	if q.Get("contactId") != "c-42" {
		t.Errorf("contactId = %q, want c-42", q.Get("contactId"))
	}
}

func TestEncodePreservesExistingQuery(t *testing.T) {
	encoded := Context{ContactID: "c-42"}.Encode("https://bridge.example.com/voice?clientPhone=%2B15145550123")
	u, err := url.Parse(encoded)
	if err != nil {
		t.Fatalf("Encode() produced invalid URL: %v", err)
	}
	if u.Query().Get("clientPhone") != "+15145550123" {
		t.Errorf("existing query lost: %q", u.RawQuery)
	}
}

func TestDecodeUndefinedValues(t *testing.T) {
	// Unset template values arrive as the literal string "undefined"
	q := url.Values{}
	q.Set("contactId", "c-42")
	q.Set("ownerId", "undefined")
	q.Set("customerPhone", "null")
	q.Set("isIncoming", "undefined")

	got := Decode(q)
	want := Context{ContactID: "c-42"}
	if got != want {
		t.Errorf("Decode() = %+v, want %+v", got, want)
	}
}

func TestIsZero(t *testing.T) {
	if !(Context{}).IsZero() {
		t.Error("empty context should be zero")
	}
	if (Context{IsIncoming: true}).IsZero() {
		t.Error("context with isIncoming should not be zero")
	}
	if (Context{OwnerID: "o-7"}).IsZero() {
		t.Error("context with ownerId should not be zero")
	}
}
