package routing

import (
	"fmt"
	"strings"

	"github.com/troikatech/call-bridge/pkg/utils"
)

// Directory is the immutable agent identity directory: each agent
// identity (lowercased email) owns exactly one E.164 caller number, and
// each caller number belongs to at most one identity so inbound routing
// stays unambiguous. Built once at startup and passed by reference;
// never mutated afterwards, so concurrent lookups need no locking.
type Directory struct {
	numberByIdentity map[string]string
	identityByNumber map[string]string
}

// NewDirectory builds a directory from identity -> number entries.
// Identities are normalized to lowercase. A caller number shared by two
// identities is a configuration error.
func NewDirectory(entries map[string]string) (*Directory, error) {
	d := &Directory{
		numberByIdentity: make(map[string]string, len(entries)),
		identityByNumber: make(map[string]string, len(entries)),
	}

	for identity, number := range entries {
		identity = strings.ToLower(strings.TrimSpace(identity))
		number = strings.TrimSpace(number)

		if identity == "" {
			return nil, fmt.Errorf("agent directory: empty identity")
		}
		if !utils.ValidateE164(number) {
			return nil, fmt.Errorf("agent directory: %s: caller number %q is not E.164", identity, number)
		}
		if existing, ok := d.identityByNumber[number]; ok {
			return nil, fmt.Errorf("agent directory: caller number %s assigned to both %s and %s", number, existing, identity)
		}

		d.numberByIdentity[identity] = number
		d.identityByNumber[number] = identity
	}

	return d, nil
}

// ParseDirectorySpec parses "identity=+number,identity=+number" pairs
func ParseDirectorySpec(spec string) (map[string]string, error) {
	entries := make(map[string]string)
	for _, pair := range strings.Split(spec, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		identity, number, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("agent directory: malformed entry %q", pair)
		}
		entries[strings.TrimSpace(identity)] = strings.TrimSpace(number)
	}
	return entries, nil
}

// NumberFor returns the caller number configured for an identity.
// Absence is a normal, expected result the caller must branch on.
func (d *Directory) NumberFor(identity string) (string, bool) {
	number, ok := d.numberByIdentity[strings.ToLower(strings.TrimSpace(identity))]
	return number, ok
}

// IdentityFor returns the identity owning a caller number
func (d *Directory) IdentityFor(number string) (string, bool) {
	identity, ok := d.identityByNumber[strings.TrimSpace(number)]
	return identity, ok
}

// Len returns the number of configured agents
func (d *Directory) Len() int {
	return len(d.numberByIdentity)
}
