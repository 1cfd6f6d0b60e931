package utils

import (
	"regexp"
	"strings"
)

var (
	e164Re  = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)
	digitRe = regexp.MustCompile(`[^\d+]`)
	maskRe  = regexp.MustCompile(`^(\+)(\d{1,3})(\d{3})(\d+)$`)
)

// MaskPhoneNumber masks a phone number for logging, keeping the prefix
// and the last four digits
// Example: +14506001665 -> +145060•1665
func MaskPhoneNumber(phone string) string {
	if phone == "" {
		return ""
	}

	phone = strings.TrimSpace(phone)

	matches := maskRe.FindStringSubmatch(phone)
	if len(matches) == 5 {
		countryCode := matches[2]
		first3 := matches[3]
		lastDigits := matches[4]

		if len(lastDigits) >= 4 {
			last4 := lastDigits[len(lastDigits)-4:]
			masked := strings.Repeat("•", len(lastDigits)-4)
			return "+" + countryCode + first3 + masked + last4
		}
	}

	// Fallback: mask all but last 4 characters
	if len(phone) > 4 {
		masked := strings.Repeat("•", len(phone)-4)
		return masked + phone[len(phone)-4:]
	}

	return strings.Repeat("•", len(phone))
}

// ValidateE164 validates E.164 phone number format
func ValidateE164(phone string) bool {
	return e164Re.MatchString(phone)
}

// NormalizePhone normalizes a phone number to E.164 format.
// Numbers without a country code are assumed North American (+1).
func NormalizePhone(phone string) string {
	cleaned := digitRe.ReplaceAllString(phone, "")

	if !strings.HasPrefix(cleaned, "+") {
		if strings.HasPrefix(cleaned, "1") && len(cleaned) == 11 {
			cleaned = "+" + cleaned
		} else {
			cleaned = "+1" + cleaned
		}
	}

	return cleaned
}
