package otp

import (
	"strings"
	"unicode"
)

// CanonicalPhone normalizes a raw phone number once at the service boundary:
// formatting characters (spaces, hyphens, parentheses, dots) are stripped, a
// leading "+" is kept, and bare national numbers get the +91 country code.
// All store lookups and provider calls use the canonical form.
func CanonicalPhone(raw string) string {
	var b strings.Builder
	for i, r := range raw {
		if unicode.IsDigit(r) || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	phone := b.String()
	if phone == "" || phone == "+" {
		return ""
	}

	if strings.HasPrefix(phone, "+") {
		return phone
	}
	if len(phone) == 12 && strings.HasPrefix(phone, "91") {
		return "+" + phone
	}
	return "+91" + phone
}

// DigitCount returns the number of digits in a raw phone string, used for
// format validation in the HTTP layer (at least 10 digits required).
func DigitCount(raw string) int {
	count := 0
	for _, r := range raw {
		if unicode.IsDigit(r) {
			count++
		}
	}
	return count
}
