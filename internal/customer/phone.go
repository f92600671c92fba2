package customer

import "strings"

// Normalize reduces any accepted input format to the canonical local form
// 0XXXXXXXXXX. Accepted: bare 10 digits, leading-zero 11 digits, 90-prefixed
// 12 digits and the +90 form. Normalize is idempotent.
func Normalize(phone string) string {
	digits := digitsOf(phone)
	switch {
	case len(digits) == 12 && strings.HasPrefix(digits, "90"):
		digits = digits[2:]
	case len(digits) == 11 && strings.HasPrefix(digits, "0"):
		digits = digits[1:]
	}
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	if digits == "" {
		return ""
	}
	return "0" + digits
}

// canonical is the +90-prefixed comparison form used for record matching.
// Every input format of the same subscriber maps to the same value.
func canonical(phone string) string {
	digits := digitsOf(phone)
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	if digits == "" {
		return ""
	}
	return "+90" + digits
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
