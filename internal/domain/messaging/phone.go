package messaging

import "strings"

// domesticPrefix is prepended to bare 9-digit numbers, which are assumed to
// be domestic Polish numbers.
const domesticPrefix = "+48"

// NormalizePhone converts a raw phone number to canonical international form.
// Non-digit characters are stripped first. A 9-digit result gets the domestic
// prefix; anything longer is returned with a plus prefix. Numbers that yield
// fewer than 9 digits are treated as invalid and map to the empty string.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	switch {
	case len(digits) == 9:
		return domesticPrefix + digits
	case len(digits) > 9:
		return "+" + digits
	default:
		return ""
	}
}
