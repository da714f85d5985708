package workflows

import "strings"

const maxPhoneDigits = 11

// FormatPhone reshapes a phone number into ddd-dddd-dddd while it is being typed.
// Non-digits are dropped and anything past 11 digits is cut off.
func FormatPhone(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > maxPhoneDigits {
		digits = digits[:maxPhoneDigits]
	}

	switch {
	case len(digits) <= 3:
		return digits
	case len(digits) <= 7:
		return digits[:3] + "-" + digits[3:]
	default:
		return digits[:3] + "-" + digits[3:7] + "-" + digits[7:]
	}
}
