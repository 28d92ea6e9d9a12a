package utils

import (
	"regexp"
	"strings"
)

var nonDigit = regexp.MustCompile(`\D`)

// NormalizePhone strips everything but digits and drops the leading US
// country code from an 11-digit number. The result is only usable when it
// is exactly 10 digits; callers must reject anything else.
func NormalizePhone(raw string) string {
	digits := nonDigit.ReplaceAllString(raw, "")
	if len(digits) == 11 && strings.HasPrefix(digits, "1") {
		return digits[1:]
	}
	return digits
}

// FormatPhone renders 10 digits as "(NNN) NNN-NNNN". It does not validate;
// anything that is not exactly 10 digits comes back unchanged.
func FormatPhone(digits string) string {
	if len(digits) != 10 {
		return digits
	}
	return "(" + digits[0:3] + ") " + digits[3:6] + "-" + digits[6:]
}

// LastFour returns the trailing four digits of a phone-ish string, or
// whatever digits it has when there are fewer than four.
func LastFour(s string) string {
	digits := nonDigit.ReplaceAllString(s, "")
	if len(digits) <= 4 {
		return digits
	}
	return digits[len(digits)-4:]
}
