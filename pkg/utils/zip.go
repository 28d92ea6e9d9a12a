package utils

import "regexp"

var zipPattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

// ValidZip reports whether v is a 5-digit or ZIP+4 US postal code.
func ValidZip(v string) bool {
	return zipPattern.MatchString(v)
}
