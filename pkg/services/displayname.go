package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/zenithroofing/lead-service/pkg/utils"
)

// BuildDisplayName makes a contact name unique enough to survive the CRM's
// duplicate detection while staying readable, e.g.
// "John Smith • Escondido 92025 • #6163". phone is the 10-digit normalized
// value.
func BuildDisplayName(base, city, zip, phone string) string {
	var bits []string
	if c := strings.TrimSpace(city); c != "" {
		bits = append(bits, c)
	}
	if z := strings.TrimSpace(zip); z != "" {
		bits = append(bits, z)
	}
	if l4 := utils.LastFour(phone); l4 != "" {
		bits = append(bits, "#"+l4)
	}

	parts := []string{base}
	if len(bits) > 0 {
		parts = append(parts, strings.Join(bits, " "))
	}
	return collapseSpaces(strings.Join(parts, " • "))
}

// RetryDisplayName appends a millisecond timestamp, which is strictly
// stronger than the readable disambiguator and always differs from the
// first attempt.
func RetryDisplayName(name string, now time.Time) string {
	return fmt.Sprintf("%s • %d", name, now.UnixMilli())
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
