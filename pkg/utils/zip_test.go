package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidZip(t *testing.T) {
	valid := []string{"92025", "92025-1234", "00001"}
	for _, z := range valid {
		assert.True(t, ValidZip(z), "expected %q to be valid", z)
	}

	invalid := []string{"920", "abcde", "", "92025-12", "92025 1234", "920251234"}
	for _, z := range invalid {
		assert.False(t, ValidZip(z), "expected %q to be invalid", z)
	}
}
