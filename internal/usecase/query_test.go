package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"whitespace only", "   \t ", ""},
		{"trims ends", "  towel ", "towel"},
		{"collapses inner runs", "fog   linen\ttowel", "fog linen towel"},
		{"keeps case", "Fog Linen", "Fog Linen"},
		{"keeps punctuation", "t-shirt (xl)", "t-shirt (xl)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeQuery(tt.input))
		})
	}
}

func TestNoResultsMessage(t *testing.T) {
	assert.Equal(t, "No products found with the name xyz-no-match", NoResultsMessage("xyz-no-match"))
}
