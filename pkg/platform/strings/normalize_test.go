package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollapseSpace(t *testing.T) {
	assert.Equal(t, "Acme Auto", CollapseSpace("  Acme \t Auto  "))
	assert.Equal(t, "", CollapseSpace(" \n "))
	assert.Equal(t, "a b c", CollapseSpace("a  b c"))
}

func TestNormalizeList(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		fold     bool
		expected []string
	}{
		{name: "nil stays nil", input: nil, expected: nil},
		{name: "empty slice", input: []string{}, expected: []string{}},
		{
			name:     "drops blanks and duplicates preserving order",
			input:    []string{"brakes", " ", "tyres", "brakes"},
			expected: []string{"brakes", "tyres"},
		},
		{
			name:     "case sensitive without fold",
			input:    []string{"Brakes", "brakes"},
			expected: []string{"Brakes", "brakes"},
		},
		{
			name:     "fold lowercases and dedupes",
			input:    []string{" Brakes", "brakes", "EV  Repair"},
			fold:     true,
			expected: []string{"brakes", "ev repair"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeList(tt.input, tt.fold))
		})
	}
}

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(""))
	assert.True(t, IsBlank(" \t"))
	assert.False(t, IsBlank(" x "))
}
