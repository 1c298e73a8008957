package util

import (
	"reflect"
	"testing"
)

func TestSplitCSV(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: nil,
		},
		{
			name:     "single value",
			input:    "baseline",
			expected: []string{"baseline"},
		},
		{
			name:     "multiple values",
			input:    "baseline,high1,high2",
			expected: []string{"baseline", "high1", "high2"},
		},
		{
			name:     "with whitespace",
			input:    " baseline , high1 ",
			expected: []string{"baseline", "high1"},
		},
		{
			name:     "stray commas",
			input:    ",baseline,,high1,",
			expected: []string{"baseline", "high1"},
		},
		{
			name:     "only separators and whitespace",
			input:    " , , ",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SplitCSV(tt.input)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("SplitCSV(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}
