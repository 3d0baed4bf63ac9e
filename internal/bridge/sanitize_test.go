package bridge

import (
	"regexp"
	"testing"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "spaces become underscores",
			input:    "Living Room",
			expected: "Living_Room",
		},
		{
			name:     "punctuation becomes underscores",
			input:    "Kim's Office (2nd floor)",
			expected: "Kim_s_Office__2nd_floor_",
		},
		{
			name:     "unicode becomes underscores",
			input:    "Küche",
			expected: "K_che",
		},
		{
			name:     "allowed characters pass through",
			input:    "Zone_1-B",
			expected: "Zone_1-B",
		},
		{
			name:     "leading digit gets prefixed",
			input:    "2nd Bedroom",
			expected: "z2nd_Bedroom",
		},
		{
			name:     "empty name falls back",
			input:    "",
			expected: "unnamed",
		},
		{
			name:     "only disallowed characters still non-empty",
			input:    "日本語",
			expected: "___",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeName(tt.input)
			if result != tt.expected {
				t.Errorf("SanitizeName(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestSanitizeName_AlwaysValid(t *testing.T) {
	valid := regexp.MustCompile(`^[A-Za-z_-][A-Za-z0-9_-]*$`)

	inputs := []string{
		"", " ", "42", "9", "a b c", "---", "___", "ä", "🎵🎵",
		"Living Room", "Salle à manger", "1", "0_zero", "Ω",
	}
	for _, in := range inputs {
		out := SanitizeName(in)
		if !valid.MatchString(out) {
			t.Errorf("SanitizeName(%q) = %q, not a valid identifier", in, out)
		}
	}
}
