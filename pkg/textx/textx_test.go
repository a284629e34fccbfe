package textx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain", input: "hello world", expected: "hello world"},
		{name: "trims", input: "  hello  ", expected: "hello"},
		{name: "strips_nul", input: "he\x00llo", expected: "hello"},
		{name: "keeps_newlines_tabs", input: "a\n\tb", expected: "a\n\tb"},
		{name: "strips_del", input: "a\x7fb", expected: "ab"},
		{name: "only_control", input: "\x00\x01\x02", expected: ""},
		{name: "unicode_kept", input: "héllo 世界", expected: "héllo 世界"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, SanitizeText(tt.input))
		})
	}
}
