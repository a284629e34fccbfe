package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOrigins(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "empty", input: "", want: []string{"*"}},
		{name: "wildcard", input: "*", want: []string{"*"}},
		{name: "single", input: "https://app.example.com", want: []string{"https://app.example.com"}},
		{name: "multiple_with_spaces", input: "https://a.com, https://b.com", want: []string{"https://a.com", "https://b.com"}},
		{name: "only_commas", input: " , ,", want: []string{"*"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ParseOrigins(tt.input))
		})
	}
}
