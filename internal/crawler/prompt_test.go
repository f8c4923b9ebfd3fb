package crawler

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsolePrompter(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"sure\n", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			p := NewConsolePrompter(strings.NewReader(tt.input), &out)

			got, err := p.Confirm("Continue?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "Continue? (y/N) ", out.String())
		})
	}
}

func TestParseFailurePolicy(t *testing.T) {
	for _, s := range []string{"abort", "continue", "prompt"} {
		p, err := ParseFailurePolicy(s)
		require.NoError(t, err)
		assert.Equal(t, FailurePolicy(s), p)
	}

	p, err := ParseFailurePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyAbort, p)

	_, err = ParseFailurePolicy("retry")
	assert.Error(t, err)
}
