package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatMode(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", "Unknown mode"},
		{"build", "Build"},
		{"BUILD", "Build"},
		{"plan", "Plan"},
		{"écrire", "Écrire"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FormatMode(c.in), "mode %q", c.in)
	}
}

func TestFormatModel(t *testing.T) {
	cases := []struct{ in, want string }{
		{"", "Unknown model"},
		{"claude-3-5-sonnet", "Claude 3.5 Sonnet"},
		{"gpt-4o", "Gpt 4o"},
		{"sonnet", "Sonnet"},
		{"3-5", "3.5"},
		{"-edge-", "Edge"},
		{"big-bench", "Big Bench"},
		{"ølmo-2", "Ølmo 2"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FormatModel(c.in), "model %q", c.in)
	}
}
