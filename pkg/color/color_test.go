package color

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	c := New(FgRed, Bold)
	assert.NotNil(t, c)
	assert.Equal(t, []int{FgRed, Bold}, c.params)
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		params   []int
		expected string
	}{
		{
			name:     "single color",
			params:   []int{FgRed},
			expected: "\033[31m",
		},
		{
			name:     "color with bold",
			params:   []int{FgGreen, Bold},
			expected: "\033[32;1m",
		},
		{
			name:     "no params",
			params:   []int{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.params...)
			assert.Equal(t, tt.expected, c.format())
		})
	}
}

func TestSprintf(t *testing.T) {
	c := New(FgGreen, Bold)
	result := c.Sprintf("Case %s is position %d", "case-1", 2)

	assert.Contains(t, result, "Case case-1 is position 2")
	assert.Contains(t, result, "\033[32;1m")
	assert.Contains(t, result, reset)
}

func TestFprintf(t *testing.T) {
	var buf bytes.Buffer
	c := New(FgYellow, Bold)

	c.Fprintf(&buf, "Waiting: %d", 42)

	output := buf.String()
	assert.Contains(t, output, "Waiting: 42")
	assert.Contains(t, output, "\033[33;1m")
	assert.Contains(t, output, reset)
}

func TestPrintf(t *testing.T) {
	c := New(FgCyan)

	assert.NotPanics(t, func() {
		c.Printf("Test %s", "message")
	})
}

func TestColorCodes(t *testing.T) {
	tests := []struct {
		name  string
		code  int
		color string
	}{
		{"FgRed", FgRed, "\033[31m"},
		{"FgGreen", FgGreen, "\033[32m"},
		{"FgYellow", FgYellow, "\033[33m"},
		{"FgCyan", FgCyan, "\033[36m"},
		{"FgWhite", FgWhite, "\033[37m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.code)
			assert.Equal(t, tt.color, c.format())
		})
	}
}

func TestReset(t *testing.T) {
	assert.Equal(t, "\033[0m", reset)
}
