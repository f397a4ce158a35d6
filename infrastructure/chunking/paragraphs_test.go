package chunking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParagraphs(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "empty document",
			text:     "",
			expected: nil,
		},
		{
			name:     "whitespace only",
			text:     "   \n \t ",
			expected: nil,
		},
		{
			name:     "single paragraph no breaks",
			text:     "one paragraph\nwith a soft line break",
			expected: []string{"one paragraph\nwith a soft line break"},
		},
		{
			name:     "double newline separators",
			text:     "A\n\nB\n\n\nC",
			expected: []string{"A", "B", "C"},
		},
		{
			name:     "blank line containing spaces still separates",
			text:     "first\n   \nsecond",
			expected: []string{"first", "second"},
		},
		{
			name:     "leading and trailing whitespace trimmed",
			text:     "  first  \n\n\tsecond\t\n\n",
			expected: []string{"first", "second"},
		},
		{
			name:     "interior empty segments dropped",
			text:     "\n\n\n\nonly\n\n\n\n",
			expected: []string{"only"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Paragraphs(tt.text))
		})
	}
}

func TestParagraphs_NoEmptyElements(t *testing.T) {
	docs := []string{
		"a\n\nb",
		"\n\n\n",
		"x\n \ny\n\t\nz",
		"plain",
	}
	for _, doc := range docs {
		for _, p := range Paragraphs(doc) {
			assert.NotEmpty(t, strings.TrimSpace(p))
			assert.Equal(t, p, strings.TrimSpace(p))
		}
	}
}

func TestParagraphs_RoundTrip(t *testing.T) {
	original := "First paragraph.\n\nSecond one,\nspanning two lines.\n\n\nThird."
	got := Paragraphs(original)

	rejoined := strings.Join(got, "\n\n")
	normalize := func(s string) string {
		return strings.Join(strings.Fields(s), " ")
	}
	assert.Equal(t, normalize(original), normalize(rejoined))
}
