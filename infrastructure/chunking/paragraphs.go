// Package chunking splits documents into paragraph-level retrievable units.
package chunking

import (
	"regexp"
	"strings"
)

// paragraphBreak matches a run of two or more newlines, tolerating horizontal
// whitespace between them (a line of spaces still separates paragraphs).
var paragraphBreak = regexp.MustCompile(`\n[ \t]*\n[\s]*`)

// Paragraphs splits a document on blank-line paragraph breaks, trims each
// segment, and drops everything empty or whitespace-only. It is a pure
// function; a document with no blank lines yields a single segment and an
// empty or all-whitespace document yields none.
func Paragraphs(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	segments := paragraphBreak.Split(text, -1)
	paragraphs := make([]string, 0, len(segments))
	for _, segment := range segments {
		trimmed := strings.TrimSpace(segment)
		if trimmed == "" {
			continue
		}
		paragraphs = append(paragraphs, trimmed)
	}
	return paragraphs
}
