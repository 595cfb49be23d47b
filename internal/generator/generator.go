// Package generator produces post text from an AI backend.
package generator

import (
	"context"
	"strings"
)

// Post is a generated piece of content ready for publication.
type Post struct {
	Content   string `json:"content"`
	WordCount int    `json:"word_count"`
}

// Generator produces a post from its configured prompt. Generation is
// atomic; a failed generation has no side effects.
type Generator interface {
	Generate(ctx context.Context) (*Post, error)
}

// CountWords returns the number of whitespace-separated words in the
// trimmed text.
func CountWords(s string) int {
	return len(strings.Fields(strings.TrimSpace(s)))
}
