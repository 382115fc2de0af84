package openai

import "strings"

// collapseWhitespace joins the fields of s with single spaces.
// Punctuation is kept; it helps the model find span boundaries.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// isLetter returns true if the rune is an ASCII letter.
func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
