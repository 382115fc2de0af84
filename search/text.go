package search

import (
	"slices"
	"strings"
)

// Stop words dropped from the query before lexical matching
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "i": true, "want": true, "what": true, "how": true,
}

// tokenizeAndFilter splits text into words, lowercases, trims punctuation, and removes stop words
func tokenizeAndFilter(text string) []string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))
		if len(cleaned) > 1 && !stopWords[cleaned] {
			filtered = append(filtered, cleaned)
		}
	}

	return filtered
}

// lexicalTerms returns the query words followed by the expanded terms,
// without duplicates.
func lexicalTerms(query string, expanded []string) []string {
	words := tokenizeAndFilter(query)
	terms := make([]string, 0, len(words)+len(expanded))
	for _, term := range append(words, expanded...) {
		term = strings.ToLower(term)
		if !slices.Contains(terms, term) {
			terms = append(terms, term)
		}
	}
	return terms
}
