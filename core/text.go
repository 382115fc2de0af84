package core

import "strings"

// CountContained returns how many of terms occur as literal substrings of text.
// Each term counts at most once. Matching is case-sensitive; callers lower-case
// both sides.
func CountContained(text string, terms []string) int {
	n := 0
	for _, term := range terms {
		if term != "" && strings.Contains(text, term) {
			n++
		}
	}
	return n
}

// ContainsFold reports whether list holds s, ignoring case.
func ContainsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
