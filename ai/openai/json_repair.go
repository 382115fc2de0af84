package openai

import "strings"

// repairJSON fixes the formatting slips small chat models make most often:
// a key missing its opening quote (`, label":`) and a trailing comma before
// a closing bracket. Text inside string literals is left alone.
func repairJSON(s string) string {
	src := []rune(s)
	var out strings.Builder
	out.Grow(len(s) + 8)

	inString := false
	for i := 0; i < len(src); i++ {
		ch := src[i]

		if inString {
			out.WriteRune(ch)
			if ch == '\\' && i+1 < len(src) {
				i++
				out.WriteRune(src[i])
			} else if ch == '"' {
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
			out.WriteRune(ch)
		case ',':
			if next := nextNonSpace(src, i+1); next < len(src) && (src[next] == '}' || src[next] == ']') {
				continue
			}
			out.WriteRune(ch)
			i = copyKey(src, i+1, &out) - 1
		case '{':
			out.WriteRune(ch)
			i = copyKey(src, i+1, &out) - 1
		default:
			out.WriteRune(ch)
		}
	}
	return out.String()
}

// copyKey writes the whitespace after position start and, when it is followed
// by a bare word closed with `":`, the word with its missing opening quote.
// It returns the position of the first rune it did not consume.
func copyKey(src []rune, start int, out *strings.Builder) int {
	i := start
	for i < len(src) && isSpace(src[i]) {
		out.WriteRune(src[i])
		i++
	}
	if i >= len(src) || !isLetter(src[i]) {
		return i
	}

	end := i
	for end < len(src) && (isLetter(src[end]) || src[end] == '_') {
		end++
	}
	if end+1 < len(src) && src[end] == '"' && src[end+1] == ':' {
		out.WriteRune('"')
		out.WriteString(string(src[i:end]))
		out.WriteRune('"')
		return end + 1
	}
	return i
}

func nextNonSpace(src []rune, i int) int {
	for i < len(src) && isSpace(src[i]) {
		i++
	}
	return i
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}
