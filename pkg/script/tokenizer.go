package script

import "strings"

// token is one scanned word.
type token struct {
	text   string
	start  int
	quoted bool
	// crossed is set when a newline was skipped before the word.
	crossed bool
}

func isSeparator(c byte) bool {
	return c <= ' ' || c == '(' || c == ')'
}

// scan reads the word at or after pos and returns it with the offset just
// past it. An exhausted buffer yields an empty token and len(text).
func scan(text string, pos int) (token, int) {
	var tok token
	if pos < 0 {
		pos = 0
	}
	for pos < len(text) && isSeparator(text[pos]) {
		if text[pos] == '\n' {
			tok.crossed = true
		}
		pos++
	}
	if pos >= len(text) {
		return tok, len(text)
	}
	tok.start = pos

	if text[pos] == '"' {
		tok.quoted = true
		end := pos + 1
		for end < len(text) && text[end] != '"' && text[end] != '\n' {
			end++
		}
		tok.text = text[pos+1 : end]
		if end < len(text) && text[end] == '"' {
			return tok, end + 1
		}
		// unterminated: the rest of the line is the word
		tok.text = strings.TrimRight(tok.text, "\r")
		return tok, end
	}

	end := pos
	for end < len(text) && !isSeparator(text[end]) {
		end++
	}
	tok.text = text[pos:end]
	return tok, end
}

// NextWord returns the next word in text at or after offset, and the offset
// just past it. Whitespace, newlines and parentheses separate words; a quoted
// segment is one word without its quotes. When the buffer is exhausted the
// word is empty and the offset is len(text).
func NextWord(text string, offset int) (string, int) {
	tok, next := scan(text, offset)
	return tok.text, next
}

// nextLine returns the offset of the newline ending the line containing pos,
// or len(text).
func nextLine(text string, pos int) int {
	if pos >= len(text) {
		return len(text)
	}
	if i := strings.IndexByte(text[pos:], '\n'); i >= 0 {
		return pos + i
	}
	return len(text)
}

// standardize prepares a word for command lookup.
func standardize(word string) string {
	return asciiLower(strings.ReplaceAll(word, "_", ""))
}

// asciiLower lowercases ASCII letters only, keeping byte offsets stable for
// Latin-1 script text.
func asciiLower(s string) string {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 'A' && c <= 'Z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if b[j] >= 'A' && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return s
}

// Find returns the offset of the first case-insensitive occurrence of needle
// in text that ends at a separator and is not commented out by a preceding
// "//" on the same line. It returns -1 when there is none.
func Find(text, needle string) int {
	return find(text, asciiLower(text), needle)
}

func find(text, lower, needle string) int {
	if needle == "" {
		return -1
	}
	needle = asciiLower(needle)
	from := 0
	for from < len(lower) {
		i := strings.Index(lower[from:], needle)
		if i < 0 {
			return -1
		}
		i += from
		end := i + len(needle)
		if end < len(text) && text[end] > ' ' {
			from = i + 1
			continue
		}
		if commented(text, i) {
			from = i + 1
			continue
		}
		return i
	}
	return -1
}

// commented reports whether a "//" precedes pos on its line.
func commented(text string, pos int) bool {
	start := strings.LastIndexByte(text[:pos], '\n') + 1
	return strings.Contains(text[start:pos], "//")
}
