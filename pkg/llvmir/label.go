package llvmir

import "strings"

// NormalizeLabel returns the canonical block name for a label definition
// (`name:` captured without the colon) or a label reference (`%name`). The
// sigil is dropped and quoted names are unquoted, so `%foo`, `%"foo"`, `foo`
// and `"foo"` all name the same block.
func NormalizeLabel(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "%")
	return unquote(s)
}

// NormalizeGlobal returns the canonical function name for `@name`.
func NormalizeGlobal(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "@")
	return unquote(s)
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// StripComment truncates line at the first `;` that is not inside a quoted
// string and drops trailing whitespace.
func StripComment(line string) string {
	inQuote := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			inQuote = !inQuote
		case ';':
			if !inQuote {
				return strings.TrimRight(line[:i], " \t\r")
			}
		}
	}
	return strings.TrimRight(line, " \t\r")
}
