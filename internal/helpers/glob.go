package helpers

import "strings"

type GlobWildcard uint8

const (
	GlobNone GlobWildcard = iota
	GlobAllExceptSlash
	GlobAllIncludingSlash
)

type GlobPart struct {
	Prefix   string
	Wildcard GlobWildcard
}

// The returned array will always be at least one element. If there are no
// wildcards then it will be exactly one element, and if there are wildcards
// then it will be more than one element.
func ParseGlobPattern(text string) (pattern []GlobPart) {
	for {
		star := strings.IndexByte(text, '*')
		if star < 0 {
			pattern = append(pattern, GlobPart{Prefix: text})
			break
		}
		count := 1
		for star+count < len(text) && text[star+count] == '*' {
			count++
		}
		wildcard := GlobAllExceptSlash

		// Allow both "/" and "\" as slashes
		if count > 1 && (star == 0 || text[star-1] == '/' || text[star-1] == '\\') &&
			(star+count == len(text) || text[star+count] == '/' || text[star+count] == '\\') {
			wildcard = GlobAllIncludingSlash // A "globstar" path segment
		}

		pattern = append(pattern, GlobPart{Prefix: text[:star], Wildcard: wildcard})
		text = text[star+count:]
	}
	return
}

func GlobPatternToString(pattern []GlobPart) string {
	sb := strings.Builder{}
	for _, part := range pattern {
		sb.WriteString(part.Prefix)
		switch part.Wildcard {
		case GlobAllExceptSlash:
			sb.WriteByte('*')
		case GlobAllIncludingSlash:
			sb.WriteString("**")
		}
	}
	return sb.String()
}

// Module ids are matched against whole patterns. A "*" never crosses a slash
// while a "**" path segment does.
func GlobMatches(pattern []GlobPart, text string) bool {
	if len(pattern) == 0 {
		return text == ""
	}
	part := pattern[0]
	if !strings.HasPrefix(text, part.Prefix) {
		return false
	}
	text = text[len(part.Prefix):]

	switch part.Wildcard {
	case GlobNone:
		return text == "" && len(pattern) == 1

	case GlobAllExceptSlash:
		for i := 0; i <= len(text); i++ {
			if GlobMatches(pattern[1:], text[i:]) {
				return true
			}
			if i < len(text) && (text[i] == '/' || text[i] == '\\') {
				break
			}
		}

	case GlobAllIncludingSlash:
		// "a/**/b" also matches "a/b"
		if len(pattern) > 1 && strings.HasPrefix(pattern[1].Prefix, "/") {
			rest := append([]GlobPart{}, pattern[1:]...)
			rest[0].Prefix = rest[0].Prefix[1:]
			if GlobMatches(rest, text) {
				return true
			}
		}
		for i := 0; i <= len(text); i++ {
			if GlobMatches(pattern[1:], text[i:]) {
				return true
			}
		}
	}
	return false
}
