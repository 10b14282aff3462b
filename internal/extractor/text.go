package extractor

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var multiSpace = regexp.MustCompile(` {2,}`)

// NormalizeLines canonicalizes whitespace: CRLF and lone CR become LF, tabs
// and non-breaking spaces become single spaces, every line is trimmed and
// empty lines are dropped.
func NormalizeLines(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\t', '\u00a0', '\u2007', '\u202f', '\f', '\v':
			return ' '
		case '\u200b', '\ufeff':
			return -1
		}
		return r
	}, s)

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(multiSpace.ReplaceAllString(line, " "))
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// Fold strips diacritics (NFD decomposition followed by removal of combining
// marks) so label matching can be accent-insensitive. Case is preserved.
func Fold(s string) string {
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// FoldLower is Fold followed by lower-casing.
func FoldLower(s string) string {
	return strings.ToLower(Fold(s))
}
