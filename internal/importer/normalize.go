package importer

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripAccents decomposes to NFD, drops combining marks and recomposes,
// so "Localização" and "Localizacao" normalize to the same key.
var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalize trims, strips diacritics and collapses internal whitespace, so
// accented and plain spellings of the same value converge before storage
// and comparison.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	out, _, err := transform.String(stripAccents, s)
	if err != nil {
		out = s
	}
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(out), " ")
}

// NormalizeKey lowercases on top of Normalize, for header and keyword matching
func NormalizeKey(s string) string {
	return strings.ToLower(Normalize(s))
}

// ExtractUsername strips the domain prefix from "DOMAIN\user" logins
func ExtractUsername(user string) string {
	if user == "" {
		return ""
	}
	parts := strings.SplitN(user, `\`, 2)
	if len(parts) == 2 {
		return strings.ToLower(parts[1])
	}
	return strings.ToLower(user)
}
