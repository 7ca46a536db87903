package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// nonTokenRe matches every character that cannot appear in a search token.
var nonTokenRe = regexp.MustCompile(`[^a-z0-9\s]+`)

// Tokenize splits free text into deduplicated lowercase alphanumeric tokens.
// Diacritics are folded to ASCII first, every other non-alphanumeric
// character becomes whitespace, and tokens of length <= 1 are discarded.
// Token order follows first appearance in the input.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	cleaned := nonTokenRe.ReplaceAllString(foldDiacritics(strings.ToLower(text)), " ")

	var out []string
	seen := make(map[string]struct{})
	for _, tok := range strings.Fields(cleaned) {
		if len(tok) <= 1 {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

// TokenizeAll tokenizes each input independently and returns the flat,
// deduplicated union in first-seen order. Used to build a record's search
// tokens from all of its text and collection fields.
func TokenizeAll(texts ...string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, text := range texts {
		for _, tok := range Tokenize(text) {
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			out = append(out, tok)
		}
	}
	return out
}

// foldDiacritics strips combining marks so "café" tokenizes as "cafe".
func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}
