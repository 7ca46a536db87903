// Package normalize converts raw identity signals (websites, phones, social
// URLs, free-text names) into the canonical forms shared by ingestion and
// query paths.
package normalize

import (
	"net/url"
	"regexp"
	"strings"
)

var nonDigitRe = regexp.MustCompile(`\D+`)

// Phone strips every non-digit character from a phone string.
// Empty or all-garbage input yields "".
func Phone(s string) string {
	return nonDigitRe.ReplaceAllString(s, "")
}

// brokenSchemeRe matches one or more glued scheme prefixes at the start of a
// URL, including malformed variants like "https://http//" or "http//".
var brokenSchemeRe = regexp.MustCompile(`^(?:https?[:/]+)+`)

// Website canonicalizes a website string to a bare lowercase domain:
// no scheme, no path, no leading "www.". Malformed or duplicated scheme
// prefixes are repaired before parsing. Input that does not look like a URL
// is treated as a bare domain token; a token without a dot gets ".com"
// appended. The function is idempotent over its own output. Returns "" when
// no usable domain can be produced.
func Website(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	// Collapse any run of scheme fragments ("https://https://", "http//",
	// "https://http//") down to nothing, then re-add a single scheme so
	// url.Parse sees a well-formed absolute URL.
	s = brokenSchemeRe.ReplaceAllString(s, "")
	if s == "" {
		return ""
	}

	host := ""
	if u, err := url.Parse("https://" + s); err == nil {
		host = u.Hostname()
	}
	if host == "" {
		// Bare domain-like token: keep everything before the first slash.
		host = s
		if i := strings.IndexByte(host, '/'); i >= 0 {
			host = host[:i]
		}
	}

	host = strings.TrimSuffix(host, ".")
	if host == "" {
		return ""
	}
	if !strings.Contains(host, ".") {
		host += ".com"
	}
	return strings.TrimPrefix(host, "www.")
}

// FacebookHandle returns the last path segment of a facebook URL or handle
// string, ignoring trailing slashes.
func FacebookHandle(s string) string {
	s = strings.TrimRight(strings.TrimSpace(s), "/")
	if s == "" {
		return ""
	}
	parts := strings.Split(s, "/")
	return parts[len(parts)-1]
}

// PhoneSuffix returns the last 7 digits of a normalized phone string, or ""
// when fewer than 7 digits are available.
func PhoneSuffix(digits string) string {
	if len(digits) < 7 {
		return ""
	}
	return digits[len(digits)-7:]
}
