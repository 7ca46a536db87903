package normalize

import (
	"regexp"
	"strings"
)

// legalSuffixRe matches trailing legal entity suffixes (LLC, Inc, Corp, ...)
// including punctuated variants. A separator is required before the suffix so
// names ending in the same letters (CISCO, TELCO) survive intact.
var legalSuffixRe = regexp.MustCompile(
	`(?i)[\s,]+(LLC|L\.?L\.?C\.?|INC\.?|INCORPORATED|CORP\.?|CORPORATION|` +
		`CO\.?|COMPANY|LTD\.?|LIMITED|L\.?P\.?|LLP|L\.?L\.?P\.?|` +
		`PLLC|P\.?L\.?L\.?C\.?|P\.?C\.?|DBA|D/B/A)\s*\.?\s*$`)

var multiSpaceRe = regexp.MustCompile(`\s{2,}`)

var namePunctReplacer = strings.NewReplacer(
	",", "",
	".", "",
	"'", "",
	`"`, "",
	"&", " AND ",
	"-", " ",
)

// Name standardizes a company name for full-string comparison: uppercase,
// legal suffix stripped, punctuation removed, whitespace collapsed.
func Name(name string) string {
	n := strings.ToUpper(strings.TrimSpace(name))
	if n == "" {
		return ""
	}
	n = legalSuffixRe.ReplaceAllString(n, "")
	n = namePunctReplacer.Replace(n)
	n = multiSpaceRe.ReplaceAllString(n, " ")
	return strings.TrimSpace(n)
}
