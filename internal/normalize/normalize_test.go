package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhone_StripsNonDigits(t *testing.T) {
	assert.Equal(t, "2125550199", Phone("(212) 555-0199"))
	assert.Equal(t, "18005551234", Phone("+1 800 555 1234"))
}

func TestPhone_Empty(t *testing.T) {
	assert.Equal(t, "", Phone(""))
	assert.Equal(t, "", Phone("no digits here"))
}

func TestWebsite_SchemeAndWWW(t *testing.T) {
	assert.Equal(t, "example.com", Website("HTTPS://WWW.Example.com"))
	assert.Equal(t, "example.com", Website("http://example.com/about/team"))
}

func TestWebsite_BareToken(t *testing.T) {
	assert.Equal(t, "example.com", Website("example"))
	assert.Equal(t, "example.com", Website("example.com"))
}

func TestWebsite_RepairsBrokenSchemes(t *testing.T) {
	assert.Equal(t, "example.com", Website("https://https://example.com/about"))
	assert.Equal(t, "example.com", Website("https://http//example.com"))
	assert.Equal(t, "example.com", Website("http//example.com"))
}

func TestWebsite_Idempotent(t *testing.T) {
	inputs := []string{
		"HTTPS://WWW.Example.com",
		"example",
		"https://https://example.com/about",
		"www.acme.co.uk/contact",
	}
	for _, in := range inputs {
		once := Website(in)
		assert.Equal(t, once, Website(once), "input %q", in)
	}
}

func TestWebsite_Unresolvable(t *testing.T) {
	assert.Equal(t, "", Website(""))
	assert.Equal(t, "", Website("   "))
	assert.Equal(t, "", Website("https://"))
}

func TestWebsite_StripsPort(t *testing.T) {
	assert.Equal(t, "example.com", Website("https://example.com:8443/x"))
}

func TestFacebookHandle_LastSegment(t *testing.T) {
	assert.Equal(t, "acmeinc", FacebookHandle("https://www.facebook.com/acmeinc"))
	assert.Equal(t, "acmeinc", FacebookHandle("https://facebook.com/pages/acmeinc/"))
	assert.Equal(t, "acmeinc", FacebookHandle("acmeinc"))
}

func TestFacebookHandle_Empty(t *testing.T) {
	assert.Equal(t, "", FacebookHandle(""))
	assert.Equal(t, "", FacebookHandle("///"))
}

func TestPhoneSuffix_LastSeven(t *testing.T) {
	assert.Equal(t, "5550199", PhoneSuffix("2125550199"))
	assert.Equal(t, "5550199", PhoneSuffix("5550199"))
}

func TestPhoneSuffix_TooShort(t *testing.T) {
	assert.Equal(t, "", PhoneSuffix("555019"))
	assert.Equal(t, "", PhoneSuffix(""))
}

func TestName_StripsLegalSuffixAndPunctuation(t *testing.T) {
	assert.Equal(t, "ACME ADVISORS", Name("Acme Advisors LLC"))
	assert.Equal(t, "ACME ADVISORS", Name("Acme Advisors, Inc."))
	assert.Equal(t, "SMITH AND JONES", Name("Smith & Jones"))
	assert.Equal(t, "WELLS FARGO", Name("Wells-Fargo"))
}

func TestName_Empty(t *testing.T) {
	assert.Equal(t, "", Name(""))
	assert.Equal(t, "", Name("   "))
}
