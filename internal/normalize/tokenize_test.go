package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize_LowercaseAlnum(t *testing.T) {
	assert.Equal(t, []string{"acme", "holdings", "2024"}, Tokenize("Acme-Holdings (2024)"))
}

func TestTokenize_DropsShortTokens(t *testing.T) {
	// "a" and single digits are discarded, length-2 tokens survive.
	assert.Equal(t, []string{"co", "op"}, Tokenize("a co 1 op"))
}

func TestTokenize_Deduplicates(t *testing.T) {
	assert.Equal(t, []string{"acme", "inc"}, Tokenize("Acme acme ACME Inc"))
}

func TestTokenize_Empty(t *testing.T) {
	assert.Nil(t, Tokenize(""))
	assert.Nil(t, Tokenize("!!! ??"))
}

func TestTokenize_FoldsDiacritics(t *testing.T) {
	assert.Equal(t, []string{"cafe", "munchen"}, Tokenize("Café München"))
}

func TestTokenize_PhoneDigits(t *testing.T) {
	// Digit runs inside phone numbers become searchable tokens.
	assert.Equal(t, []string{"212", "555", "0199"}, Tokenize("(212) 555-0199"))
}

func TestTokenizeAll_FlatUnion(t *testing.T) {
	got := TokenizeAll("Acme Inc", "acme.com", "12 Main St")
	assert.Equal(t, []string{"acme", "inc", "com", "12", "main", "st"}, got)
}

func TestTokenizeAll_AllEmpty(t *testing.T) {
	assert.Nil(t, TokenizeAll("", ""))
}
