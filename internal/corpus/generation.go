package corpus

import (
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/resolve-cli/internal/normalize"
)

// Generation is one complete, internally consistent corpus snapshot plus the
// three derived indexes. All four structures are built together and published
// as a single unit; a Generation is never mutated after construction.
type Generation struct {
	ID        string
	CreatedAt time.Time

	// Records preserves ingestion order and is the iteration source for
	// full-corpus scans (substring and social-link conditions).
	Records []CompanyRecord

	byDomain      map[string]int      // domain -> index into Records
	byToken       map[string][]string // token -> domains, first-seen order
	byPhoneSuffix map[string][]string // last-7-digits -> domains
}

// NewGeneration builds a generation with a fresh ID.
func NewGeneration(records []CompanyRecord) *Generation {
	return RestoreGeneration(uuid.New().String(), time.Now().UTC(), records)
}

// RestoreGeneration rebuilds a generation's indexes from persisted records,
// keeping the original generation identity.
func RestoreGeneration(id string, createdAt time.Time, records []CompanyRecord) *Generation {
	g := &Generation{
		ID:            id,
		CreatedAt:     createdAt,
		Records:       records,
		byDomain:      make(map[string]int, len(records)),
		byToken:       make(map[string][]string),
		byPhoneSuffix: make(map[string][]string),
	}

	for i, rec := range records {
		if _, dup := g.byDomain[rec.Domain]; dup {
			continue // domain is the identity key; first record wins
		}
		g.byDomain[rec.Domain] = i

		for _, tok := range rec.SearchTokens {
			g.byToken[tok] = append(g.byToken[tok], rec.Domain)
		}

		seen := make(map[string]struct{}, len(rec.PhoneNumbers))
		for _, phone := range rec.PhoneNumbers {
			suffix := normalize.PhoneSuffix(normalize.Phone(phone))
			if suffix == "" {
				continue
			}
			if _, dup := seen[suffix]; dup {
				continue
			}
			seen[suffix] = struct{}{}
			g.byPhoneSuffix[suffix] = append(g.byPhoneSuffix[suffix], rec.Domain)
		}
	}
	return g
}

// ByDomain returns the record for an exact canonical domain.
func (g *Generation) ByDomain(domain string) (*CompanyRecord, bool) {
	i, ok := g.byDomain[domain]
	if !ok {
		return nil, false
	}
	return &g.Records[i], true
}

// IndexOf returns the record's position in Records for a canonical domain.
func (g *Generation) IndexOf(domain string) (int, bool) {
	i, ok := g.byDomain[domain]
	return i, ok
}

// DomainsForToken returns the domains whose search tokens include token,
// in ingestion order.
func (g *Generation) DomainsForToken(token string) []string {
	return g.byToken[token]
}

// DomainsForPhoneSuffix returns the domains with a phone number ending in
// the given 7-digit suffix.
func (g *Generation) DomainsForPhoneSuffix(suffix string) []string {
	return g.byPhoneSuffix[suffix]
}

// Len returns the number of records in the corpus.
func (g *Generation) Len() int {
	return len(g.Records)
}
