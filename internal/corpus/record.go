// Package corpus holds the canonical company records and the generation
// snapshots (corpus + derived indexes) the matcher reads from.
package corpus

// CompanyRecord is the canonical record for one company, keyed by domain.
// Records are immutable once built; the whole corpus is replaced as one
// generation when ingestion reruns.
type CompanyRecord struct {
	Domain            string   `json:"domain"`
	CommercialName    string   `json:"commercial_name"`
	LegalName         string   `json:"legal_name,omitempty"`
	AllAvailableNames string   `json:"all_available_names,omitempty"`
	PhoneNumbers      []string `json:"phone_numbers,omitempty"`
	SocialMediaLinks  []string `json:"social_media_links,omitempty"`
	Addresses         []string `json:"addresses,omitempty"`
	Emails            []string `json:"emails,omitempty"`

	// SearchTokens is the deduplicated token set derived from every text
	// field above, computed once at ingestion.
	SearchTokens []string `json:"search_tokens,omitempty"`

	// HasContactData distinguishes "contact extraction failed or never ran
	// for this domain" from "fields genuinely absent".
	HasContactData bool `json:"has_contact_data"`
}
