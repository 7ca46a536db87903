package ingest

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/sells-group/resolve-cli/internal/corpus"
)

// flatRow is the flattened tabular view of a record; multi-valued fields are
// re-joined with ", ".
type flatRow struct {
	Domain            string `csv:"domain"`
	CommercialName    string `csv:"commercial_name"`
	LegalName         string `csv:"legal_name"`
	AllAvailableNames string `csv:"all_available_names"`
	PhoneNumbers      string `csv:"phone_numbers"`
	SocialMediaLinks  string `csv:"social_media_links"`
	Addresses         string `csv:"addresses"`
	Emails            string `csv:"emails"`
	HasContactData    bool   `csv:"has_contact_data"`
}

// WriteSnapshot writes the full-fidelity JSON snapshot of the corpus. The
// output is deterministic for a given corpus.
func WriteSnapshot(path string, records []corpus.CompanyRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return eris.Wrap(err, "ingest: marshal snapshot")
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return eris.Wrap(err, "ingest: write snapshot")
	}
	return nil
}

// WriteFlatCSV writes the flattened CSV view of the corpus.
func WriteFlatCSV(path string, records []corpus.CompanyRecord) error {
	rows := make([]flatRow, len(records))
	for i, rec := range records {
		rows[i] = flatRow{
			Domain:            rec.Domain,
			CommercialName:    rec.CommercialName,
			LegalName:         rec.LegalName,
			AllAvailableNames: rec.AllAvailableNames,
			PhoneNumbers:      strings.Join(rec.PhoneNumbers, ", "),
			SocialMediaLinks:  strings.Join(rec.SocialMediaLinks, ", "),
			Addresses:         strings.Join(rec.Addresses, ", "),
			Emails:            strings.Join(rec.Emails, ", "),
			HasContactData:    rec.HasContactData,
		}
	}

	data, err := csvutil.Marshal(rows)
	if err != nil {
		return eris.Wrap(err, "ingest: marshal flat csv")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrap(err, "ingest: write flat csv")
	}
	return nil
}
