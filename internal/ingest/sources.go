// Package ingest joins the name registry and contact-extraction datasets
// into the company corpus and publishes it as a new generation.
package ingest

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// ErrSourceMissing is returned when a required ingestion input is absent.
// Ingestion aborts without touching the published generation.
var ErrSourceMissing = eris.New("ingest: required source dataset missing")

// RegistryRow is one name-registry entry. The registry is the driving set of
// the join: every row produces exactly one corpus record.
type RegistryRow struct {
	Domain            string
	CommercialName    string
	LegalName         string
	AllAvailableNames string
}

// ContactRow is one contact-extraction entry. Multi-valued fields arrive as
// ", "-joined strings; Success reports whether extraction ran to completion.
type ContactRow struct {
	Domain           string
	PhoneNumbers     string
	SocialMediaLinks string
	Addresses        string
	Emails           string
	Success          bool
}

// ReadRegistry loads the name registry from path, dispatching on extension
// (.xlsx or CSV). A missing file is ErrSourceMissing.
func ReadRegistry(ctx context.Context, path string) ([]RegistryRow, error) {
	if path == "" {
		return nil, eris.Wrap(ErrSourceMissing, "ingest: registry path not set")
	}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return readRegistryXLSX(path)
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, eris.Wrapf(ErrSourceMissing, "ingest: registry %s", path)
		}
		return nil, eris.Wrap(err, "ingest: open registry")
	}
	defer f.Close() //nolint:errcheck

	return readRegistryCSV(ctx, f)
}

func readRegistryCSV(ctx context.Context, r io.Reader) ([]RegistryRow, error) {
	rows, err := readTable(ctx, r)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: read registry csv")
	}

	out := make([]RegistryRow, 0, len(rows))
	for _, row := range rows {
		domain := strings.ToLower(strings.TrimSpace(row["domain"]))
		if domain == "" {
			continue
		}
		out = append(out, RegistryRow{
			Domain:            domain,
			CommercialName:    strings.TrimSpace(row["company_commercial_name"]),
			LegalName:         strings.TrimSpace(row["company_legal_name"]),
			AllAvailableNames: strings.TrimSpace(row["company_all_available_names"]),
		})
	}
	return out, nil
}

func readRegistryXLSX(path string) ([]RegistryRow, error) {
	wb, err := xlsx.OpenFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, eris.Wrapf(ErrSourceMissing, "ingest: registry %s", path)
		}
		return nil, eris.Wrap(err, "ingest: open registry xlsx")
	}
	if len(wb.Sheets) == 0 {
		return nil, eris.New("ingest: registry xlsx has no sheets")
	}

	sheet := wb.Sheets[0]
	if len(sheet.Rows) == 0 {
		return nil, nil
	}

	header := make(map[int]string)
	for i, cell := range sheet.Rows[0].Cells {
		header[i] = strings.ToLower(strings.TrimSpace(cell.String()))
	}

	var out []RegistryRow
	for _, row := range sheet.Rows[1:] {
		fields := make(map[string]string, len(header))
		for i, cell := range row.Cells {
			if name, ok := header[i]; ok {
				fields[name] = cell.String()
			}
		}
		domain := strings.ToLower(strings.TrimSpace(fields["domain"]))
		if domain == "" {
			continue
		}
		out = append(out, RegistryRow{
			Domain:            domain,
			CommercialName:    strings.TrimSpace(fields["company_commercial_name"]),
			LegalName:         strings.TrimSpace(fields["company_legal_name"]),
			AllAvailableNames: strings.TrimSpace(fields["company_all_available_names"]),
		})
	}
	return out, nil
}

// ReadContacts loads the contact-extraction dataset from path. A missing or
// unset path yields (nil, nil): the dataset is optional and ingestion
// proceeds with empty contact data.
func ReadContacts(ctx context.Context, path string) ([]ContactRow, error) {
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "ingest: open contacts")
	}
	defer f.Close() //nolint:errcheck

	return readContactsCSV(ctx, f)
}

func readContactsCSV(ctx context.Context, r io.Reader) ([]ContactRow, error) {
	rows, err := readTable(ctx, r)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: read contacts csv")
	}

	out := make([]ContactRow, 0, len(rows))
	for _, row := range rows {
		domain := strings.ToLower(strings.TrimSpace(row["domain"]))
		if domain == "" {
			continue
		}
		out = append(out, ContactRow{
			Domain:           domain,
			PhoneNumbers:     row["phonenumbers"],
			SocialMediaLinks: row["socialmedialinks"],
			Addresses:        row["addresses"],
			Emails:           row["emails"],
			Success:          truthy(row["success"]),
		})
	}
	return out, nil
}

// readTable reads a header-mapped CSV into rows keyed by lowercased column
// name. Variable field counts are tolerated.
func readTable(ctx context.Context, r io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "ingest: read header")
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
	}

	var rows []map[string]string
	for {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "ingest: context cancelled")
		}
		record, err := reader.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, eris.Wrap(err, "ingest: read row")
		}

		row := make(map[string]string, len(header))
		for i, field := range record {
			if i < len(header) {
				row[header[i]] = field
			}
		}
		rows = append(rows, row)
	}
}

// truthy interprets the success flag ("true", "1", "yes", case-insensitive).
func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y", "t":
		return true
	default:
		return false
	}
}
