package ingest

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/resolve-cli/internal/corpus"
	"github.com/sells-group/resolve-cli/internal/normalize"
)

// Merge left-joins the name registry with the contact-extraction dataset on
// domain and builds the full corpus. The registry is the driving set: every
// registry row yields exactly one record; contact rows without a registry
// entry are dropped. Record order follows registry order.
//
// Tokenization is the expensive step, so records are built concurrently with
// index-preserving slots; workers <= 1 builds sequentially.
func Merge(ctx context.Context, registry []RegistryRow, contacts []ContactRow, workers int) ([]corpus.CompanyRecord, error) {
	byDomain := make(map[string]ContactRow, len(contacts))
	for _, c := range contacts {
		if _, dup := byDomain[c.Domain]; dup {
			continue
		}
		byDomain[c.Domain] = c
	}

	records := make([]corpus.CompanyRecord, len(registry))

	build := func(i int) {
		row := registry[i]
		contact, joined := byDomain[row.Domain]
		records[i] = buildRecord(row, contact, joined)
	}

	if workers <= 1 {
		for i := range registry {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			build(i)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i := range registry {
			g.Go(func() error {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				build(i)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	dropped := len(contacts) - countJoined(registry, byDomain)
	zap.L().Info("ingest: merge complete",
		zap.Int("registry_rows", len(registry)),
		zap.Int("contact_rows", len(contacts)),
		zap.Int("records", len(records)),
		zap.Int("contacts_dropped", max(dropped, 0)),
	)

	return records, nil
}

func countJoined(registry []RegistryRow, contacts map[string]ContactRow) int {
	n := 0
	for _, row := range registry {
		if _, ok := contacts[row.Domain]; ok {
			n++
		}
	}
	return n
}

// buildRecord assembles one corpus record from a joined row pair.
func buildRecord(row RegistryRow, contact ContactRow, joined bool) corpus.CompanyRecord {
	rec := corpus.CompanyRecord{
		Domain:            row.Domain,
		CommercialName:    row.CommercialName,
		LegalName:         row.LegalName,
		AllAvailableNames: row.AllAvailableNames,
		HasContactData:    joined && contact.Success,
	}
	if joined {
		rec.PhoneNumbers = splitJoined(contact.PhoneNumbers)
		rec.SocialMediaLinks = splitJoined(contact.SocialMediaLinks)
		rec.Addresses = splitJoined(contact.Addresses)
		rec.Emails = splitJoined(contact.Emails)
	}

	texts := []string{rec.Domain, rec.CommercialName, rec.LegalName, rec.AllAvailableNames}
	texts = append(texts, rec.PhoneNumbers...)
	texts = append(texts, rec.SocialMediaLinks...)
	texts = append(texts, rec.Addresses...)
	texts = append(texts, rec.Emails...)
	rec.SearchTokens = normalize.TokenizeAll(texts...)

	return rec
}

// splitJoined splits a ", "-joined multi-value field, preserving source
// order and dropping empties.
func splitJoined(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ", ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
