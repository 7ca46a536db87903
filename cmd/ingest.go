package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/resolve-cli/internal/corpus"
	"github.com/sells-group/resolve-cli/internal/ingest"
	"github.com/sells-group/resolve-cli/internal/store"
)

var (
	ingestRegistryPath string
	ingestContactsPath string
	ingestSnapshotOut  string
	ingestCSVOut       string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Join registry and contact datasets into a new corpus generation",
	Long:  "Left-joins the name registry with the contact-extraction dataset on domain, tokenizes every record, replaces the stored corpus as one generation, and emits JSON and CSV artifacts.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		registryPath := cfg.Ingest.RegistryPath
		if ingestRegistryPath != "" {
			registryPath = ingestRegistryPath
		}
		contactsPath := cfg.Ingest.ContactsPath
		if ingestContactsPath != "" {
			contactsPath = ingestContactsPath
		}
		snapshotPath := cfg.Ingest.SnapshotPath
		if ingestSnapshotOut != "" {
			snapshotPath = ingestSnapshotOut
		}
		csvPath := cfg.Ingest.CSVPath
		if ingestCSVOut != "" {
			csvPath = ingestCSVOut
		}

		registry, err := ingest.ReadRegistry(ctx, registryPath)
		if err != nil {
			return eris.Wrap(err, "ingest: read registry")
		}

		contacts, err := ingest.ReadContacts(ctx, contactsPath)
		if err != nil {
			return eris.Wrap(err, "ingest: read contacts")
		}
		if contacts == nil {
			zap.L().Warn("contact-extraction dataset absent; records will have no contact data",
				zap.String("path", contactsPath))
		}

		records, err := ingest.Merge(ctx, registry, contacts, cfg.Ingest.Workers)
		if err != nil {
			return eris.Wrap(err, "ingest: merge")
		}

		gen := corpus.NewGeneration(records)

		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return eris.Wrap(err, "ingest: open store")
		}
		defer st.Close() //nolint:errcheck

		if err := st.SaveGeneration(ctx, gen); err != nil {
			return eris.Wrap(err, "ingest: save generation")
		}

		if err := ingest.WriteSnapshot(snapshotPath, records); err != nil {
			return err
		}
		if err := ingest.WriteFlatCSV(csvPath, records); err != nil {
			return err
		}

		zap.L().Info("ingest complete",
			zap.String("generation_id", gen.ID),
			zap.Int("records", gen.Len()),
			zap.String("snapshot", snapshotPath),
			zap.String("csv", csvPath),
		)
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestRegistryPath, "registry", "", "path to name registry (.csv or .xlsx)")
	ingestCmd.Flags().StringVar(&ingestContactsPath, "contacts", "", "path to contact-extraction CSV")
	ingestCmd.Flags().StringVar(&ingestSnapshotOut, "snapshot-out", "", "JSON snapshot output path")
	ingestCmd.Flags().StringVar(&ingestCSVOut, "csv-out", "", "flattened CSV output path")
	rootCmd.AddCommand(ingestCmd)
}
