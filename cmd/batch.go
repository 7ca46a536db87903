package main

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/resolve-cli/internal/match"
)

var (
	batchInputPath  string
	batchOutputPath string
)

// batchRow is one output row of the batch results CSV.
type batchRow struct {
	Name          string `csv:"name"`
	Website       string `csv:"website"`
	Phone         string `csv:"phone"`
	Facebook      string `csv:"facebook"`
	Confident     bool   `csv:"confident"`
	Domain        string `csv:"matched_domain"`
	Score         int    `csv:"score"`
	Confidence    int    `csv:"confidence"`
	MatchedFields string `csv:"matched_fields"`
	Error         string `csv:"error"`
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Match a CSV of queries and report the aggregate match rate",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		data, err := os.ReadFile(batchInputPath)
		if err != nil {
			return eris.Wrap(err, "batch: read input")
		}
		var queries []match.Query
		if err := csvutil.Unmarshal(data, &queries); err != nil {
			return eris.Wrap(err, "batch: parse queries")
		}

		matcher, cleanup, err := loadMatcher(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		results, stats, err := matcher.MatchAll(ctx, queries, cfg.Match.BatchWorkers)
		if err != nil {
			return err
		}

		if batchOutputPath != "" {
			rows := make([]batchRow, len(results))
			for i, r := range results {
				row := batchRow{
					Name:     r.Query.Name,
					Website:  r.Query.Website,
					Phone:    r.Query.Phone,
					Facebook: r.Query.Facebook,
				}
				switch {
				case r.Err != nil:
					row.Error = r.Err.Error()
				case r.Outcome.Confident:
					row.Confident = true
					row.Domain = r.Outcome.Top.Record.Domain
					row.Score = r.Outcome.Top.Score
					row.Confidence = r.Outcome.Top.Confidence
					row.MatchedFields = strings.Join(r.Outcome.Top.MatchedFields, ", ")
				}
				rows[i] = row
			}
			out, err := csvutil.Marshal(rows)
			if err != nil {
				return eris.Wrap(err, "batch: marshal results")
			}
			if err := os.WriteFile(batchOutputPath, out, 0o644); err != nil {
				return eris.Wrap(err, "batch: write results")
			}
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchInputPath, "input", "", "CSV of queries with columns name,website,phone,facebook (required)")
	batchCmd.Flags().StringVar(&batchOutputPath, "output", "", "optional CSV path for per-query results")
	_ = batchCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(batchCmd)
}
