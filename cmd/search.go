package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/resolve-cli/internal/match"
)

var (
	searchQuery match.Query
	searchLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Rank candidate companies without confidence gating",
	RunE: func(cmd *cobra.Command, _ []string) error {
		matcher, cleanup, err := loadMatcher(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		limit := searchLimit
		if limit <= 0 {
			limit = cfg.Match.SearchLimit
		}

		results, err := matcher.Search(searchQuery, limit)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchQuery.Name, "name", "", "company name")
	searchCmd.Flags().StringVar(&searchQuery.Website, "website", "", "website or domain")
	searchCmd.Flags().StringVar(&searchQuery.Phone, "phone", "", "phone number")
	searchCmd.Flags().StringVar(&searchQuery.Facebook, "facebook", "", "facebook URL or handle")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "max results (default from config)")
	rootCmd.AddCommand(searchCmd)
}
