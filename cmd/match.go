package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/sells-group/resolve-cli/internal/match"
)

var matchQuery match.Query

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Resolve identity signals to a single confident company match",
	RunE: func(cmd *cobra.Command, _ []string) error {
		matcher, cleanup, err := loadMatcher(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		out, err := matcher.Match(matchQuery)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	matchCmd.Flags().StringVar(&matchQuery.Name, "name", "", "company name")
	matchCmd.Flags().StringVar(&matchQuery.Website, "website", "", "website or domain")
	matchCmd.Flags().StringVar(&matchQuery.Phone, "phone", "", "phone number")
	matchCmd.Flags().StringVar(&matchQuery.Facebook, "facebook", "", "facebook URL or handle")
	rootCmd.AddCommand(matchCmd)
}
