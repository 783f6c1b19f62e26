package main

import (
	"github.com/spf13/cobra"

	"github.com/sahilchouksey/course-catalog/database"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a catalog into the database",
	Long: `Insert the terms, domains, competencies, elements, courses and links of a
YAML catalog. Rows that already exist are left untouched, so seeding is
safe to repeat. An admin account is created from ADMIN_EMAIL and
ADMIN_PASSWORD when both are set.

Examples:
  catalogctl seed                  # bundled sample catalog
  catalogctl seed --file my.yaml
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, _, log, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		stats, err := database.RunSeeds(store.GetDB(), seedFile, log)
		if err != nil {
			return err
		}
		printStats(stats)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "YAML catalog to load (default: bundled sample)")
}
