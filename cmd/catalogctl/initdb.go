package main

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sahilchouksey/course-catalog/database"
)

var (
	initKeepUsers bool
	initSeed      bool
	initSeedFile  string
)

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Drop and recreate the catalog tables",
	Long: `Drop the catalog tables, recreate them and optionally load a seed catalog.

Examples:
  catalogctl init-db                      # empty catalog, accounts dropped too
  catalogctl init-db --keep-users         # keep accounts and audit history
  catalogctl init-db --seed               # load the bundled sample catalog
  catalogctl init-db --seed-file my.yaml  # load a custom catalog
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, log, err := environment()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		if env.DB_DRIVER == "postgres" || env.DB_DRIVER == "postgresql" {
			pq, err := database.Start(env)
			if err != nil {
				return err
			}
			if err := pq.HealthCheck(); err != nil {
				pq.Close()
				return errors.Wrap(err, "postgres unreachable")
			}
			err = pq.DropCatalog(ctx, initKeepUsers)
			pq.Close()
			if err != nil {
				return err
			}
		} else {
			store, err := database.StartGORM(env, log)
			if err != nil {
				return err
			}
			err = store.DropCatalog(initKeepUsers)
			store.Close()
			if err != nil {
				return err
			}
		}
		yellow.Println("• Dropped catalog tables")

		store, _, log, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		green.Println("✓ Tables created")

		if !initSeed && initSeedFile == "" {
			return nil
		}
		stats, err := database.RunSeeds(store.GetDB(), initSeedFile, log)
		if err != nil {
			return errors.Wrap(err, "seed")
		}
		printStats(stats)
		return nil
	},
}

func init() {
	initDBCmd.Flags().BoolVar(&initKeepUsers, "keep-users", false, "keep account, audit and job tables")
	initDBCmd.Flags().BoolVar(&initSeed, "seed", false, "load the bundled sample catalog")
	initDBCmd.Flags().StringVar(&initSeedFile, "seed-file", "", "load the catalog from a YAML file")
}
