package main

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/sahilchouksey/course-catalog/database"
	"github.com/sahilchouksey/course-catalog/repository"
)

var (
	statusJobs   int
	statusSchema bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show table sizes and recent scheduled job runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, env, log, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		if err := store.HealthCheck(); err != nil {
			red.Printf("✗ %s unreachable: %v\n", env.DB_DRIVER, err)
			return err
		}
		green.Printf("✓ Connected (%s)\n", store.Driver())

		counts, err := store.TableCounts(ctx)
		if err != nil {
			return err
		}
		tables := make([]string, 0, len(counts))
		for table := range counts {
			tables = append(tables, table)
		}
		sort.Strings(tables)
		fmt.Println()
		yellow.Println("Tables")
		for _, table := range tables {
			cyan.Printf("   %-22s %d\n", table, counts[table])
		}

		if statusSchema {
			names := make([]string, 0, len(database.Relationships))
			for table := range database.Relationships {
				names = append(names, table)
			}
			sort.Strings(names)
			fmt.Println()
			yellow.Println("Foreign keys")
			for _, table := range names {
				cyan.Printf("   %-22s %s\n", table, database.Relationships[table])
			}
		}

		if statusJobs <= 0 {
			return nil
		}
		runs, err := repository.New(store, log).LatestJobLogs(ctx, statusJobs)
		if err != nil {
			return err
		}
		fmt.Println()
		yellow.Println("Recent jobs")
		if len(runs) == 0 {
			fmt.Println("   none recorded")
		}
		for _, run := range runs {
			line := fmt.Sprintf("   %s  %-24s %-9s %dms", run.StartedAt.Format(time.RFC3339), run.JobName, run.Status, run.Duration)
			if run.Status == "failed" {
				red.Println(line, "-", run.ErrorMsg)
			} else {
				fmt.Println(line)
			}
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().IntVar(&statusJobs, "jobs", 10, "number of recent job runs to show")
	statusCmd.Flags().BoolVar(&statusSchema, "schema", false, "list the foreign keys between catalog tables")
}
