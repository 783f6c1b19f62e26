package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/sahilchouksey/course-catalog/config"
	"github.com/sahilchouksey/course-catalog/database"
	"github.com/sahilchouksey/course-catalog/utils/logger"
)

var (
	green  = color.New(color.FgGreen, color.Bold)
	yellow = color.New(color.FgYellow, color.Bold)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "catalogctl",
	Short: "Administer the course catalog database",
	Long: `catalogctl prepares and inspects the course catalog store.

The database is selected by the same DB_* environment variables the API
server reads (a .env file is loaded in development).

Examples:

  catalogctl init-db --seed
  catalogctl seed --file catalog.yaml
  catalogctl create-user --email admin@example.com --name Admin --group admin
  catalogctl status
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		red.Fprintln(os.Stderr, "✗", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log SQL and progress")
	rootCmd.AddCommand(initDBCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(createUserCmd)
	rootCmd.AddCommand(statusCmd)
}

// environment loads the configuration and a logger matching --verbose.
func environment() (*config.EnviornmentVariable, *logger.Logger, error) {
	if err := config.LoadENV(); err != nil {
		return nil, nil, err
	}
	env, err := config.Get()
	if err != nil {
		return nil, nil, err
	}
	if !verbose {
		return env, logger.Nop(), nil
	}
	log, err := logger.New(env.GO_ENV)
	if err != nil {
		return nil, nil, err
	}
	return env, log, nil
}

// openStore opens and migrates the configured store.
func openStore() (*database.GORMStore, *config.EnviornmentVariable, *logger.Logger, error) {
	env, log, err := environment()
	if err != nil {
		return nil, nil, nil, err
	}
	store, err := database.StartGORM(env, log)
	if err != nil {
		return nil, nil, nil, errors.Wrapf(err, "connect to %s", env.DB_DRIVER)
	}
	if err := store.Init(); err != nil {
		store.Close()
		return nil, nil, nil, errors.Wrap(err, "migrate")
	}
	return store, env, log, nil
}

func printStats(stats *database.SeedStats) {
	green.Println("✓ Catalog seeded")
	cyan.Printf("   terms:        %d\n", stats.Terms)
	cyan.Printf("   domains:      %d\n", stats.Domains)
	cyan.Printf("   competencies: %d\n", stats.Competencies)
	cyan.Printf("   elements:     %d\n", stats.Elements)
	cyan.Printf("   courses:      %d\n", stats.Courses)
	cyan.Printf("   links:        %d\n", stats.Links)
}
