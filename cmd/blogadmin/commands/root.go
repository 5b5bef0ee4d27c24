package commands

import (
	"fmt"
	"os"

	"github.com/anonto42/nano-blog/backend/pkg/config"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	// Global flags
	dbURL string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "blogadmin",
	Short: "Administrative tasks for the blog",
	Long: `blogadmin runs the administrator-only operations of the blog:
schema migration, group management and account removal.

The database is taken from --db or POSTGRES_CONN_STR.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "Database connection URL (defaults to POSTGRES_CONN_STR)")
}

// openDB is replaced in tests.
var openDB = func() (*gorm.DB, func(), error) {
	cfg := config.Load()
	if dbURL != "" {
		cfg.PostgresConnStr = dbURL
	}
	cfg.MongoURI = ""

	db, err := config.InitDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	return db.Postgres, db.CloseDB, nil
}
