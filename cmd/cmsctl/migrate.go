package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/institute-cms/internal/config"
	"github.com/institute-cms/internal/database"
	"github.com/institute-cms/pkg/logger"
	"github.com/spf13/cobra"
)

var migrationsPath string

func init() {
	migrateCmd.PersistentFlags().StringVarP(&migrationsPath, "path", "p", "", "Migrations directory (defaults to MIGRATIONS_PATH)")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateGotoCmd, migrateVersionCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *database.DB, path string) error {
			return db.RunMigrations(path)
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the last migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *database.DB, path string) error {
			return db.MigrateDown(path)
		})
	},
}

var migrateGotoCmd = &cobra.Command{
	Use:   "goto [version]",
	Short: "Migrate up or down to a specific version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[0], err)
		}
		return withDB(func(db *database.DB, path string) error {
			return db.MigrateToVersion(path, uint(version))
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(db *database.DB, path string) error {
			version, dirty, err := db.MigrationVersion(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
			return nil
		})
	},
}

// withDB connects using the server's environment configuration.
func withDB(fn func(db *database.DB, path string) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	log := logger.NewWithOptions(os.Stderr, cfg.Log.Level, cfg.Log.Format == "pretty")

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	path := migrationsPath
	if path == "" {
		path = cfg.Database.MigrationsPath
	}
	return fn(db, path)
}
