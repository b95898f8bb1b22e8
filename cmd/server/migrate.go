package main

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/iliyamo/movie-show-catalog/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := database.Open(cur.cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := database.Migrate(db, cur.cfg.DBDriver); err != nil {
			return err
		}
		return printVersion(cmd, db, cur.cfg.DBDriver)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Roll back migrations (default 1 step)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps := 1
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 {
				return fmt.Errorf("invalid step count %q", args[0])
			}
			steps = n
		}
		db, err := database.Open(cur.cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := database.MigrateDown(db, cur.cfg.DBDriver, steps); err != nil {
			return err
		}
		return printVersion(cmd, db, cur.cfg.DBDriver)
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := database.Open(cur.cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		return printVersion(cmd, db, cur.cfg.DBDriver)
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd)
}

func printVersion(cmd *cobra.Command, db *sql.DB, driver string) error {
	v, dirty, err := database.Version(db, driver)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty=%t)\n", v, dirty)
	return nil
}
