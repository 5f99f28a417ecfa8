package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sagarc03/filekeep/config"
	"github.com/sagarc03/filekeep/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or verify the metadata schema",
	Long: `Create the files table and its indexes if they do not exist, then
check that the table matches the expected schema.

With --check the schema is only validated.`,
	RunE: runMigrate,
}

var migrateCheck bool

func init() {
	migrateCmd.Flags().BoolVar(&migrateCheck, "check", false, "validate the schema without changing it")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	db, err := database.Open(cmd.Context(), cfg.Database, !migrateCheck)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer func() { _ = db.Close() }()

	if migrateCheck {
		slog.Info("schema is valid", "type", cfg.Database.Type, "table", cfg.Database.Tables.Files)
		return nil
	}
	slog.Info("database migration complete", "type", cfg.Database.Type, "table", cfg.Database.Tables.Files)
	return nil
}
