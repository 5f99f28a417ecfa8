package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sagarc03/filekeep/config"
)

var rmCmd = &cobra.Command{
	Use:   "rm <id> [id...]",
	Short: "Delete files by id",
	Long: `Remove the stored object of each file and mark its record deleted.

Examples:
  filekeep rm 3f2b8c4e-9a51-4d7e-8f60-0c1d2e3f4a5b`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRm,
}

func init() {
	rootCmd.AddCommand(rmCmd)
}

func runRm(cmd *cobra.Command, args []string) error {
	ids := make([]uuid.UUID, 0, len(args))
	for _, arg := range args {
		id, err := uuid.Parse(arg)
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", arg, err)
		}
		ids = append(ids, id)
	}

	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	var errs []error
	for _, id := range ids {
		if err := a.service.DeleteFile(cmd.Context(), id); err != nil {
			slog.Error("delete failed", "id", id, "err", err)
			errs = append(errs, err)
			continue
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
	}

	return errors.Join(errs...)
}
