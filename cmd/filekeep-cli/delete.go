package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/filekeep/client"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id> [id...]",
	Aliases: []string{"rm"},
	Short:   "Delete files",
	Long: `Delete one or more files.

The stored object is removed and the record is marked deleted. Every id is
attempted; the command exits non-zero if any of them failed.

Examples:
  filekeep-cli delete 0b7c6f4e-5d0a-4d7e-9a43-1f2f3a4b5c6d
  filekeep-cli list -q | xargs filekeep-cli delete`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	c, err := getClient()
	if err != nil {
		return err
	}

	results, err := c.Delete(cmd.Context(), args)
	if err != nil {
		return err
	}

	if err := getFormatter().FormatDelete(os.Stdout, results); err != nil {
		return err
	}

	if client.HasDeleteErrors(results) {
		return &exitError{code: 1}
	}
	return nil
}
