package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a file and its download URL",
	Long: `Show a file's metadata and its public download URL.

Examples:
  filekeep-cli get 0b7c6f4e-5d0a-4d7e-9a43-1f2f3a4b5c6d
  curl -O "$(filekeep-cli get -q 0b7c6f4e-5d0a-4d7e-9a43-1f2f3a4b5c6d)"`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	c, err := getClient()
	if err != nil {
		return err
	}

	result, err := c.Get(cmd.Context(), id)
	if err != nil {
		return err
	}

	return getFormatter().FormatFile(os.Stdout, result)
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q: %w", raw, err)
	}
	return id, nil
}
