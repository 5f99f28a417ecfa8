package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/filekeep/client"
)

var (
	listPrefix string
	listLimit  int
	listAll    bool
	listCursor string
)

var listCmd = &cobra.Command{
	Use:     "list [prefix]",
	Aliases: []string{"ls"},
	Short:   "List files",
	Long: `List files that have not been deleted, oldest first.

Examples:
  filekeep-cli list
  filekeep-cli list uploads/17
  filekeep-cli list --limit 10
  filekeep-cli list --all --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listPrefix, "prefix", "", "filter by path prefix")
	listCmd.Flags().IntVarP(&listLimit, "limit", "l", 100, "max results per page (max: 1000)")
	listCmd.Flags().BoolVar(&listAll, "all", false, "fetch all pages")
	listCmd.Flags().StringVar(&listCursor, "cursor", "", "pagination cursor")
}

func runList(cmd *cobra.Command, args []string) error {
	// Prefix can come from positional arg or flag
	prefix := listPrefix
	if len(args) > 0 {
		prefix = args[0]
	}

	c, err := getClient()
	if err != nil {
		return err
	}

	result, err := c.List(cmd.Context(), client.ListOptions{
		Prefix: prefix,
		Limit:  listLimit,
		Cursor: listCursor,
		All:    listAll,
	})
	if err != nil {
		return err
	}

	return getFormatter().FormatList(os.Stdout, result)
}
