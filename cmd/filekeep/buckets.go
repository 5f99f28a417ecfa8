package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/filekeep/config"
)

var bucketsCmd = &cobra.Command{
	Use:   "buckets",
	Short: "List the buckets visible to the storage credential",
	RunE:  runBuckets,
}

func init() {
	rootCmd.AddCommand(bucketsCmd)
}

func runBuckets(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	buckets, err := a.service.ListBuckets(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tPUBLIC\tCREATED")
	for _, b := range buckets {
		created := "-"
		if !b.CreatedAt.IsZero() {
			created = b.CreatedAt.Format(time.RFC3339)
		}
		_, _ = fmt.Fprintf(w, "%s\t%t\t%s\n", b.Name, b.Public, created)
	}
	return w.Flush()
}
