package main

import (
	"os"

	"github.com/spf13/cobra"
)

var bucketsCmd = &cobra.Command{
	Use:   "buckets",
	Short: "List storage buckets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := getClient()
		if err != nil {
			return err
		}

		buckets, err := c.Buckets(cmd.Context())
		if err != nil {
			return err
		}

		return getFormatter().FormatBuckets(os.Stdout, buckets)
	},
}
