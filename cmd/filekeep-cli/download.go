package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	downloadOutput string
	downloadStdout bool
)

var downloadCmd = &cobra.Command{
	Use:   "download <id> [local-path]",
	Short: "Download a file",
	Long: `Download a file through its public download URL.

The local path defaults to the recorded file name.

Examples:
  filekeep-cli download 0b7c6f4e-5d0a-4d7e-9a43-1f2f3a4b5c6d
  filekeep-cli download 0b7c6f4e-5d0a-4d7e-9a43-1f2f3a4b5c6d ./copy.pdf
  filekeep-cli download --stdout 0b7c6f4e-5d0a-4d7e-9a43-1f2f3a4b5c6d | jq .`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "output file path")
	downloadCmd.Flags().BoolVar(&downloadStdout, "stdout", false, "write to stdout")
}

func runDownload(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	localPath := ""
	if len(args) > 1 {
		localPath = args[1]
	}
	if downloadOutput != "" {
		localPath = downloadOutput
	}
	if downloadStdout {
		localPath = "-"
	}

	c, err := getClient()
	if err != nil {
		return err
	}

	result, reader, err := c.Download(cmd.Context(), id, localPath)
	if err != nil {
		return err
	}

	if reader != nil {
		defer func() { _ = reader.Close() }()
		if err := copyOut(reader); err != nil {
			return err
		}
		// Metadata goes to stderr so stdout carries only the content.
		if jsonOutput {
			return getFormatter().FormatDownload(os.Stderr, result)
		}
		return nil
	}

	return getFormatter().FormatDownload(os.Stdout, result)
}
