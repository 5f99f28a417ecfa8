package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/filekeep/client"
)

var (
	uploadName        string
	uploadContentType string
)

var uploadCmd = &cobra.Command{
	Use:   "upload <local-path>",
	Short: "Upload a file",
	Long: `Upload a file.

The server generates the storage path (uploads/<millis>_<name>). The file is
sent directly to the storage provider and its metadata is recorded afterwards.

Examples:
  filekeep-cli upload ./report.pdf
  filekeep-cli upload --name "Q3 report.pdf" ./report.pdf
  filekeep-cli upload -t application/json ./data
  ID=$(filekeep-cli upload -q ./photo.png)`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadName, "name", "n", "", "file name to record (default: base name of the local file)")
	uploadCmd.Flags().StringVarP(&uploadContentType, "content-type", "t", "", "override content-type")
}

func runUpload(cmd *cobra.Command, args []string) error {
	c, err := getClient()
	if err != nil {
		return err
	}

	result, err := c.Upload(cmd.Context(), client.UploadOptions{
		LocalPath:   args[0],
		FileName:    uploadName,
		ContentType: uploadContentType,
	})
	if err != nil {
		return err
	}

	return getFormatter().FormatUpload(os.Stdout, result)
}
