package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/filekeep/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "filekeep",
	Short:   "File upload metadata service",
	Long: `filekeep issues time-limited upload URLs against an object storage
provider and keeps a metadata record for every uploaded file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFiles, _ := cmd.Flags().GetStringSlice("config")

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSlice("config", nil, "config file paths, merged left to right (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("db-type", "", "database type: sqlite, postgres (default: sqlite, env: FILEKEEP_DATABASE_TYPE)")
	rootCmd.PersistentFlags().String("db-dsn", "", "database connection string (default: filekeep.db, env: FILEKEEP_DATABASE_DSN)")
	rootCmd.PersistentFlags().String("storage-provider", "", "storage provider: s3, gcs, local (default: local, env: FILEKEEP_STORAGE_PROVIDER)")
	rootCmd.PersistentFlags().String("storage-path", "", "data directory of the local provider (default: ./data, env: FILEKEEP_STORAGE_PATH)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env: FILEKEEP_LOG_LEVEL)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
