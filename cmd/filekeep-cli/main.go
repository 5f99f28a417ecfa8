package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/filekeep/client"
)

var (
	version = "dev"

	cfgFile    string
	profile    string
	endpoint   string
	timeout    time.Duration
	jsonOutput bool
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:     "filekeep-cli",
	Version: version,
	Short:   "Client for the filekeep file service",
	Long: `filekeep-cli - Client for the filekeep file service

Uploads go straight to the storage provider through a signed URL handed out
by the server; the server only records the file's metadata.

Connection settings are resolved in this order (later wins):
  1. profile from the config file (--profile, FILEKEEP_PROFILE or the default)
  2. environment (FILEKEEP_ENDPOINT, FILEKEEP_TIMEOUT)
  3. flags (--endpoint, --timeout)`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.filekeep/config.yaml, env: FILEKEEP_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "profile to use (env: FILEKEEP_PROFILE)")
	rootCmd.PersistentFlags().StringVarP(&endpoint, "endpoint", "e", "", "server URL (default: http://localhost:8080, env: FILEKEEP_ENDPOINT)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "request timeout (default: 30s, env: FILEKEEP_TIMEOUT)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "print only ids")

	rootCmd.AddCommand(configureCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(bucketsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if !errors.As(err, &exitErr) {
			_ = getFormatter().FormatError(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// getConfigPath returns the config file from the flag, the environment or the
// default location.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := client.ConfigPathFromEnv(); p != "" {
		return p
	}
	return client.DefaultConfigPath()
}

// buildConfig merges config from the profile, env vars and flags (flags take
// precedence).
func buildConfig() (*client.Config, error) {
	profileName := profile
	if profileName == "" {
		profileName = client.ProfileFromEnv()
	}

	var profileCfg *client.Config
	configFile, err := client.LoadConfigFile(getConfigPath())
	switch {
	case err == nil:
		p, err := configFile.GetProfile(profileName)
		switch {
		case err == nil:
			profileCfg = client.ConfigFromProfile(p)
		case errors.Is(err, client.ErrNoProfiles) && profileName == "":
			// An empty config file behaves like a missing one.
		default:
			return nil, err
		}
	case errors.Is(err, os.ErrNotExist) && cfgFile == "" && profileName == "":
		// No config file is fine unless one was asked for.
	default:
		return nil, err
	}

	flagCfg := &client.Config{Endpoint: endpoint, Timeout: timeout}

	return client.MergeConfig(profileCfg, client.ConfigFromEnv(), flagCfg), nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() client.Formatter {
	return client.NewFormatter(jsonOutput, quiet)
}

// getClient creates and returns a configured client.
func getClient() (*client.Client, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}
	return client.New(cfg)
}

// copyOut streams r to stdout.
func copyOut(r io.Reader) error {
	if _, err := io.Copy(os.Stdout, r); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// exitError is returned when we want to exit non-zero after the output has
// already reported the failure.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}
