// Package config provides configuration loading and validation for filekeep.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (FILEKEEP_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with FILEKEEP_ prefix:
//   - server.port → FILEKEEP_SERVER_PORT
//   - database.type → FILEKEEP_DATABASE_TYPE
//   - storage.credential → FILEKEEP_STORAGE_CREDENTIAL
//
// # Validation
//
// The storage credential has no default, so Load fails until one is
// configured. The endpoint is required for the s3 and local providers.
package config
