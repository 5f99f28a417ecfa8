// Package storage opens the object storage provider selected in
// configuration.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sagarc03/filekeep"
	"github.com/sagarc03/filekeep/filesystem"
	"github.com/sagarc03/filekeep/gcsstore"
	"github.com/sagarc03/filekeep/keybackend"
	"github.com/sagarc03/filekeep/s3store"
)

const (
	ProviderS3    = "s3"
	ProviderGCS   = "gcs"
	ProviderLocal = "local"
)

// Config selects and configures the storage provider.
type Config struct {
	Provider string `mapstructure:"provider" validate:"required,oneof=s3 gcs local"`
	Bucket   string `mapstructure:"bucket" validate:"required"`
	// Endpoint is the S3 API endpoint, or the public base URL of this server
	// for the local provider.
	Endpoint  string `mapstructure:"endpoint" validate:"required_unless=Provider gcs"`
	Region    string `mapstructure:"region"`
	ProjectID string `mapstructure:"project_id"`
	AccessKey string `mapstructure:"access_key" validate:"required_unless=Provider gcs"`
	// Credential is the secret key for s3 and local, and the service account
	// key (inline JSON or file path) for gcs.
	Credential string `mapstructure:"credential" validate:"required"`
	// Path is the data directory of the local provider.
	Path string `mapstructure:"path" validate:"required_if=Provider local"`
	// KeysFile lists additional access keys accepted by the local provider.
	KeysFile  string        `mapstructure:"keys_file"`
	UploadTTL time.Duration `mapstructure:"upload_ttl" validate:"min=1s,max=168h"`
}

// Provider is an opened storage provider.
type Provider struct {
	filekeep.ObjectStorage

	// Objects and Verifier are set for the local provider only. The server
	// mounts them to accept uploads and serve downloads.
	Objects  *filesystem.Store
	Verifier *filekeep.SignatureVerifier

	closer func() error
}

// Local reports whether objects are served by this process.
func (p *Provider) Local() bool {
	return p.Objects != nil
}

// Close releases provider resources.
func (p *Provider) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer()
}

// Open builds the provider named in cfg. A missing endpoint or credential is
// reported here so the server never starts half configured.
func Open(ctx context.Context, cfg Config) (*Provider, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("open storage: bucket is required")
	}
	if cfg.Credential == "" {
		return nil, errors.New("open storage: credential is required")
	}

	switch cfg.Provider {
	case ProviderS3:
		if cfg.Endpoint == "" {
			return nil, errors.New("open storage: endpoint is required for s3")
		}
		store, err := s3store.New(ctx, s3store.Config{
			Endpoint:  cfg.Endpoint,
			Region:    cfg.Region,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.Credential,
			Bucket:    cfg.Bucket,
			UploadTTL: cfg.UploadTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
		return &Provider{ObjectStorage: store}, nil

	case ProviderGCS:
		store, err := gcsstore.New(ctx, gcsstore.Config{
			Bucket:     cfg.Bucket,
			ProjectID:  cfg.ProjectID,
			Credential: cfg.Credential,
			UploadTTL:  cfg.UploadTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("open storage: %w", err)
		}
		return &Provider{ObjectStorage: store}, nil

	case ProviderLocal:
		return openLocal(cfg)

	default:
		return nil, fmt.Errorf("open storage: unsupported provider: %s", cfg.Provider)
	}
}

func openLocal(cfg Config) (*Provider, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("open storage: endpoint is required for local")
	}
	if cfg.Path == "" {
		return nil, errors.New("open storage: path is required for local")
	}

	keys, err := keybackend.NewKeyring(keybackend.KeysConfig{
		Signing: keybackend.KeyPair{AccessKey: cfg.AccessKey, SecretKey: cfg.Credential},
		File:    cfg.KeysFile,
	})
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
		return nil, fmt.Errorf("open storage: create data directory: %w", err)
	}
	root, err := os.OpenRoot(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	store := filesystem.NewStore(root)
	backend, err := filesystem.NewBackend(store, keys, filesystem.BackendConfig{
		Bucket:    cfg.Bucket,
		Endpoint:  cfg.Endpoint,
		UploadTTL: cfg.UploadTTL,
	})
	if err != nil {
		_ = root.Close()
		return nil, fmt.Errorf("open storage: %w", err)
	}

	return &Provider{
		ObjectStorage: backend,
		Objects:       store,
		Verifier:      filekeep.NewSignatureVerifier(keys),
		closer:        root.Close,
	}, nil
}
