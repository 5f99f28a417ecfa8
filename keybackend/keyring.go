package keybackend

import (
	"fmt"
	"maps"

	"github.com/sagarc03/filekeep"
)

// MapSecretStore is an in-memory filekeep.SecretStore.
type MapSecretStore struct {
	keys map[string]string
}

func NewMapSecretStore(keys map[string]string) *MapSecretStore {
	return &MapSecretStore{keys: maps.Clone(keys)}
}

func (s *MapSecretStore) Lookup(accessKey string) (string, error) {
	secret, ok := s.keys[accessKey]
	if !ok || accessKey == "" {
		return "", fmt.Errorf("%w: %w", ErrKeyNotFound, filekeep.ErrUnauthorized)
	}
	return secret, nil
}

// KeysConfig describes the keys of the local storage backend.
type KeysConfig struct {
	// Signing signs every new upload URL and is always accepted on verification.
	Signing KeyPair
	// File optionally names a JSON or YAML file of additional keys accepted on
	// verification, so URLs signed before a key rotation stay usable.
	File string
}

// Keyring signs with one key and verifies against several.
type Keyring struct {
	*MapSecretStore
	signing KeyPair
}

// NewKeyring builds a keyring from cfg. The signing key cannot be shadowed by
// an entry in the keys file.
func NewKeyring(cfg KeysConfig) (*Keyring, error) {
	if !cfg.Signing.complete() {
		return nil, fmt.Errorf("new keyring: %w", ErrNoSigningKey)
	}

	keys := make(map[string]string)
	if cfg.File != "" {
		fileKeys, err := LoadKeysFromFile(cfg.File)
		if err != nil {
			return nil, fmt.Errorf("new keyring: %w", err)
		}
		maps.Copy(keys, fileKeys)
	}
	keys[cfg.Signing.AccessKey] = cfg.Signing.SecretKey

	return &Keyring{
		MapSecretStore: &MapSecretStore{keys: keys},
		signing:        cfg.Signing,
	}, nil
}

// SigningKey returns the pair new URLs are signed with.
func (k *Keyring) SigningKey() KeyPair {
	return k.signing
}

var (
	_ filekeep.SecretStore = (*MapSecretStore)(nil)
	_ filekeep.SecretStore = (*Keyring)(nil)
)
