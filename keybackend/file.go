package keybackend

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// KeyPair represents an access key and secret key pair.
type KeyPair struct {
	AccessKey string `json:"access_key" yaml:"access_key" mapstructure:"access_key"`
	SecretKey string `json:"secret_key" yaml:"secret_key" mapstructure:"secret_key"`
}

func (p KeyPair) complete() bool {
	return p.AccessKey != "" && p.SecretKey != ""
}

// LoadKeysFromFile loads verification keys from a JSON or YAML file. The
// format is picked from the extension (.yaml and .yml are YAML, anything else
// is JSON). Both hold a list of key pairs:
//
//	[
//	  {"access_key": "OLDKEY", "secret_key": "old_secret"},
//	  {"access_key": "NEWKEY", "secret_key": "new_secret"}
//	]
//
// Incomplete pairs are skipped. Later duplicates win.
func LoadKeysFromFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is from trusted config file
	if err != nil {
		return nil, fmt.Errorf("read keys file: %w", err)
	}

	var pairs []KeyPair
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &pairs)
	default:
		err = json.Unmarshal(data, &pairs)
	}
	if err != nil {
		return nil, fmt.Errorf("parse keys file: %w", err)
	}

	keys := make(map[string]string, len(pairs))
	for _, p := range pairs {
		if p.complete() {
			keys[p.AccessKey] = p.SecretKey
		}
	}

	return keys, nil
}
