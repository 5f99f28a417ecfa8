package keybackend

import "errors"

// ErrKeyNotFound is returned when the access key does not exist in the keyring.
var ErrKeyNotFound = errors.New("access key not found")

// ErrNoSigningKey is returned when a keyring is built without a signing key.
var ErrNoSigningKey = errors.New("signing key is required")
