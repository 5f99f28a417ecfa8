package client

import "errors"

// Errors for profile operations.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrNoProfiles      = errors.New("no profiles configured")
	ErrProfileExists   = errors.New("profile already exists")
)

// Errors for input validation.
var (
	ErrConfigRequired = errors.New("config is required")
	ErrNoIDs          = errors.New("no ids provided")
	ErrEmptyPath      = errors.New("path is required")
)
