package config

import (
	"os"
	"path/filepath"
	"strings"

	apperr "swinpack/internal/errors"
)

// DefaultUploadURL is the base URL of the remote swin depot.
const DefaultUploadURL = "https://depot.vlbi.net/swin"

// CredentialsFileName is the dotfile read from the user's home directory
// when no credentials path is given.
const CredentialsFileName = ".swinpack_auth"

type Config struct {
	// Source is a directory of loose correlation output, or an already
	// packed archive file.
	Source string
	// Dest is a directory or an exact archive filename. Empty means the
	// source's own location.
	Dest string

	VexPath     string
	V2DPath     string
	Release     int
	Verbose     bool
	Upload      bool
	UploadURL   string
	Credentials string
	DeleteAfter bool
	Plain       bool
}

// Normalize fills defaults and environment fallbacks and validates the
// configuration.
func (c *Config) Normalize() error {
	if c.Source == "" {
		return apperr.New(apperr.InvalidConfig, "configure", "source is required")
	}
	if !c.Verbose {
		c.Verbose = envTruthy("SWINPACK_VERBOSE")
	}
	if c.UploadURL == "" {
		c.UploadURL = envOrEmpty("SWINPACK_UPLOAD_URL")
	}
	if c.UploadURL == "" {
		c.UploadURL = DefaultUploadURL
	}
	if c.Credentials == "" {
		c.Credentials = envOrEmpty("SWINPACK_CREDENTIALS")
	}
	if c.Credentials == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return apperr.Wrap(apperr.InvalidConfig, "configure", err)
		}
		c.Credentials = filepath.Join(home, CredentialsFileName)
	}
	if c.Release < 1 || c.Release > 999 {
		return apperr.New(apperr.InvalidConfig, "configure", "release must be between 1 and 999")
	}
	return nil
}

func envOrEmpty(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func envTruthy(key string) bool {
	val := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	return val == "1" || val == "true" || val == "yes" || val == "y"
}
