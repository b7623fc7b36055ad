// Package upload publishes a finished archive to the remote depot with a
// two-phase authenticated transfer.
package upload

import (
	"bufio"
	"os"
	"strings"

	apperr "swinpack/internal/errors"
)

// Credentials is a username/password pair read from the user's private
// credentials file.
type Credentials struct {
	Username string
	Password string
}

// ReadCredentials parses the first non-comment, non-blank line of the file
// as "username:password".
func ReadCredentials(path string) (Credentials, error) {
	f, err := os.Open(path)
	if err != nil {
		return Credentials{}, apperr.Wrap(apperr.AuthFailure, "read credentials", err, path)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		user, pass, ok := strings.Cut(line, ":")
		if !ok || user == "" {
			return Credentials{}, apperr.New(apperr.AuthFailure, "read credentials",
				"expected username:password", path)
		}
		return Credentials{Username: user, Password: pass}, nil
	}
	if err := scanner.Err(); err != nil {
		return Credentials{}, apperr.Wrap(apperr.AuthFailure, "read credentials", err, path)
	}
	return Credentials{}, apperr.New(apperr.AuthFailure, "read credentials",
		"no credentials found", path)
}
