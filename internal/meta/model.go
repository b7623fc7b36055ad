package meta

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strings"

	apperr "swinpack/internal/errors"
)

// Timing-model files declare one pointing source per scan plus zero or more
// phase centers, e.g.
//
//	SCAN 0 POINTING SRC:    SRCA
//	SCAN 0 PHS CTR 0 SRC:   SRCB
var reScanSource = regexp.MustCompile(`^SCAN \d+ (?:POINTING|PHS CTR \d+) SRC$`)

// ParseModelSources collects the pointing and phase-center source names
// declared in a per-job timing-model file.
func ParseModelSources(r io.Reader) ([]string, error) {
	var sources []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		if reScanSource.MatchString(strings.TrimSpace(key)) {
			if value = strings.TrimSpace(value); value != "" {
				sources = append(sources, value)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return sources, nil
}

// ReadModelSources parses the per-job timing-model file at path.
func ReadModelSources(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.IOFailure, "read timing model", err, path)
	}
	defer f.Close()

	sources, err := ParseModelSources(f)
	if err != nil {
		return nil, apperr.Wrap(apperr.IOFailure, "read timing model", err, path)
	}
	return sources, nil
}
