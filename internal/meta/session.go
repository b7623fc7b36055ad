// Package meta reconciles the heterogeneous textual sub-formats of a
// correlation run (session descriptor, per-job configuration files, per-job
// timing-model files) into one canonical metadata record and its durable
// textual serialization.
package meta

import (
	"os"
	"regexp"
	"strings"

	"swinpack/internal/domain"
	apperr "swinpack/internal/errors"
)

// Session holds the high-level properties read from the session descriptor.
// Absent properties stay empty; the extractor substitutes the placeholder.
type Session struct {
	Experiment  string
	Description string
	PIName      string
	Correlator  string
}

var reComment = regexp.MustCompile(`\*[^\n]*`)

// ParseSession extracts semicolon-delimited `key = value` properties from
// session descriptor text. Keys are case-insensitive; the first non-empty
// value for a key wins. The experiment name is lower-cased.
func ParseSession(text string) Session {
	props := make(map[string]string)
	text = reComment.ReplaceAllString(text, "")
	for _, stmt := range strings.Split(text, ";") {
		key, value, ok := strings.Cut(stmt, "=")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(lastField(key)))
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		if _, have := props[key]; !have {
			props[key] = value
		}
	}
	return Session{
		Experiment:  strings.ToLower(props["exper_name"]),
		Description: props["exper_description"],
		PIName:      props["pi_name"],
		Correlator:  props["target_correlator"],
	}
}

// ReadSession parses the session descriptor file at path.
func ReadSession(path string) (Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Session{}, apperr.Wrap(apperr.IOFailure, "read session descriptor", err, path)
	}
	return ParseSession(string(data)), nil
}

// orDefault substitutes the placeholder token for absent properties.
func orDefault(value string) string {
	if value == "" {
		return domain.Placeholder
	}
	return value
}

// lastField isolates the property key from any block or statement prefix
// left over from splitting on semicolons (`def X` lines, section headers).
func lastField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
