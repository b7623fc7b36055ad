package meta

import (
	"bufio"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"swinpack/internal/domain"
	apperr "swinpack/internal/errors"
)

// Job holds what the extractor needs from one per-job configuration file:
// the participating telescopes, the receiver-band polarizations, and the job
// start time.
type Job struct {
	Telescopes    []string
	Polarizations []string
	Start         time.Time
	HasStart      bool
}

var (
	reTelescopeKey = regexp.MustCompile(`^TELESCOPE NAME \d+$`)
	rePolKey       = regexp.MustCompile(`^REC BAND \d+ POL$`)
)

// ParseJob scans line-oriented `key : value` declarations from a per-job
// configuration file. The job start time is the MJD epoch plus the declared
// whole days and seconds offset.
func ParseJob(r io.Reader) (Job, error) {
	var job Job
	mjd, seconds := -1, -1

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch {
		case reTelescopeKey.MatchString(key):
			if value != "" {
				job.Telescopes = append(job.Telescopes, value)
			}
		case rePolKey.MatchString(key):
			if value != "" {
				job.Polarizations = append(job.Polarizations, value)
			}
		case key == "START MJD":
			if n, err := strconv.Atoi(value); err == nil {
				mjd = n
			}
		case key == "START SECONDS":
			if n, err := strconv.Atoi(value); err == nil {
				seconds = n
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return Job{}, err
	}

	if mjd >= 0 && seconds >= 0 {
		job.Start = domain.MJDTime(mjd, seconds)
		job.HasStart = true
	}
	return job, nil
}

// ReadJob parses the per-job configuration file at path.
func ReadJob(path string) (Job, error) {
	f, err := os.Open(path)
	if err != nil {
		return Job{}, apperr.Wrap(apperr.IOFailure, "read job configuration", err, path)
	}
	defer f.Close()

	job, err := ParseJob(f)
	if err != nil {
		return Job{}, apperr.Wrap(apperr.IOFailure, "read job configuration", err, path)
	}
	return job, nil
}
