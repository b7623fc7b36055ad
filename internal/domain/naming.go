package domain

import (
	"fmt"
	"regexp"
	"time"
)

// ArchiveExt is the archive filename extension, tar with the bzip2
// block-compression codec.
const ArchiveExt = "tar.bz2"

var reArchiveName = regexp.MustCompile(
	`^\d{8}_[0-9a-z]+_v\d{3}_swin\.tar\.bz2$`)

// ArchiveFileName builds the canonical archive name from the session start
// date, experiment code, and release number: YYYYMMDD_<exper>_v<nnn>_swin.<ext>.
func ArchiveFileName(start time.Time, experiment string, release int) string {
	return fmt.Sprintf("%s_%s_v%03d_swin.%s",
		start.UTC().Format("20060102"), experiment, release, ArchiveExt)
}

// ValidArchiveName reports whether name matches the canonical archive naming
// pattern.
func ValidArchiveName(name string) bool {
	return reArchiveName.MatchString(name)
}
