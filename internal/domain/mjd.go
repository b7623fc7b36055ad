package domain

import "time"

// MJDEpoch is modified Julian day zero (1858-11-17 00:00:00 UTC), the time
// origin used by per-job configuration files.
var MJDEpoch = time.Date(1858, time.November, 17, 0, 0, 0, 0, time.UTC)

// MJDTime converts an integer modified Julian day plus seconds of day into a
// UTC timestamp.
func MJDTime(mjd, seconds int) time.Time {
	return MJDEpoch.AddDate(0, 0, mjd).Add(time.Duration(seconds) * time.Second)
}

// MJD splits a timestamp into whole modified Julian days and the remaining
// seconds of day.
func MJD(t time.Time) (day, seconds int) {
	total := int(t.UTC().Sub(MJDEpoch) / time.Second)
	day = total / 86400
	seconds = total - day*86400
	return day, seconds
}
