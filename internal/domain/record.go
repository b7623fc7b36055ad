package domain

import (
	"strings"
	"time"
)

// Placeholder stands in for session descriptor properties that are absent.
const Placeholder = "??"

// MetadataRecord is the canonical metadata derived from one correlation run.
// Stations keep first-seen order, Sources are sorted and deduplicated, and
// Polarizations keep first-seen order.
type MetadataRecord struct {
	ExperimentCode  string
	ReleaseNumber   int
	Description     string
	PIName          string
	CorrelatorName  string
	TimeStart       time.Time
	TimeStop        time.Time
	Stations        []string
	Sources         []string
	Polarizations   []string
	InputCount      int
	OtherCount      int
	ReferencedFiles []string
}

// AddStation records a telescope name, upper-cased, preserving the order in
// which stations were first seen.
func (r *MetadataRecord) AddStation(name string) {
	r.Stations = appendUnique(r.Stations, strings.ToUpper(name))
}

// AddSource records a pointing or phase-center source name. The list is kept
// unsorted here; the extractor sorts it once all jobs are read.
func (r *MetadataRecord) AddSource(name string) {
	r.Sources = appendUnique(r.Sources, name)
}

// AddPolarization records a receiver-band polarization token in first-seen
// order.
func (r *MetadataRecord) AddPolarization(pol string) {
	r.Polarizations = appendUnique(r.Polarizations, pol)
}

// MetaFileName is the name of the metadata document inside the archive.
func (r *MetadataRecord) MetaFileName() string {
	return r.ExperimentCode + "_meta.txt"
}

// Duration is the span between the first and last per-job timestamps.
func (r *MetadataRecord) Duration() time.Duration {
	return r.TimeStop.Sub(r.TimeStart)
}

func appendUnique(list []string, v string) []string {
	for _, have := range list {
		if have == v {
			return list
		}
	}
	return append(list, v)
}
