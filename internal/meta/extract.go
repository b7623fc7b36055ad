package meta

import (
	"path/filepath"
	"sort"
	"strings"

	"swinpack/internal/domain"
	apperr "swinpack/internal/errors"
)

// Extract reads every source in the file set and builds the canonical
// metadata record for the run.
//
// Stations and polarizations keep the order in which the per-job files first
// declare them; sources are sorted and deduplicated. TimeStart and TimeStop
// are the min and max over all per-job start times; a run with no derivable
// timestamps is rejected rather than silently reported as epoch zero.
func Extract(fileSet *domain.FileSet, release int) (domain.MetadataRecord, error) {
	session, err := ReadSession(fileSet.Vex)
	if err != nil {
		return domain.MetadataRecord{}, err
	}

	rec := domain.MetadataRecord{
		ExperimentCode: session.Experiment,
		ReleaseNumber:  release,
		Description:    orDefault(session.Description),
		PIName:         orDefault(session.PIName),
		CorrelatorName: orDefault(session.Correlator),
		InputCount:     fileSet.Inputs.Len(),
		OtherCount:     fileSet.Others.Len(),
	}
	if rec.ExperimentCode == "" {
		// Descriptor without an exper_name property; fall back to the
		// descriptor's own basename.
		base := filepath.Base(fileSet.Vex)
		rec.ExperimentCode = strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
	}

	hasTime := false
	for _, name := range fileSet.Inputs.Names() {
		path, _ := fileSet.Inputs.Get(name)
		job, err := ReadJob(path)
		if err != nil {
			return domain.MetadataRecord{}, err
		}
		for _, tel := range job.Telescopes {
			rec.AddStation(tel)
		}
		for _, pol := range job.Polarizations {
			rec.AddPolarization(pol)
		}
		if !job.HasStart {
			continue
		}
		if !hasTime || job.Start.Before(rec.TimeStart) {
			rec.TimeStart = job.Start
		}
		if !hasTime || job.Start.After(rec.TimeStop) {
			rec.TimeStop = job.Start
		}
		hasTime = true
	}
	if !hasTime {
		return domain.MetadataRecord{}, apperr.New(apperr.MalformedMetadata,
			"extract metadata", "no job timestamps could be derived", fileSet.Vex)
	}

	for _, name := range fileSet.Others.Names() {
		if !strings.EqualFold(filepath.Ext(name), ".im") {
			continue
		}
		path, _ := fileSet.Others.Get(name)
		sources, err := ReadModelSources(path)
		if err != nil {
			return domain.MetadataRecord{}, err
		}
		for _, src := range sources {
			rec.AddSource(src)
		}
	}
	sort.Strings(rec.Sources)

	rec.ReferencedFiles = referencedFiles(&rec, fileSet)
	return rec, nil
}

// referencedFiles fixes the archive's internal ordering: the metadata file
// itself, vex, v2d, then sorted input and other names.
func referencedFiles(rec *domain.MetadataRecord, fileSet *domain.FileSet) []string {
	files := []string{
		rec.MetaFileName(),
		filepath.Base(fileSet.Vex),
		filepath.Base(fileSet.V2D),
	}
	files = append(files, fileSet.Inputs.SortedNames()...)
	files = append(files, fileSet.Others.SortedNames()...)
	return files
}
