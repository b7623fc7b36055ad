package meta

import (
	"fmt"
	"strings"

	"swinpack/internal/domain"
)

// FormatBanner is the first line of every metadata document.
const FormatBanner = "swin archive metadata version 1"

const timeLayout = "2006-01-02 15:04:05"

// Render serializes a metadata record into its fixed line-labeled
// interchange format. Field order, labels, and spacing are a compatibility
// contract; downstream parsers may depend on line position.
func Render(rec *domain.MetadataRecord) string {
	var b strings.Builder

	b.WriteString(FormatBanner + "\n")
	fmt.Fprintf(&b, "exper: %s\n", rec.ExperimentCode)
	fmt.Fprintf(&b, "release: %d\n", rec.ReleaseNumber)
	fmt.Fprintf(&b, "desc: %s\n", rec.Description)
	fmt.Fprintf(&b, "pi: %s\n", rec.PIName)
	fmt.Fprintf(&b, "correlator: %s\n", rec.CorrelatorName)
	writeTime(&b, "start", rec)
	writeTime(&b, "stop", rec)
	fmt.Fprintf(&b, "duration: %d\n", int(rec.Duration().Seconds()))
	fmt.Fprintf(&b, "num_sta: %d\n", len(rec.Stations))
	fmt.Fprintf(&b, "num_sou: %d\n", len(rec.Sources))
	fmt.Fprintf(&b, "stations: %s\n", strings.Join(rec.Stations, " "))
	fmt.Fprintf(&b, "sources: %s\n", strings.Join(rec.Sources, " "))
	fmt.Fprintf(&b, "pols: %s\n", strings.Join(rec.Polarizations, " "))
	fmt.Fprintf(&b, "num_input: %d\n", rec.InputCount)
	fmt.Fprintf(&b, "num_other: %d\n", rec.OtherCount)
	if len(rec.ReferencedFiles) >= 3 {
		fmt.Fprintf(&b, "vex: %s\n", rec.ReferencedFiles[1])
		fmt.Fprintf(&b, "v2d: %s\n", rec.ReferencedFiles[2])
	}
	for _, file := range rec.ReferencedFiles {
		fmt.Fprintf(&b, "file: %s\n", file)
	}
	return b.String()
}

func writeTime(b *strings.Builder, label string, rec *domain.MetadataRecord) {
	t := rec.TimeStart
	if label == "stop" {
		t = rec.TimeStop
	}
	day, sec := domain.MJD(t)
	fmt.Fprintf(b, "%s: %d/%d %s UTC\n", label, day, sec, t.UTC().Format(timeLayout))
}
