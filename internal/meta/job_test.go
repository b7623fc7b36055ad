package meta

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

const sampleInput = `CALC FILENAME:      job1.calc
START MJD:          59000
START SECONDS:      120
TELESCOPE ENTRIES:  2
TELESCOPE NAME 0:   Kk
TELESCOPE NAME 1:   Wz
REC BAND 0 POL:     R
REC BAND 1 POL:     L
REC BAND 2 POL:     R
`

func TestParseJob(t *testing.T) {
	job, err := ParseJob(strings.NewReader(sampleInput))
	if err != nil {
		t.Fatalf("ParseJob: %v", err)
	}
	if !job.HasStart {
		t.Fatal("HasStart = false, want start time")
	}
	want := time.Date(2020, 5, 31, 0, 2, 0, 0, time.UTC)
	if !job.Start.Equal(want) {
		t.Errorf("Start = %v, want %v", job.Start, want)
	}
	if got := job.Telescopes; !reflect.DeepEqual(got, []string{"Kk", "Wz"}) {
		t.Errorf("Telescopes = %v", got)
	}
	if got := job.Polarizations; !reflect.DeepEqual(got, []string{"R", "L", "R"}) {
		t.Errorf("Polarizations = %v", got)
	}
}

func TestParseJobWithoutStart(t *testing.T) {
	job, err := ParseJob(strings.NewReader("TELESCOPE NAME 0: KK\n"))
	if err != nil {
		t.Fatalf("ParseJob: %v", err)
	}
	if job.HasStart {
		t.Error("HasStart = true without START MJD/SECONDS")
	}
}

const sampleModel = `CALC SERVER:        localhost
SCAN 0 POINTING SRC: SRCA
SCAN 0 NUM PHS CTRS: 1
SCAN 0 PHS CTR 0 SRC: SRCB
SCAN 1 POINTING SRC: SRCA
`

func TestParseModelSources(t *testing.T) {
	sources, err := ParseModelSources(strings.NewReader(sampleModel))
	if err != nil {
		t.Fatalf("ParseModelSources: %v", err)
	}
	if want := []string{"SRCA", "SRCB", "SRCA"}; !reflect.DeepEqual(sources, want) {
		t.Errorf("sources = %v, want %v", sources, want)
	}
}
