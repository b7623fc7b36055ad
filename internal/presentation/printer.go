package presentation

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"swinpack/internal/app"
	"swinpack/internal/domain"
)

var (
	labelStyle   = lipgloss.NewStyle().Bold(true).Width(12)
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
)

// Printer writes the run summary for batch (non-interactive) invocations.
// Styling degrades to plain text when the writer is not a terminal.
type Printer struct {
	Writer io.Writer
}

func (p Printer) PrintResult(res *app.Result) {
	fmt.Fprintln(p.Writer, successStyle.Render("Archive published."))
	fmt.Fprintln(p.Writer)
	p.printStat("Archive:", res.ArchivePath)

	if res.Record != nil {
		rec := res.Record
		p.printStat("Experiment:", fmt.Sprintf("%s (release %d)", rec.ExperimentCode, rec.ReleaseNumber))
		p.printStat("Span:", formatSpan(rec))
		p.printStat("Stations:", countedList(rec.Stations))
		p.printStat("Sources:", countedList(rec.Sources))
		p.printStat("Files:", fmt.Sprintf("%d input, %d other", rec.InputCount, rec.OtherCount))
	}
	if res.Uploaded {
		p.printStat("Uploaded:", "yes")
	}
}

func (p Printer) printStat(label, value string) {
	fmt.Fprintf(p.Writer, "  %s %s\n", labelStyle.Render(label), value)
}

func formatSpan(rec *domain.MetadataRecord) string {
	const layout = "2006-01-02 15:04:05"
	return fmt.Sprintf("%s to %s (%s)",
		rec.TimeStart.UTC().Format(layout),
		rec.TimeStop.UTC().Format(layout),
		formatDuration(rec.Duration()))
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d:%02d",
		int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
}

// countedList renders "n: a b c", truncating long lists around an ellipsis.
func countedList(names []string) string {
	shown := names
	if len(names) > 8 {
		shown = append(append([]string{}, names[:4]...), "...")
		shown = append(shown, names[len(names)-3:]...)
	}
	return fmt.Sprintf("%d: %s", len(names), strings.Join(shown, " "))
}
