package tui

import (
	"fmt"
	"os"
	"strings"

	"swinpack/internal/app"
	"swinpack/internal/domain"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Messages fed into the model while the pipeline runs in the background.
type (
	StageMsg struct {
		Stage app.Stage
	}
	DoneMsg struct {
		Result *app.Result
	}
	ErrorMsg struct {
		Err error
	}
)

// Config for the TUI
type Config struct {
	Source string
	Dest   string
	Upload bool
}

// Model renders pipeline progress as a phase checklist with a spinner on
// the active phase.
type Model struct {
	config   Config
	spinner  spinner.Model
	stage    app.Stage
	Result   *app.Result
	Err      error
	Quitting bool
	finished bool
}

func NewModel(cfg Config) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	return Model{
		config:  cfg,
		spinner: s,
		stage:   app.StageScanning,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.Quitting = true
			return m, tea.Quit
		case "enter":
			if m.finished {
				return m, tea.Quit
			}
		}

	case StageMsg:
		m.stage = msg.Stage
		return m, nil

	case DoneMsg:
		m.Result = msg.Result
		m.stage = app.StageDone
		m.finished = true
		return m, tea.Quit

	case ErrorMsg:
		m.Err = msg.Err
		m.finished = true
		return m, tea.Quit

	case spinner.TickMsg:
		if !m.finished {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	if m.Err != nil {
		b.WriteString(m.renderError())
	} else {
		b.WriteString(m.renderPhases())
		if m.Result != nil {
			b.WriteString("\n")
			b.WriteString(m.renderSummary())
		}
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderHeader() string {
	title := titleStyle.Render("Swinpack")
	subtitle := subtitleStyle.Render("Correlation output archiver")

	dest := m.config.Dest
	if dest == "" {
		dest = "(source directory)"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		subtitle,
		"",
		pathStyle.Render(fmt.Sprintf("%s Source: %s", iconFolder, shortenPath(m.config.Source))),
		pathStyle.Render(fmt.Sprintf("%s Dest:   %s", iconFolder, shortenPath(dest))),
	)
}

func (m Model) renderPhases() string {
	phases := []struct {
		stage app.Stage
		label string
	}{
		{app.StageScanning, "Scanning source tree"},
		{app.StageExtracting, "Extracting metadata"},
		{app.StagePacking, "Packing archive"},
	}
	if m.config.Upload {
		phases = append(phases, struct {
			stage app.Stage
			label string
		}{app.StageUploading, "Uploading to depot"})
	}

	var b strings.Builder
	for _, ph := range phases {
		switch {
		case m.stage > ph.stage || m.stage == app.StageDone:
			b.WriteString(fmt.Sprintf("  %s %s\n",
				phaseDoneStyle.Render(iconDone), phaseDoneStyle.Render(ph.label)))
		case m.stage == ph.stage:
			b.WriteString(fmt.Sprintf("  %s %s\n",
				m.spinner.View(), phaseActiveStyle.Render(ph.label)))
		default:
			b.WriteString(fmt.Sprintf("  %s %s\n",
				phasePendingStyle.Render(iconPending), phasePendingStyle.Render(ph.label)))
		}
	}
	return b.String()
}

func (m Model) renderSummary() string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Archive"))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("  %s %s\n\n",
		successStyle.Render(iconDone), successStyle.Render("Archive published.")))
	b.WriteString(m.stat("Path:", m.Result.ArchivePath))

	if rec := m.Result.Record; rec != nil {
		b.WriteString(m.stat("Experiment:", fmt.Sprintf("%s (release %d)", rec.ExperimentCode, rec.ReleaseNumber)))
		b.WriteString(m.stat("Span:", formatSpan(rec)))
		b.WriteString(m.stat("Stations:", strings.Join(rec.Stations, " ")))
		b.WriteString(m.stat("Sources:", strings.Join(rec.Sources, " ")))
		b.WriteString(m.stat("Files:", fmt.Sprintf("%d input, %d other", rec.InputCount, rec.OtherCount)))
	}
	if m.Result.Uploaded {
		b.WriteString(m.stat("Uploaded:", "yes"))
	}
	return b.String()
}

func (m Model) stat(label, value string) string {
	return fmt.Sprintf("  %s %s\n", statLabelStyle.Render(label), statValueStyle.Render(value))
}

func (m Model) renderError() string {
	icon := errorStyle.Render(iconError)
	msg := errorStyle.Render(fmt.Sprintf("Error: %s", m.Err.Error()))
	return errorBoxStyle.Render(fmt.Sprintf("%s %s", icon, msg))
}

func (m Model) renderHelp() string {
	if m.finished {
		return helpStyle.Render("Press Enter to exit")
	}
	return helpStyle.Render("Press q to abort")
}

func formatSpan(rec *domain.MetadataRecord) string {
	const layout = "2006-01-02 15:04:05"
	return fmt.Sprintf("%s to %s",
		rec.TimeStart.UTC().Format(layout), rec.TimeStop.UTC().Format(layout))
}

// shortenPath replaces the home directory prefix with ~ for display
func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}
