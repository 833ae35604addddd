package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/euronode/euronode/internal/client/models"
	"github.com/euronode/euronode/internal/client/screens"
	"github.com/euronode/euronode/internal/client/views"
	"github.com/euronode/euronode/internal/common"
)

const timeLayout = "2006-01-02 15:04"

func RenderSession(s models.Session) string {
	line := fmt.Sprintf("%s (%s)", s.Email, s.Role)
	if s.Hospital != "" {
		line += " · " + s.Hospital
	}
	return line
}

// RenderCells lays the summary counters out side by side.
func RenderCells(cells []views.Cell) string {
	cards := make([]string, 0, len(cells))
	for _, c := range cells {
		cards = append(cards, CardStyle.Render(LabelStyle.Render(c.Label)+"\n"+ValueStyle.Render(c.Value)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func RenderCentral(v screens.CentralDashboardView) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Central Authority Dashboard"))
	b.WriteString("\n")
	b.WriteString(DimStyle.Render(RenderSession(v.Session)))
	b.WriteString("\n\n")
	b.WriteString(RenderCells(v.Cells))
	b.WriteString("\n\n")
	b.WriteString(RenderAssignments(v.Assignment))
	return b.String()
}

func RenderClient(v screens.ClientDashboardView) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Client Dashboard"))
	b.WriteString("\n")
	hospital := v.Session.Hospital
	if hospital == "" {
		hospital = common.Placeholder
	}
	b.WriteString(LabelStyle.Render("Hospital: ") + ValueStyle.Render(hospital))
	b.WriteString("\n\n")
	b.WriteString(RenderCells(v.Cells))
	return b.String()
}

func RenderIterations(v screens.IterationView) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Iterations"))
	b.WriteString("\n\n")
	b.WriteString(RenderCells(v.Cells))
	b.WriteString("\n\n")

	if v.Status == views.StatusFailed {
		b.WriteString(ErrorStyle.Render("Failed to load models."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(TitleStyle.Render("Final model"))
	b.WriteString("\n")
	if final, ok := v.Iterations.Final(); ok {
		b.WriteString(RenderModel(final))
	} else {
		b.WriteString(DimStyle.Render("No final model yet."))
	}
	b.WriteString("\n\n")

	b.WriteString(TitleStyle.Render("Running iterations"))
	b.WriteString("\n")
	if len(v.Iterations.Running) == 0 {
		b.WriteString(DimStyle.Render("No running iterations."))
		b.WriteString("\n")
	}
	for _, m := range v.Iterations.Running {
		b.WriteString(RenderModel(m))
		b.WriteString("\n")
	}

	if v.Form.Visible {
		b.WriteString("\n")
		b.WriteString(RenderForm(v.Form))
		b.WriteString("\n")
	}
	return b.String()
}

func RenderModel(m models.Model) string {
	version := "v" + strconv.Itoa(m.Version)
	if m.IsFinal() {
		version = SuccessStyle.Render("final")
	}
	return fmt.Sprintf("#%d %s %s %s %s",
		m.ID,
		ValueStyle.Render(m.ModelName),
		version,
		LabelStyle.Render("["+m.DatasetDomain+"]"),
		DimStyle.Render(m.CreatedAt.Local().Format(timeLayout)),
	)
}

// RenderHistory lists every model version, newest first.
func RenderHistory(it views.Iterations) string {
	if len(it.History) == 0 {
		return DimStyle.Render("No models yet.")
	}
	lines := make([]string, 0, len(it.History))
	for _, m := range it.History {
		lines = append(lines, RenderModel(m))
	}
	return strings.Join(lines, "\n")
}

func RenderForm(f views.IterationForm) string {
	rows := []string{
		TitleStyle.Render("Start new iteration"),
		LabelStyle.Render("Model name: ") + f.ModelName,
		LabelStyle.Render("Dataset domain: ") + f.DatasetDomain,
		LabelStyle.Render("Version: ") + strconv.Itoa(f.Version),
		LabelStyle.Render("Model file: ") + f.FilePath,
	}
	if f.Submitting {
		rows = append(rows, WarningStyle.Render("Submitting…"))
	}
	return ModalStyle.Render(strings.Join(rows, "\n"))
}

func RenderClients(cs []models.ClientEntry) string {
	if len(cs) == 0 {
		return DimStyle.Render("No matching clients.")
	}
	lines := make([]string, 0, len(cs))
	for _, c := range cs {
		lines = append(lines, fmt.Sprintf("#%d %s %s", c.ID, c.Email, DimStyle.Render("("+c.Hospital+")")))
	}
	return strings.Join(lines, "\n")
}

func RenderAssignment(a models.Assignment) string {
	return fmt.Sprintf("%s %s  Model: %s  Domain: %s  %s",
		ValueStyle.Render(a.ClientEmail),
		DimStyle.Render("("+a.ClientHospital+")"),
		a.ModelName,
		a.DataDomain,
		DimStyle.Render(formatTime(a.AssignedAt)),
	)
}

func RenderAssignments(v screens.AssignmentView) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Assigned Clients"))
	b.WriteString("\n")
	switch {
	case v.Status == views.StatusPending:
		b.WriteString(DimStyle.Render(common.Placeholder))
	case v.Status == views.StatusFailed:
		b.WriteString(ErrorStyle.Render("Could not load assignments."))
	case len(v.Assignments) == 0:
		b.WriteString(DimStyle.Render("No clients assigned yet."))
	default:
		lines := make([]string, 0, len(v.Assignments))
		for _, a := range v.Assignments {
			lines = append(lines, RenderAssignment(a))
		}
		b.WriteString(strings.Join(lines, "\n"))
	}
	return b.String()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(timeLayout)
}
