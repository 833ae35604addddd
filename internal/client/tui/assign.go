package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/euronode/euronode/internal/client/screens"
	"github.com/euronode/euronode/internal/client/ui"
)

// Widget is the part of screens.AssignmentWidget the model drives.
type Widget interface {
	StartSearch(q string) (fetch func() error, err error)
	Select(clientID int64) error
	SetModalFields(dataDomain, modelName string)
	CancelModal()
	Submit() error
	RefreshAssignments() error
	Snapshot() screens.AssignmentView
}

// searchDoneMsg and friends carry a finished widget call back into Update.
type (
	searchDoneMsg  struct{ err error }
	assignDoneMsg  struct{ err error }
	refreshDoneMsg struct{ err error }
)

type field int

const (
	fieldDomain field = iota
	fieldModel
)

// AssignModel is the Bubble Tea model of the assignment screen: a search box
// with live results, the assigned-clients list and a modal for the chosen
// client.
type AssignModel struct {
	widget Widget
	banner *Banner

	search textinput.Model
	domain textinput.Model
	model  textinput.Model
	active field
	cursor int

	view  screens.AssignmentView
	width int
}

func NewAssignModel(w Widget, banner *Banner) AssignModel {
	search := textinput.New()
	search.Placeholder = "Search client by email or hospital..."
	search.CharLimit = 254
	search.Focus()

	domain := textinput.New()
	domain.Placeholder = "Data domain"
	model := textinput.New()
	model.Placeholder = "Model name"

	return AssignModel{
		widget: w,
		banner: banner,
		search: search,
		domain: domain,
		model:  model,
		view:   w.Snapshot(),
	}
}

func (m AssignModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m AssignModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.search.Width = msg.Width - 10
		return m, nil

	case searchDoneMsg, refreshDoneMsg:
		m.sync()
		return m, nil

	case assignDoneMsg:
		m.sync()
		if msg.err == nil {
			m.closeModal()
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			return m, tea.Quit
		}
		if m.view.Modal.Open {
			return m.updateModal(msg)
		}
		return m.updateSearch(msg)
	}

	return m, nil
}

func (m AssignModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		return m, tea.Quit
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.view.Results)-1 {
			m.cursor++
		}
		return m, nil
	case key.Matches(msg, keys.Refresh):
		w := m.widget
		return m, func() tea.Msg { return refreshDoneMsg{err: w.RefreshAssignments()} }
	case key.Matches(msg, keys.Enter):
		if m.cursor >= len(m.view.Results) {
			return m, nil
		}
		if err := m.widget.Select(m.view.Results[m.cursor].ID); err != nil {
			m.banner.Error(err.Error())
			return m, nil
		}
		m.sync()
		m.openModal()
		return m, textinput.Blink
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	q := m.search.Value()
	if q == before {
		return m, cmd
	}

	// the query is registered here, in keystroke order; only the request
	// itself runs as a command
	m.cursor = 0
	fetch, err := m.widget.StartSearch(q)
	m.sync()
	if err != nil {
		m.banner.Error(err.Error())
		return m, cmd
	}
	if fetch == nil {
		return m, cmd
	}
	return m, tea.Batch(cmd, func() tea.Msg { return searchDoneMsg{err: fetch()} })
}

func (m AssignModel) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.widget.CancelModal()
		m.sync()
		m.closeModal()
		return m, nil
	case key.Matches(msg, keys.Tab):
		m.toggleField()
		return m, nil
	case key.Matches(msg, keys.Enter):
		if m.view.Modal.Submitting {
			return m, nil
		}
		w := m.widget
		w.SetModalFields(m.domain.Value(), m.model.Value())
		return m, func() tea.Msg { return assignDoneMsg{err: w.Submit()} }
	}

	var cmd tea.Cmd
	if m.active == fieldDomain {
		m.domain, cmd = m.domain.Update(msg)
	} else {
		m.model, cmd = m.model.Update(msg)
	}
	return m, cmd
}

func (m *AssignModel) sync() {
	m.view = m.widget.Snapshot()
	if m.cursor >= len(m.view.Results) {
		m.cursor = max(len(m.view.Results)-1, 0)
	}
}

func (m *AssignModel) openModal() {
	m.domain.SetValue(m.view.Modal.DataDomain)
	m.model.SetValue(m.view.Modal.ModelName)
	m.active = fieldDomain
	m.search.Blur()
	m.model.Blur()
	m.domain.Focus()
}

func (m *AssignModel) closeModal() {
	m.domain.Blur()
	m.model.Blur()
	m.search.Focus()
}

func (m *AssignModel) toggleField() {
	if m.active == fieldDomain {
		m.active = fieldModel
		m.domain.Blur()
		m.model.Focus()
		return
	}
	m.active = fieldDomain
	m.model.Blur()
	m.domain.Focus()
}

func (m AssignModel) View() string {
	var b strings.Builder
	b.WriteString(ui.TitleStyle.Render("Assign Clients"))
	b.WriteString("\n\n")
	b.WriteString(m.search.View())
	b.WriteString("\n")

	for i, c := range m.view.Results {
		line := c.Email + " (" + c.Hospital + ")"
		if i == m.cursor {
			b.WriteString(ui.SelectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(ui.RenderAssignments(m.view))
	b.WriteString("\n")

	if m.view.Modal.Open {
		rows := []string{
			ui.TitleStyle.Render("Assign " + m.view.Modal.Client.Email),
			"Data Domain: " + m.domain.View(),
			"Model Name:  " + m.model.View(),
			ui.DimStyle.Render("enter: assign · tab: next field · esc: cancel"),
		}
		b.WriteString("\n")
		b.WriteString(ui.ModalStyle.Render(strings.Join(rows, "\n")))
		b.WriteString("\n")
	}

	if banner := m.banner.View(); banner != "" {
		b.WriteString("\n")
		b.WriteString(banner)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(ui.DimStyle.Render("↑/↓: move · enter: select · ctrl+r: refresh · esc: quit"))
	return b.String()
}

// Run shows the assignment screen until the user quits or ctx ends.
func Run(ctx context.Context, w Widget, banner *Banner, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(NewAssignModel(w, banner), opts...).Run()
	return err
}
